package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// erc20AllowanceSelector is allowance(address,address)
var erc20AllowanceSelector = common.Hex2Bytes("dd62ed3e")

// EVMClient provides EVM blockchain interaction
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
	rpcURL  string
	// testCallView and testReceipt allow deterministic unit tests without
	// network sockets.
	testCallView func(ctx context.Context, to string, data []byte) ([]byte, error)
	testReceipt  func(ctx context.Context, txHash string) (*types.Receipt, error)
}

// NewEVMClient creates a new EVM client
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// NewEVMClientWithCallView creates an EVM client that uses an injected CallView
// implementation. This is intended for unit tests where RPC sockets are
// unavailable.
func NewEVMClientWithCallView(chainID *big.Int, callViewFn func(ctx context.Context, to string, data []byte) ([]byte, error)) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{
		chainID:      chainID,
		testCallView: callViewFn,
	}
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// GetBalance gets the native currency balance of an address
func (c *EVMClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	addr := common.HexToAddress(address)
	return c.client.BalanceAt(ctx, addr, nil)
}

// GetTokenBalance gets the ERC20 token balance of an address
func (c *EVMClient) GetTokenBalance(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error) {
	owner := common.HexToAddress(ownerAddress)

	// balanceOf(address) selector: 0x70a08231
	data := append(common.Hex2Bytes("70a08231"), common.LeftPadBytes(owner.Bytes(), 32)...)
	result, err := c.CallView(ctx, tokenAddress, data)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(result), nil
}

// GetAllowance reads the ERC20 allowance an owner has granted a spender on
// the given token contract.
func (c *EVMClient) GetAllowance(ctx context.Context, tokenAddress, ownerAddress, spenderAddress string) (*big.Int, error) {
	owner := common.HexToAddress(ownerAddress)
	spender := common.HexToAddress(spenderAddress)

	data := make([]byte, 0, 4+2*32)
	data = append(data, erc20AllowanceSelector...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(spender.Bytes(), 32)...)

	result, err := c.CallView(ctx, tokenAddress, data)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(result), nil
}

// GetTransactionReceipt gets transaction receipt
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	if c.testReceipt != nil {
		return c.testReceipt(ctx, txHash)
	}
	hash := common.HexToHash(txHash)
	return c.client.TransactionReceipt(ctx, hash)
}

// GetBlockNumber gets the latest block number
func (c *EVMClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// CallView executes a read-only contract call
func (c *EVMClient) CallView(ctx context.Context, to string, data []byte) ([]byte, error) {
	if c.testCallView != nil {
		return c.testCallView(ctx, to, data)
	}
	addr := common.HexToAddress(to)
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	return c.client.CallContract(ctx, msg, nil)
}

// Raw exposes the underlying ethclient for callers that need transaction
// submission. Nil for injected test clients.
func (c *EVMClient) Raw() *ethclient.Client {
	return c.client
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
