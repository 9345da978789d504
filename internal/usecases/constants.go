package usecases

import (
	"encoding/hex"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// computeSelectorHex computes the 4-byte EVM function selector from a canonical
// function signature and returns it as a "0x"-prefixed hex string.
func computeSelectorHex(sig string) string {
	return "0x" + hex.EncodeToString(crypto.Keccak256([]byte(sig))[:4])
}

// EVM Function Selectors — computed at init from canonical signatures.
var (
	// allowance(address,address) -> 0xdd62ed3e
	AllowanceSelector = computeSelectorHex("allowance(address,address)")

	// approve(address,uint256) -> 0x095ea7b3
	ApproveSelector = computeSelectorHex("approve(address,uint256)")

	// transfer(address,uint256) -> 0xa9059cbb
	TransferSelector = computeSelectorHex("transfer(address,uint256)")
)

// Timeouts
const DefaultConfirmationTimeout = 2 * time.Minute
const QuoteRequestTimeout = 15 * time.Second

// Payment request lifetime before the expiry job marks it EXPIRED.
const PaymentRequestExpiryDuration = 7 * 24 * time.Hour

// Address length conventions
const EVMAddressLength = 42
const MinBase58KeyLength = 32
const MaxBase58KeyLength = 44

// EVM Technical Constants
const EVMWordSize = 32
