package usecases

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
)

// ellipsisMarkers are the truncation artifacts UIs insert when shortening an
// address for display. An address carrying one can never be settled against.
var ellipsisMarkers = []string{"…", "..."}

func containsEllipsis(s string) bool {
	for _, marker := range ellipsisMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// isEVMAccountAddress reports whether s is a 0x-prefixed 40-hex-digit
// account address.
func isEVMAccountAddress(s string) bool {
	return len(s) == EVMAddressLength && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// isBase58PublicKey reports whether s looks like a base58-encoded 32-byte
// public key.
func isBase58PublicKey(s string) bool {
	if len(s) < MinBase58KeyLength || len(s) > MaxBase58KeyLength {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(base58Alphabet, r) {
			return false
		}
	}
	return true
}

// addressMatchesNetworkType checks an address against the format convention
// of the network's execution model.
func addressMatchesNetworkType(address string, networkType entities.NetworkType) bool {
	switch networkType {
	case entities.NetworkTypeEVM:
		return isEVMAccountAddress(address)
	case entities.NetworkTypeSVM:
		return isBase58PublicKey(address)
	default:
		return false
	}
}

// toBaseUnits converts a human-readable decimal amount into the token's base
// units, rounding DOWN. Fractions below one base unit are dropped, never
// rounded up: 1.0000005 at 6 decimals is 1000000.
func toBaseUnits(humanAmount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(humanAmount))
	if err != nil {
		return nil, domainerrors.ErrValidation
	}
	if d.Sign() <= 0 {
		return nil, domainerrors.ErrValidation
	}
	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}
