package codec

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
)

// FeltSize is the stored width of a felt in bytes.
const FeltSize = 32

const hexPrefix = "0x"

// EncodeHex converts a 0x-prefixed hex string into raw bytes.
func EncodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, hexPrefix) {
		return nil, domain.NewScalarEncoding(Hex.String(), "missing 0x prefix")
	}
	b, err := hex.DecodeString(s[len(hexPrefix):])
	if err != nil {
		return nil, domain.NewScalarEncoding(Hex.String(), err.Error())
	}
	return b, nil
}

// DecodeHex renders raw bytes as a 0x-prefixed lowercase hex string.
func DecodeHex(b []byte) string {
	return hexPrefix + hex.EncodeToString(b)
}

// EncodeFelt converts a non-negative integer into its 32-byte big-endian form.
func EncodeFelt(v *big.Int) ([]byte, error) {
	if v == nil {
		return nil, domain.NewScalarEncoding(Felt.String(), "nil value")
	}
	if v.Sign() < 0 {
		return nil, domain.NewScalarEncoding(Felt.String(), "negative value")
	}
	if v.BitLen() > FeltSize*8 {
		return nil, domain.NewScalarEncoding(Felt.String(), "value exceeds 32 bytes")
	}
	return v.FillBytes(make([]byte, FeltSize)), nil
}

// DecodeFelt reads a big-endian unsigned integer.
func DecodeFelt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// FeltFromUint64 encodes a small integer as a felt.
func FeltFromUint64(u uint64) []byte {
	return new(big.Int).SetUint64(u).FillBytes(make([]byte, FeltSize))
}

// ParseFelt reads the decimal wire form of a felt.
func ParseFelt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, domain.NewScalarEncoding(Felt.String(), "not a decimal integer: "+s)
	}
	if v.Sign() < 0 {
		return nil, domain.NewScalarEncoding(Felt.String(), "negative value")
	}
	return v, nil
}

// EncodeString returns the UTF-8 bytes of s.
func EncodeString(s string) []byte {
	return []byte(s)
}

// DecodeString reads UTF-8 bytes and strips NUL padding.
func DecodeString(b []byte) string {
	return strings.ReplaceAll(string(b), "\x00", "")
}

// EncodeBool stores a boolean as felt 0 or 1.
func EncodeBool(v bool) []byte {
	if v {
		return FeltFromUint64(1)
	}
	return FeltFromUint64(0)
}

// DecodeBool returns the raw stored integer. Non-zero means true.
func DecodeBool(b []byte) *big.Int {
	return DecodeFelt(b)
}

// Truthy interprets a decoded boolean felt.
func Truthy(v *big.Int) bool {
	return v != nil && v.Sign() != 0
}
