// Package codec converts between the chain-native primitive encodings stored by
// the indexer (fixed-width big-endian felts, raw byte strings) and typed
// domain values.
package codec

import (
	"math/big"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

// Kind is the scalar kind of a field.
type Kind int

// Scalar kinds.
const (
	Hex Kind = iota + 1
	Felt
	String
	Bool
	Date
	Symbol
)

func (k Kind) String() string {
	switch k {
	case Hex:
		return "hex"
	case Felt:
		return "felt"
	case String:
		return "string"
	case Bool:
		return "boolean"
	case Date:
		return "date"
	case Symbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Codec adds vocabulary-backed conversions on top of the plain scalar
// conversions. It holds no mutable state.
type Codec struct {
	reg *vocab.Registry
}

// New creates a Codec over an immutable registry.
func New(reg *vocab.Registry) *Codec {
	return &Codec{reg: reg}
}

// Registry returns the registry backing this codec.
func (c *Codec) Registry() *vocab.Registry { return c.reg }

// EncodeSymbol reverse-looks-up name and returns its felt-encoded code.
func (c *Codec) EncodeSymbol(n vocab.Name, name string) ([]byte, error) {
	code, ok := c.reg.Code(n, name)
	if !ok {
		return nil, &domain.UnknownSymbolError{Vocabulary: string(n), Name: name}
	}
	return FeltFromUint64(code), nil
}

// DecodeSymbol looks up the code stored in b. In the item name-prefix
// vocabulary code 0 means "no prefix" and decodes to vocab.None().
func (c *Codec) DecodeSymbol(n vocab.Name, b []byte) (vocab.Symbol, error) {
	v := new(big.Int).SetBytes(b)
	if !v.IsUint64() {
		return vocab.None(), &domain.UnknownCodeError{Vocabulary: string(n), Code: v.String()}
	}
	code := v.Uint64()
	if code == 0 && zeroIsAbsent(n) {
		return vocab.None(), nil
	}
	name, ok := c.reg.Lookup(n, code)
	if !ok {
		return vocab.None(), &domain.UnknownCodeError{Vocabulary: string(n), Code: v.String()}
	}
	return vocab.Some(name), nil
}

func zeroIsAbsent(n vocab.Name) bool {
	return n == vocab.ItemNamePrefix
}
