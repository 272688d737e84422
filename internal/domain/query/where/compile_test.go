package where

import (
	"bytes"
	"errors"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

func testCompiler(t *testing.T) *Compiler {
	t.Helper()
	reg, err := vocab.New(map[vocab.Name]map[uint64]string{
		vocab.Obstacle: {1: "poison", 2: "fire"},
		vocab.Class:    {1: "Cleric", 4: "Warrior"},
	})
	if err != nil {
		t.Fatalf("vocab.New: %v", err)
	}
	return NewCompiler(codec.New(reg))
}

func ptr[T any](v T) *T { return &v }

func felt(t *testing.T, v int64) []byte {
	t.Helper()
	b, err := codec.EncodeFelt(big.NewInt(v))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCompile_NilInputYieldsRestrictionOnly(t *testing.T) {
	c := testCompiler(t)
	p, err := c.Compile(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{predicate.ValidToPath: nil}
	if got := p.Raw(); !reflect.DeepEqual(got, want) {
		t.Errorf("Raw() = %#v, want %#v", got, want)
	}
}

func TestCompile_FeltGte(t *testing.T) {
	c := testCompiler(t)
	in := new(Input).Add("health", &FeltFilter{Gte: big.NewInt(50)})

	p, err := c.Compile(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"health":              map[string]any{"$gte": felt(t, 50)},
		predicate.ValidToPath: nil,
	}
	if got := p.Raw(); !reflect.DeepEqual(got, want) {
		t.Errorf("Raw() = %#v, want %#v", got, want)
	}
}

func TestCompile_FeltOperators(t *testing.T) {
	c := testCompiler(t)
	in := new(Input).
		Add("id", &FeltFilter{Eq: big.NewInt(7)}).
		Add("xp", &FeltFilter{Lt: big.NewInt(20)}).
		Add("gold", &FeltFilter{In: []*big.Int{big.NewInt(1), big.NewInt(2)}})

	p, err := c.Compile(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"id":                  felt(t, 7),
		"xp":                  map[string]any{"$lt": felt(t, 20)},
		"gold":                map[string]any{"$in": []any{felt(t, 1), felt(t, 2)}},
		predicate.ValidToPath: nil,
	}
	if got := p.Raw(); !reflect.DeepEqual(got, want) {
		t.Errorf("Raw() = %#v, want %#v", got, want)
	}
}

func TestCompile_EqThenPatternKeepsLastApplied(t *testing.T) {
	c := testCompiler(t)
	both, err := c.Compile(new(Input).Add("name", &StringFilter{Eq: ptr("X"), StartsWith: ptr("Y")}))
	if err != nil {
		t.Fatal(err)
	}
	alone, err := c.Compile(new(Input).Add("name", &StringFilter{StartsWith: ptr("Y")}))
	if err != nil {
		t.Fatal(err)
	}
	if both.String() != alone.String() {
		t.Errorf("eq+startsWith = %s, startsWith alone = %s", both, alone)
	}
}

func TestCompile_PatternOperatorsShareKey(t *testing.T) {
	c := testCompiler(t)
	p, err := c.Compile(new(Input).Add("name", &StringFilter{
		Contains:   ptr("a"),
		StartsWith: ptr("b"),
		EndsWith:   ptr("c"),
	}))
	if err != nil {
		t.Fatal(err)
	}
	f, _ := p.Field("name")
	o, ok := f.Operand(predicate.Regex)
	if !ok {
		t.Fatal("regex missing")
	}
	if got := o.Pattern().String(); got != "c$" {
		t.Errorf("regex = %q, want endsWith to win", got)
	}
}

func TestCompile_RangeBoundsAccumulate(t *testing.T) {
	c := testCompiler(t)
	p, err := c.Compile(new(Input).Add("xp", &FeltFilter{
		Eq:  big.NewInt(3),
		Gt:  big.NewInt(1),
		Lte: big.NewInt(9),
	}))
	if err != nil {
		t.Fatal(err)
	}
	f, _ := p.Field("xp")
	if _, ok := f.Eq(); ok {
		t.Error("eq survived range operators")
	}
	want := []predicate.Op{predicate.Lte, predicate.Gt}
	if got := f.Ops(); !reflect.DeepEqual(got, want) {
		t.Errorf("Ops() = %v, want %v", got, want)
	}
}

func TestCompile_SymbolFilterEncodesCodes(t *testing.T) {
	c := testCompiler(t)
	p, err := c.Compile(new(Input).Add("obstacle", &SymbolFilter{
		Vocab: vocab.Obstacle,
		In:    []string{"poison", "fire"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	f, _ := p.Field("obstacle")
	o, _ := f.Operand(predicate.In)
	list := o.List()
	if len(list) != 2 {
		t.Fatalf("list = %v", list)
	}
	if !bytes.Equal(list[1].Raw().([]byte), codec.FeltFromUint64(2)) {
		t.Errorf("fire encoded as %v", list[1])
	}
}

func TestCompile_EncodingErrorAborts(t *testing.T) {
	c := testCompiler(t)

	tests := []struct {
		name string
		in   *Input
		want error
	}{
		{
			name: "hex without prefix",
			in:   new(Input).Add("owner", &HexFilter{Eq: ptr("deadbeef")}),
			want: domain.ErrInvalidScalarEncoding,
		},
		{
			name: "unknown symbol in list",
			in:   new(Input).Add("classType", &SymbolFilter{Vocab: vocab.Class, NotIn: []string{"Cleric", "Bard"}}),
			want: domain.ErrUnknownSymbolicName,
		},
		{
			name: "negative felt",
			in:   new(Input).Add("gold", &FeltFilter{Lt: big.NewInt(-1)}),
			want: domain.ErrInvalidScalarEncoding,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompile_NestedPaths(t *testing.T) {
	c := testCompiler(t)
	in := new(Input).
		Add("id", &FeltFilter{Eq: big.NewInt(7)}).
		Nest("_chain", new(Input).Add("valid_from", &FeltFilter{Gte: big.NewInt(100)}))

	p, err := c.Compile(in)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{predicate.ValidFromPath, predicate.ValidToPath, "id"}
	if got := p.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestCompile_CallerCannotWeakenRestriction(t *testing.T) {
	c := testCompiler(t)
	in := new(Input).Nest("_chain", new(Input).Add("valid_to", &FeltFilter{Gte: big.NewInt(1)}))

	p, err := c.Compile(in)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsCurrentVersionOnly() {
		t.Errorf("restriction weakened: %s", p)
	}
}

func TestCompile_BoolFilter(t *testing.T) {
	c := testCompiler(t)
	p, err := c.Compile(new(Input).
		Add("fled", &BoolFilter{Eq: ptr(false)}).
		Add("equipped", &BoolFilter{}))
	if err != nil {
		t.Fatal(err)
	}
	f, ok := p.Field("fled")
	if !ok {
		t.Fatal("fled missing")
	}
	v, _ := f.Eq()
	if codec.DecodeFelt(v.Raw().([]byte)).Sign() != 0 {
		t.Errorf("fled eq = %v, want 0", v)
	}
	if _, ok := p.Field("equipped"); ok {
		t.Error("unset bool filter produced a constraint")
	}
}

func TestCompile_DateAndEmptyFilters(t *testing.T) {
	c := testCompiler(t)
	ts := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	p, err := c.Compile(new(Input).
		Add("timestamp", &DateFilter{Lt: &ts}).
		Add("name", &StringFilter{}).
		Add("xp", (*FeltFilter)(nil)))
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want timestamp + restriction: %s", p.Len(), p)
	}
}
