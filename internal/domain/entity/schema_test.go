package entity

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

func TestSchemas_Declared(t *testing.T) {
	for _, n := range Names {
		s, ok := SchemaOf(n)
		if !ok {
			t.Fatalf("missing schema for %s", n)
		}
		seen := map[string]bool{}
		for _, f := range s.Fields {
			if seen[f.Name] {
				t.Errorf("%s: duplicate field %s", n, f.Name)
			}
			seen[f.Name] = true
			if f.Kind == codec.Symbol && !f.Vocab.IsValid() {
				t.Errorf("%s.%s: symbol without vocabulary", n, f.Name)
			}
		}
	}
	if _, ok := SchemaOf("heroes"); ok {
		t.Error("unexpected schema for heroes")
	}
}

func TestField_FilterKind(t *testing.T) {
	s, _ := SchemaOf(Adventurers)
	weapon, _ := s.Field("weapon")
	if weapon.FilterKind() != codec.Felt {
		t.Errorf("weapon filter kind = %v, want felt", weapon.FilterKind())
	}
	class, _ := s.Field("classType")
	if class.FilterKind() != codec.Symbol || class.Vocab != vocab.Class {
		t.Errorf("classType = %+v", class)
	}
	if _, ok := s.Field("level"); ok {
		t.Error("adventurers has no level field")
	}
}

func TestWireEncoding(t *testing.T) {
	s := Score{
		AdventurerID: NewFelt(big.NewInt(7)),
		Address:      "0xabc",
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"adventurerId":"7","address":"0xabc","rank":null,"xp":null,"txHash":null,"scoreTime":null,"timestamp":null}`
	if string(b) != want {
		t.Errorf("json = %s\nwant  %s", b, want)
	}

	bt := Beast{Beast: vocab.Some("Phoenix")}
	b, err = json.Marshal(bt.Specials)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"special1":null,"special2":null,"special3":null}` {
		t.Errorf("specials json = %s", b)
	}
}
