// Package vocab holds the closed symbolic vocabularies of the game contract:
// fixed bidirectional mappings between an integer code and a symbolic name.
package vocab

import "encoding/json"

// Name identifies a vocabulary.
type Name string

// Known vocabularies.
const (
	Class            Name = "class"
	Beast            Name = "beast"
	Obstacle         Name = "obstacle"
	Attacker         Name = "attacker"
	Item             Name = "item"
	Material         Name = "material"
	ItemType         Name = "item_type"
	ItemSuffix       Name = "item_suffix"      // special1
	ItemNamePrefix   Name = "item_name_prefix" // special2
	ItemNameSuffix   Name = "item_name_suffix" // special3
	ItemStatus       Name = "item_status"
	Slot             Name = "slot"
	AdventurerStatus Name = "adventurer_status"
	DiscoveryType    Name = "discovery_type"
	SubDiscoveryType Name = "sub_discovery_type"
)

// All lists every known vocabulary.
var All = []Name{
	Class, Beast, Obstacle, Attacker, Item, Material, ItemType,
	ItemSuffix, ItemNamePrefix, ItemNameSuffix, ItemStatus, Slot,
	AdventurerStatus, DiscoveryType, SubDiscoveryType,
}

// IsValid reports whether n is a known vocabulary.
func (n Name) IsValid() bool {
	for _, v := range All {
		if v == n {
			return true
		}
	}
	return false
}

// Symbol is a decoded vocabulary value. The zero Symbol is the explicit
// absence value (e.g. an item without a name prefix).
type Symbol struct {
	name    string
	present bool
}

// Some creates a present symbol.
func Some(name string) Symbol { return Symbol{name: name, present: true} }

// None returns the absence value.
func None() Symbol { return Symbol{} }

// Name returns the symbolic name, empty when absent.
func (s Symbol) Name() string { return s.name }

// IsAbsent reports whether s is the absence value.
func (s Symbol) IsAbsent() bool { return !s.present }

func (s Symbol) String() string {
	if !s.present {
		return "<none>"
	}
	return s.name
}

// MarshalJSON renders the symbolic name, or null when absent.
func (s Symbol) MarshalJSON() ([]byte, error) {
	if !s.present {
		return []byte("null"), nil
	}
	return json.Marshal(s.name)
}
