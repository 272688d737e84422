package entity

import (
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

// Name identifies an entity collection.
type Name string

const (
	Adventurers Name = "adventurers"
	Scores      Name = "scores"
	Discoveries Name = "discoveries"
	Beasts      Name = "beasts"
	Battles     Name = "battles"
	Items       Name = "items"
)

// Names lists every entity in route order.
var Names = []Name{Adventurers, Scores, Discoveries, Beasts, Battles, Items}

// ChainField is the wire name of the nested version filter.
const ChainField = "chain"

// Field describes one stored attribute of an entity.
type Field struct {
	Name  string
	Kind  codec.Kind
	Vocab vocab.Name
	// FilterAs overrides the filter kind when callers filter by raw code.
	FilterAs codec.Kind
}

// FilterKind returns the kind used to build filters for this field.
func (f Field) FilterKind() codec.Kind {
	if f.FilterAs != 0 {
		return f.FilterAs
	}
	return f.Kind
}

// Schema is the declared field list of an entity. Field order is the sort
// precedence order.
type Schema struct {
	Entity Name
	Fields []Field
	index  map[string]int
}

func newSchema(n Name, fields ...Field) *Schema {
	s := &Schema{Entity: n, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// SchemaOf returns the schema of an entity.
func SchemaOf(n Name) (*Schema, bool) {
	s, ok := schemas[n]
	return s, ok
}

func felt(name string) Field { return Field{Name: name, Kind: codec.Felt} }
func hex(name string) Field  { return Field{Name: name, Kind: codec.Hex} }
func text(name string) Field { return Field{Name: name, Kind: codec.String} }
func flag(name string) Field { return Field{Name: name, Kind: codec.Bool} }
func date(name string) Field { return Field{Name: name, Kind: codec.Date} }
func symbol(name string, v vocab.Name) Field {
	return Field{Name: name, Kind: codec.Symbol, Vocab: v}
}

// symbolByCode decodes to a symbol but is filtered by its felt code.
func symbolByCode(name string, v vocab.Name) Field {
	return Field{Name: name, Kind: codec.Symbol, Vocab: v, FilterAs: codec.Felt}
}

func specials() []Field {
	return []Field{
		symbol("special1", vocab.ItemSuffix),
		symbol("special2", vocab.ItemNamePrefix),
		symbol("special3", vocab.ItemNameSuffix),
	}
}

func join(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var schemas = map[Name]*Schema{
	Adventurers: newSchema(Adventurers,
		felt("id"),
		felt("lastAction"),
		hex("owner"),
		symbol("classType", vocab.Class),
		felt("homeRealm"),
		text("name"),
		felt("health"),
		felt("strength"),
		felt("dexterity"),
		felt("vitality"),
		felt("intelligence"),
		felt("wisdom"),
		felt("charisma"),
		felt("xp"),
		symbolByCode("weapon", vocab.Item),
		symbolByCode("chest", vocab.Item),
		symbolByCode("head", vocab.Item),
		symbolByCode("waist", vocab.Item),
		symbolByCode("foot", vocab.Item),
		symbolByCode("hand", vocab.Item),
		symbolByCode("neck", vocab.Item),
		symbolByCode("ring", vocab.Item),
		felt("beastHealth"),
		felt("statUpgrades"),
		felt("gold"),
		date("createdTime"),
		date("lastUpdatedTime"),
		date("timestamp"),
	),
	Scores: newSchema(Scores,
		felt("adventurerId"),
		hex("address"),
		felt("rank"),
		felt("xp"),
		hex("txHash"),
		date("scoreTime"),
		date("timestamp"),
	),
	Discoveries: newSchema(Discoveries, join([]Field{
		felt("adventurerId"),
		felt("adventurerHealth"),
		symbol("discoveryType", vocab.DiscoveryType),
		symbol("subDiscoveryType", vocab.SubDiscoveryType),
		felt("outputAmount"),
		symbol("obstacle", vocab.Obstacle),
		felt("obstacleLevel"),
		flag("dodgedObstacle"),
		felt("damageTaken"),
		symbol("damageLocation", vocab.Slot),
		felt("xpEarnedAdventurer"),
		felt("xpEarnedItems"),
		symbolByCode("entity", vocab.Beast),
		felt("entityLevel"),
		felt("entityHealth"),
	}, specials(), []Field{
		flag("ambushed"),
		date("discoveryTime"),
		date("timestamp"),
		hex("seed"),
		hex("txHash"),
	})...),
	Beasts: newSchema(Beasts, join([]Field{
		symbol("beast", vocab.Beast),
		felt("adventurerId"),
		hex("seed"),
	}, specials(), []Field{
		felt("health"),
		felt("level"),
		date("slainOnTime"),
		date("createdTime"),
		date("lastUpdatedTime"),
		date("timestamp"),
	})...),
	Battles: newSchema(Battles, join([]Field{
		felt("adventurerId"),
		felt("adventurerHealth"),
		symbol("beast", vocab.Beast),
		felt("beastHealth"),
		felt("beastLevel"),
	}, specials(), []Field{
		hex("seed"),
		symbol("attacker", vocab.Attacker),
		flag("fled"),
		felt("damageDealt"),
		flag("criticalHit"),
		felt("damageTaken"),
		symbol("damageLocation", vocab.Slot),
		felt("xpEarnedAdventurer"),
		felt("xpEarnedItems"),
		felt("goldEarned"),
		hex("txHash"),
		date("discoveryTime"),
		date("blockTime"),
		date("timestamp"),
	})...),
	Items: newSchema(Items, join([]Field{
		symbol("item", vocab.Item),
		felt("adventurerId"),
		felt("cost"),
		hex("ownerAddress"),
		flag("owner"),
		flag("equipped"),
		date("createdTime"),
		date("purchasedTime"),
	}, specials(), []Field{
		felt("xp"),
		date("lastUpdatedTime"),
		date("timestamp"),
	})...),
}
