package entity

import (
	"fmt"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

// Record is a raw stored record keyed by field name. Values are []byte,
// time.Time or nil.
type Record = map[string]any

// Type is implemented by pointers to the entity structs.
type Type[T any] interface {
	*T
	entity() Name
	decode(r *reader)
}

// Materialize decodes rec into an entity of type T. Every declared field must
// be present as a key; a nil value decodes to the zero value of the field.
func Materialize[T any, PT Type[T]](c *codec.Codec, rec Record) (T, error) {
	var v T
	p := PT(&v)
	r := &reader{codec: c, entity: p.entity(), rec: rec}
	p.decode(r)
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return v, nil
}

// EntityOf returns the entity name of T.
func EntityOf[T any, PT Type[T]]() Name {
	var v T
	return PT(&v).entity()
}

type reader struct {
	codec  *codec.Codec
	entity Name
	rec    Record
	err    error
}

// raw returns the stored value of key, or ok=false when decoding already
// failed, the key is missing or the value is null.
func (r *reader) raw(key string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, present := r.rec[key]
	if !present {
		r.err = &domain.MissingFieldError{Entity: string(r.entity), Field: key}
		return nil, false
	}
	return v, v != nil
}

func (r *reader) bytes(key string, kind codec.Kind) ([]byte, bool) {
	v, ok := r.raw(key)
	if !ok {
		return nil, false
	}
	b, isBytes := v.([]byte)
	if !isBytes {
		r.fail(key, domain.NewScalarEncoding(kind.String(), fmt.Sprintf("stored as %T", v)))
		return nil, false
	}
	return b, true
}

func (r *reader) fail(key string, err error) {
	r.err = fmt.Errorf("%s.%s: %w", r.entity, key, err)
}

func (r *reader) felt(key string) *Felt {
	b, ok := r.bytes(key, codec.Felt)
	if !ok {
		return nil
	}
	return NewFelt(codec.DecodeFelt(b))
}

func (r *reader) flag(key string) *Felt {
	b, ok := r.bytes(key, codec.Bool)
	if !ok {
		return nil
	}
	return NewFelt(codec.DecodeBool(b))
}

func (r *reader) hex(key string) Hex {
	b, ok := r.bytes(key, codec.Hex)
	if !ok {
		return ""
	}
	return Hex(codec.DecodeHex(b))
}

func (r *reader) text(key string) string {
	b, ok := r.bytes(key, codec.String)
	if !ok {
		return ""
	}
	return codec.DecodeString(b)
}

func (r *reader) date(key string) *time.Time {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	t, isTime := v.(time.Time)
	if !isTime {
		r.fail(key, domain.NewScalarEncoding(codec.Date.String(), fmt.Sprintf("stored as %T", v)))
		return nil
	}
	return &t
}

func (r *reader) symbol(key string, n vocab.Name) vocab.Symbol {
	b, ok := r.bytes(key, codec.Symbol)
	if !ok {
		return vocab.None()
	}
	s, err := r.codec.DecodeSymbol(n, b)
	if err != nil {
		r.fail(key, err)
		return vocab.None()
	}
	return s
}

func (r *reader) specials() Specials {
	return Specials{
		Special1: r.symbol("special1", vocab.ItemSuffix),
		Special2: r.symbol("special2", vocab.ItemNamePrefix),
		Special3: r.symbol("special3", vocab.ItemNameSuffix),
	}
}

func (*Adventurer) entity() Name { return Adventurers }

func (a *Adventurer) decode(r *reader) {
	a.ID = r.felt("id")
	a.LastAction = r.felt("lastAction")
	a.Owner = r.hex("owner")
	a.ClassType = r.symbol("classType", vocab.Class)
	a.HomeRealm = r.felt("homeRealm")
	a.Name = r.text("name")
	a.Health = r.felt("health")
	a.Strength = r.felt("strength")
	a.Dexterity = r.felt("dexterity")
	a.Vitality = r.felt("vitality")
	a.Intelligence = r.felt("intelligence")
	a.Wisdom = r.felt("wisdom")
	a.Charisma = r.felt("charisma")
	a.XP = r.felt("xp")
	a.Weapon = r.symbol("weapon", vocab.Item)
	a.Chest = r.symbol("chest", vocab.Item)
	a.Head = r.symbol("head", vocab.Item)
	a.Waist = r.symbol("waist", vocab.Item)
	a.Foot = r.symbol("foot", vocab.Item)
	a.Hand = r.symbol("hand", vocab.Item)
	a.Neck = r.symbol("neck", vocab.Item)
	a.Ring = r.symbol("ring", vocab.Item)
	a.BeastHealth = r.felt("beastHealth")
	a.StatUpgrades = r.felt("statUpgrades")
	a.Gold = r.felt("gold")
	a.CreatedTime = r.date("createdTime")
	a.LastUpdatedTime = r.date("lastUpdatedTime")
	a.Timestamp = r.date("timestamp")
}

func (*Score) entity() Name { return Scores }

func (s *Score) decode(r *reader) {
	s.AdventurerID = r.felt("adventurerId")
	s.Address = r.hex("address")
	s.Rank = r.felt("rank")
	s.XP = r.felt("xp")
	s.TxHash = r.hex("txHash")
	s.ScoreTime = r.date("scoreTime")
	s.Timestamp = r.date("timestamp")
}

func (*Discovery) entity() Name { return Discoveries }

func (d *Discovery) decode(r *reader) {
	d.AdventurerID = r.felt("adventurerId")
	d.AdventurerHealth = r.felt("adventurerHealth")
	d.DiscoveryType = r.symbol("discoveryType", vocab.DiscoveryType)
	d.SubDiscoveryType = r.symbol("subDiscoveryType", vocab.SubDiscoveryType)
	d.OutputAmount = r.felt("outputAmount")
	d.Obstacle = r.symbol("obstacle", vocab.Obstacle)
	d.ObstacleLevel = r.felt("obstacleLevel")
	d.DodgedObstacle = r.flag("dodgedObstacle")
	d.DamageTaken = r.felt("damageTaken")
	d.DamageLocation = r.symbol("damageLocation", vocab.Slot)
	d.XPEarnedAdventurer = r.felt("xpEarnedAdventurer")
	d.XPEarnedItems = r.felt("xpEarnedItems")
	d.Entity = r.symbol("entity", vocab.Beast)
	d.EntityLevel = r.felt("entityLevel")
	d.EntityHealth = r.felt("entityHealth")
	d.Specials = r.specials()
	d.Ambushed = r.flag("ambushed")
	d.DiscoveryTime = r.date("discoveryTime")
	d.Timestamp = r.date("timestamp")
	d.Seed = r.hex("seed")
	d.TxHash = r.hex("txHash")
}

func (*Beast) entity() Name { return Beasts }

func (b *Beast) decode(r *reader) {
	b.Beast = r.symbol("beast", vocab.Beast)
	b.AdventurerID = r.felt("adventurerId")
	b.Seed = r.hex("seed")
	b.Specials = r.specials()
	b.Health = r.felt("health")
	b.Level = r.felt("level")
	b.SlainOnTime = r.date("slainOnTime")
	b.CreatedTime = r.date("createdTime")
	b.LastUpdatedTime = r.date("lastUpdatedTime")
	b.Timestamp = r.date("timestamp")
}

func (*Battle) entity() Name { return Battles }

func (b *Battle) decode(r *reader) {
	b.AdventurerID = r.felt("adventurerId")
	b.AdventurerHealth = r.felt("adventurerHealth")
	b.Beast = r.symbol("beast", vocab.Beast)
	b.BeastHealth = r.felt("beastHealth")
	b.BeastLevel = r.felt("beastLevel")
	b.Specials = r.specials()
	b.Seed = r.hex("seed")
	b.Attacker = r.symbol("attacker", vocab.Attacker)
	b.Fled = r.flag("fled")
	b.DamageDealt = r.felt("damageDealt")
	b.CriticalHit = r.flag("criticalHit")
	b.DamageTaken = r.felt("damageTaken")
	b.DamageLocation = r.symbol("damageLocation", vocab.Slot)
	b.XPEarnedAdventurer = r.felt("xpEarnedAdventurer")
	b.XPEarnedItems = r.felt("xpEarnedItems")
	b.GoldEarned = r.felt("goldEarned")
	b.TxHash = r.hex("txHash")
	b.DiscoveryTime = r.date("discoveryTime")
	b.BlockTime = r.date("blockTime")
	b.Timestamp = r.date("timestamp")
}

func (*Item) entity() Name { return Items }

func (i *Item) decode(r *reader) {
	i.Item = r.symbol("item", vocab.Item)
	i.AdventurerID = r.felt("adventurerId")
	i.Cost = r.felt("cost")
	i.OwnerAddress = r.hex("ownerAddress")
	i.Owner = r.flag("owner")
	i.Equipped = r.flag("equipped")
	i.CreatedTime = r.date("createdTime")
	i.PurchasedTime = r.date("purchasedTime")
	i.Specials = r.specials()
	i.XP = r.felt("xp")
	i.LastUpdatedTime = r.date("lastUpdatedTime")
	i.Timestamp = r.date("timestamp")
}
