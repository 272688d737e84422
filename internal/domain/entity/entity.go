// Package entity declares the six queryable entities, their field schemas
// and the materializer that decodes raw stored records into them.
package entity

import (
	"math/big"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

// Felt is a decoded felt. It renders as decimal text on the wire.
type Felt big.Int

// NewFelt wraps v. A nil v yields nil.
func NewFelt(v *big.Int) *Felt {
	return (*Felt)(v)
}

// Int returns the underlying integer.
func (f *Felt) Int() *big.Int { return (*big.Int)(f) }

func (f *Felt) String() string { return f.Int().String() }

// MarshalJSON renders the felt as a quoted decimal string.
func (f *Felt) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	return []byte(`"` + f.Int().String() + `"`), nil
}

// Hex is a 0x-prefixed lowercase hex string. Empty means absent.
type Hex string

// MarshalJSON renders the hex string, or null when absent.
func (h Hex) MarshalJSON() ([]byte, error) {
	if h == "" {
		return []byte("null"), nil
	}
	return []byte(`"` + string(h) + `"`), nil
}

// Adventurer is one version of a player character and its equipped items.
type Adventurer struct {
	ID              *Felt        `json:"id"`
	LastAction      *Felt        `json:"lastAction"`
	Owner           Hex          `json:"owner"`
	ClassType       vocab.Symbol `json:"classType"`
	HomeRealm       *Felt        `json:"homeRealm"`
	Name            string       `json:"name"`
	Health          *Felt        `json:"health"`
	Strength        *Felt        `json:"strength"`
	Dexterity       *Felt        `json:"dexterity"`
	Vitality        *Felt        `json:"vitality"`
	Intelligence    *Felt        `json:"intelligence"`
	Wisdom          *Felt        `json:"wisdom"`
	Charisma        *Felt        `json:"charisma"`
	XP              *Felt        `json:"xp"`
	Weapon          vocab.Symbol `json:"weapon"`
	Chest           vocab.Symbol `json:"chest"`
	Head            vocab.Symbol `json:"head"`
	Waist           vocab.Symbol `json:"waist"`
	Foot            vocab.Symbol `json:"foot"`
	Hand            vocab.Symbol `json:"hand"`
	Neck            vocab.Symbol `json:"neck"`
	Ring            vocab.Symbol `json:"ring"`
	BeastHealth     *Felt        `json:"beastHealth"`
	StatUpgrades    *Felt        `json:"statUpgrades"`
	Gold            *Felt        `json:"gold"`
	CreatedTime     *time.Time   `json:"createdTime"`
	LastUpdatedTime *time.Time   `json:"lastUpdatedTime"`
	Timestamp       *time.Time   `json:"timestamp"`
}

// Score is one version of an adventurer's leaderboard entry.
type Score struct {
	AdventurerID *Felt      `json:"adventurerId"`
	Address      Hex        `json:"address"`
	Rank         *Felt      `json:"rank"`
	XP           *Felt      `json:"xp"`
	TxHash       Hex        `json:"txHash"`
	ScoreTime    *time.Time `json:"scoreTime"`
	Timestamp    *time.Time `json:"timestamp"`
}

// Specials are the three name affixes shared by beasts and items.
type Specials struct {
	Special1 vocab.Symbol `json:"special1"`
	Special2 vocab.Symbol `json:"special2"`
	Special3 vocab.Symbol `json:"special3"`
}

// Discovery is something an adventurer found while exploring. DodgedObstacle
// and Ambushed hold the raw stored integer; non-zero means true.
type Discovery struct {
	AdventurerID       *Felt        `json:"adventurerId"`
	AdventurerHealth   *Felt        `json:"adventurerHealth"`
	DiscoveryType      vocab.Symbol `json:"discoveryType"`
	SubDiscoveryType   vocab.Symbol `json:"subDiscoveryType"`
	OutputAmount       *Felt        `json:"outputAmount"`
	Obstacle           vocab.Symbol `json:"obstacle"`
	ObstacleLevel      *Felt        `json:"obstacleLevel"`
	DodgedObstacle     *Felt        `json:"dodgedObstacle"`
	DamageTaken        *Felt        `json:"damageTaken"`
	DamageLocation     vocab.Symbol `json:"damageLocation"`
	XPEarnedAdventurer *Felt        `json:"xpEarnedAdventurer"`
	XPEarnedItems      *Felt        `json:"xpEarnedItems"`
	Entity             vocab.Symbol `json:"entity"`
	EntityLevel        *Felt        `json:"entityLevel"`
	EntityHealth       *Felt        `json:"entityHealth"`
	Specials
	Ambushed      *Felt      `json:"ambushed"`
	DiscoveryTime *time.Time `json:"discoveryTime"`
	Timestamp     *time.Time `json:"timestamp"`
	Seed          Hex        `json:"seed"`
	TxHash        Hex        `json:"txHash"`
}

// Beast is one version of a beast an adventurer encountered.
type Beast struct {
	Beast        vocab.Symbol `json:"beast"`
	AdventurerID *Felt        `json:"adventurerId"`
	Seed         Hex          `json:"seed"`
	Specials
	Health          *Felt      `json:"health"`
	Level           *Felt      `json:"level"`
	SlainOnTime     *time.Time `json:"slainOnTime"`
	CreatedTime     *time.Time `json:"createdTime"`
	LastUpdatedTime *time.Time `json:"lastUpdatedTime"`
	Timestamp       *time.Time `json:"timestamp"`
}

// Battle is a single attack exchange. Fled and CriticalHit hold the raw
// stored integer; non-zero means true.
type Battle struct {
	AdventurerID     *Felt        `json:"adventurerId"`
	AdventurerHealth *Felt        `json:"adventurerHealth"`
	Beast            vocab.Symbol `json:"beast"`
	BeastHealth      *Felt        `json:"beastHealth"`
	BeastLevel       *Felt        `json:"beastLevel"`
	Specials
	Seed               Hex          `json:"seed"`
	Attacker           vocab.Symbol `json:"attacker"`
	Fled               *Felt        `json:"fled"`
	DamageDealt        *Felt        `json:"damageDealt"`
	CriticalHit        *Felt        `json:"criticalHit"`
	DamageTaken        *Felt        `json:"damageTaken"`
	DamageLocation     vocab.Symbol `json:"damageLocation"`
	XPEarnedAdventurer *Felt        `json:"xpEarnedAdventurer"`
	XPEarnedItems      *Felt        `json:"xpEarnedItems"`
	GoldEarned         *Felt        `json:"goldEarned"`
	TxHash             Hex          `json:"txHash"`
	DiscoveryTime      *time.Time   `json:"discoveryTime"`
	BlockTime          *time.Time   `json:"blockTime"`
	Timestamp          *time.Time   `json:"timestamp"`
}

// Item is one version of an item owned by an adventurer. Owner and Equipped
// hold the raw stored integer; non-zero means true.
type Item struct {
	Item          vocab.Symbol `json:"item"`
	AdventurerID  *Felt        `json:"adventurerId"`
	Cost          *Felt        `json:"cost"`
	OwnerAddress  Hex          `json:"ownerAddress"`
	Owner         *Felt        `json:"owner"`
	Equipped      *Felt        `json:"equipped"`
	CreatedTime   *time.Time   `json:"createdTime"`
	PurchasedTime *time.Time   `json:"purchasedTime"`
	Specials
	XP              *Felt      `json:"xp"`
	LastUpdatedTime *time.Time `json:"lastUpdatedTime"`
	Timestamp       *time.Time `json:"timestamp"`
}
