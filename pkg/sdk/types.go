package survivor

import (
	"strings"

	"github.com/survivor-labs/survivor-indexer/internal/domain/entity"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/where"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

// Entities.
type (
	Adventurer = entity.Adventurer
	Score      = entity.Score
	Discovery  = entity.Discovery
	Beast      = entity.Beast
	Battle     = entity.Battle
	Item       = entity.Item
	Specials   = entity.Specials
	Felt       = entity.Felt
	Hex        = entity.Hex
	Symbol     = vocab.Symbol
)

// Filters.
type (
	Where        = where.Input
	StringFilter = where.StringFilter
	SymbolFilter = where.SymbolFilter
	FeltFilter   = where.FeltFilter
	HexFilter    = where.HexFilter
	DateFilter   = where.DateFilter
	BoolFilter   = where.BoolFilter
	OrderBy      = order.Input
	Directive    = order.Directive
)

// Sort directives.
var (
	Asc  = Directive{Asc: true}
	Desc = Directive{Desc: true}
)

// Vocabularies addressed by SymbolFilter.Vocab.
const (
	VocabClass            = vocab.Class
	VocabBeast            = vocab.Beast
	VocabObstacle         = vocab.Obstacle
	VocabAttacker         = vocab.Attacker
	VocabItem             = vocab.Item
	VocabSlot             = vocab.Slot
	VocabItemSuffix       = vocab.ItemSuffix
	VocabItemNamePrefix   = vocab.ItemNamePrefix
	VocabItemNameSuffix   = vocab.ItemNameSuffix
	VocabDiscoveryType    = vocab.DiscoveryType
	VocabSubDiscoveryType = vocab.SubDiscoveryType
)

// Query selects one page of an entity. Nil fields take the defaults:
// no filter, newest versions first, limit 10, skip 0.
type Query struct {
	Where   *Where
	OrderBy *OrderBy
	Limit   *int
	Skip    *int
}

var chainDoc, chainValidFrom, _ = strings.Cut(predicate.ValidFromPath, ".")

// AddChainValidFrom adds a filter on the block a record version became valid.
func AddChainValidFrom(w *Where, f *FeltFilter) *Where {
	return w.Nest(chainDoc, new(Where).Add(chainValidFrom, f))
}
