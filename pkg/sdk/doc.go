// Package survivor is a Go client for the Loot Survivor indexed game data.
// It reads the same versioned entity store the HTTP API serves, without HTTP.
//
//	client, _ := survivor.New(ctx,
//	    survivor.WithPostgres("postgres://localhost:5432/mainnet"),
//	    survivor.WithNetwork("mainnet"),
//	)
//	defer client.Close()
//
//	alive := new(survivor.Where).
//	    Add("health", &survivor.FeltFilter{Gt: big.NewInt(0)}).
//	    Add("classType", &survivor.SymbolFilter{Vocab: survivor.VocabClass, Eq: ptr("Warrior")})
//	top := new(survivor.OrderBy).Add("xp", survivor.Desc)
//	adventurers, _ := client.Adventurers(ctx, survivor.Query{Where: alive, OrderBy: top})
//
// Only current versions of each record are returned. Filter literals use
// the wire encodings: felts as integers, hex strings with a 0x prefix and
// vocabulary fields by symbolic name.
package survivor
