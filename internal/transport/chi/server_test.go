package chi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/db/memory"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
	"github.com/survivor-labs/survivor-indexer/internal/repository/snapshot"
	healthuc "github.com/survivor-labs/survivor-indexer/internal/usecase/health"
	queryuc "github.com/survivor-labs/survivor-indexer/internal/usecase/query"
)

var testTime = time.Date(2023, 8, 2, 9, 30, 0, 0, time.UTC)

func scoreRecord(adventurerID, xp uint64) db.Record {
	return db.Record{
		"adventurerId":          codec.FeltFromUint64(adventurerID),
		"address":               []byte{0x0a, 0xbc},
		"rank":                  codec.FeltFromUint64(1),
		"xp":                    codec.FeltFromUint64(xp),
		"txHash":                nil,
		"scoreTime":             testTime,
		"timestamp":             testTime,
		predicate.ValidFromPath: codec.FeltFromUint64(100 + adventurerID),
		predicate.ValidToPath:   nil,
	}
}

func beastRecord(beastCode uint64) db.Record {
	return db.Record{
		"beast":                 codec.FeltFromUint64(beastCode),
		"adventurerId":          codec.FeltFromUint64(1),
		"seed":                  []byte{0x01},
		"special1":              codec.FeltFromUint64(1),
		"special2":              codec.FeltFromUint64(0),
		"special3":              codec.FeltFromUint64(1),
		"health":                codec.FeltFromUint64(20),
		"level":                 codec.FeltFromUint64(3),
		"slainOnTime":           nil,
		"createdTime":           testTime,
		"lastUpdatedTime":       testTime,
		"timestamp":             testTime,
		predicate.ValidFromPath: codec.FeltFromUint64(7),
		predicate.ValidToPath:   nil,
	}
}

type failingExecutor struct{ err error }

func (f failingExecutor) Execute(
	context.Context, string, predicate.Predicate, order.Key, request.Window,
) ([]db.Record, error) {
	return nil, f.err
}

func newTestRouter(t *testing.T, exec queryuc.Executor, pinger healthuc.Pinger) http.Handler {
	t.Helper()
	svc := queryuc.New("mainnet", codec.New(vocab.MustDefault()), exec, zap.NewNop())
	health := healthuc.New(map[string]healthuc.Pinger{"mainnet": pinger}, nil)
	srv := NewServer(map[string]*queryuc.Service{"mainnet": svc}, health, zap.NewNop())
	r := gochi.NewRouter()
	srv.Register(r)
	return r
}

func seededRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	superseded := scoreRecord(1, 5)
	superseded[predicate.ValidToPath] = codec.FeltFromUint64(150)
	store.Insert("scores", superseded, scoreRecord(1, 10), scoreRecord(2, 30), scoreRecord(3, 20))
	store.Insert("beasts", beastRecord(1), beastRecord(2))
	return newTestRouter(t, snapshot.New(store, "mainnet", snapshot.Metrics{}), store)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type scorePage struct {
	Items []struct {
		AdventurerID string  `json:"adventurerId"`
		Address      string  `json:"address"`
		XP           string  `json:"xp"`
		TxHash       *string `json:"txHash"`
		ScoreTime    string  `json:"scoreTime"`
	} `json:"items"`
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestQuery_DefaultSortAndWireEncoding(t *testing.T) {
	rr := do(t, seededRouter(t), http.MethodPost, "/v1/mainnet/scores", `{}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	page := decodeBody[scorePage](t, rr)
	if page.Limit != 10 || page.Skip != 0 {
		t.Errorf("window = %d/%d", page.Limit, page.Skip)
	}
	if len(page.Items) != 3 {
		t.Fatalf("items = %d, want 3 current versions", len(page.Items))
	}
	// newest validFrom first
	var ids []string
	for _, it := range page.Items {
		ids = append(ids, it.AdventurerID)
	}
	if strings.Join(ids, ",") != "3,2,1" {
		t.Errorf("order = %v", ids)
	}
	first := page.Items[0]
	if first.Address != "0x0abc" || first.TxHash != nil || first.ScoreTime != "2023-08-02T09:30:00Z" {
		t.Errorf("wire encoding = %+v", first)
	}
}

func TestQuery_FilterSortWindow(t *testing.T) {
	body := `{
		"where": {"xp": {"gte": "10"}},
		"orderBy": {"xp": {"asc": true}},
		"limit": 1,
		"skip": 1
	}`
	rr := do(t, seededRouter(t), http.MethodPost, "/v1/mainnet/scores", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	page := decodeBody[scorePage](t, rr)
	if len(page.Items) != 1 || page.Items[0].XP != "20" {
		t.Errorf("items = %+v, want xp 20", page.Items)
	}
	if page.Limit != 1 || page.Skip != 1 {
		t.Errorf("window = %d/%d", page.Limit, page.Skip)
	}
}

func TestQuery_ChainFilter(t *testing.T) {
	body := `{"where": {"chain": {"validFrom": {"gt": "101"}}}}`
	rr := do(t, seededRouter(t), http.MethodPost, "/v1/mainnet/scores", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if page := decodeBody[scorePage](t, rr); len(page.Items) != 2 {
		t.Errorf("items = %d, want 2", len(page.Items))
	}
}

func TestQuery_SymbolFilterAndRendering(t *testing.T) {
	body := `{"where": {"beast": {"eq": "Griffin"}}}`
	rr := do(t, seededRouter(t), http.MethodPost, "/v1/mainnet/beasts", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	page := decodeBody[struct {
		Items []map[string]any `json:"items"`
	}](t, rr)
	if len(page.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(page.Items))
	}
	it := page.Items[0]
	if it["beast"] != "Griffin" || it["special1"] != "of Power" || it["special2"] != nil || it["special3"] != "Bane" {
		t.Errorf("beast = %v", it)
	}
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   ErrorCode
	}{
		{"unknown network", "/v1/sepolia/scores", `{}`, http.StatusNotFound, ErrorCodeNetworkNotFound},
		{"unknown entity", "/v1/mainnet/players", `{}`, http.StatusNotFound, ErrorCodeEntityNotFound},
		{"malformed body", "/v1/mainnet/scores", `{"where":`, http.StatusBadRequest, ErrorCodeBadRequest},
		{"unknown body field", "/v1/mainnet/scores", `{"first": 3}`, http.StatusBadRequest, ErrorCodeBadRequest},
		{"missing hex prefix", "/v1/mainnet/scores", `{"where": {"address": {"eq": "abc"}}}`, http.StatusBadRequest, ErrorCodeInvalidScalar},
		{"unknown symbol", "/v1/mainnet/beasts", `{"where": {"beast": {"eq": "Dragonling"}}}`, http.StatusBadRequest, ErrorCodeUnknownSymbol},
		{"unknown field", "/v1/mainnet/scores", `{"where": {"gold": {"eq": "1"}}}`, http.StatusBadRequest, ErrorCodeBadRequest},
		{"limit zero", "/v1/mainnet/scores", `{"limit": 0}`, http.StatusBadRequest, ErrorCodeBadRequest},
		{"limit above max", "/v1/mainnet/scores", `{"limit": 101}`, http.StatusBadRequest, ErrorCodeBadRequest},
		{"negative skip", "/v1/mainnet/scores", `{"skip": -1}`, http.StatusBadRequest, ErrorCodeBadRequest},
	}
	h := seededRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.status, rr.Body)
			}
			if got := decodeBody[ErrorResponse](t, rr); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestQuery_DataIntegrityHidesDetails(t *testing.T) {
	store := memory.NewStore()
	broken := beastRecord(1)
	broken["beast"] = codec.FeltFromUint64(9999)
	store.Insert("beasts", broken)
	h := newTestRouter(t, snapshot.New(store, "mainnet", snapshot.Metrics{}), store)

	rr := do(t, h, http.MethodPost, "/v1/mainnet/beasts", `{}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	got := decodeBody[ErrorResponse](t, rr)
	if got.Code != ErrorCodeDataIntegrity || got.Message != "data integrity violation" {
		t.Errorf("error = %+v", got)
	}
}

func TestQuery_StoreUnavailable(t *testing.T) {
	exec := failingExecutor{err: &db.Error{Op: db.OpFind, Err: errors.New("dial tcp 10.0.0.5:5432: refused")}}
	h := newTestRouter(t, exec, memory.NewStore())

	rr := do(t, h, http.MethodPost, "/v1/mainnet/scores", `{}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	got := decodeBody[ErrorResponse](t, rr)
	if got.Code != ErrorCodeStoreUnavailable || strings.Contains(got.Message, "10.0.0.5") {
		t.Errorf("error = %+v", got)
	}
}

func TestBrowse_QueryParams(t *testing.T) {
	h := seededRouter(t)

	rr := do(t, h, http.MethodGet, "/v1/mainnet/scores?limit=2&skip=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	page := decodeBody[scorePage](t, rr)
	if len(page.Items) != 2 || page.Items[0].AdventurerID != "2" {
		t.Errorf("items = %+v", page.Items)
	}
	if page.Limit != 2 || page.Skip != 1 {
		t.Errorf("window = %d/%d", page.Limit, page.Skip)
	}

	rr = do(t, h, http.MethodGet, "/v1/mainnet/scores?limit=many", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid limit: status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rr := do(t, seededRouter(t), http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[HealthResponse](t, rr)
	if got.Status != "ok" || got.Checks["database:mainnet"] != "ok" {
		t.Errorf("health = %+v", got)
	}
}

func TestRoutes_NotFoundAndMethod(t *testing.T) {
	h := seededRouter(t)
	if rr := do(t, h, http.MethodGet, "/graphql", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route: status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/v1/mainnet/scores", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("delete: status = %d", rr.Code)
	}
}
