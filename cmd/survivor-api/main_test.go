package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/survivor-labs/survivor-indexer/internal/config"
)

func TestCreateStore_Drivers(t *testing.T) {
	s, err := createStore(context.Background(), config.NetworkConfig{Driver: config.DriverMemory})
	if err != nil {
		t.Fatalf("memory driver: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("memory ping: %v", err)
	}

	if _, err := createStore(context.Background(), config.NetworkConfig{Driver: "valkey"}); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := createStore(context.Background(), config.NetworkConfig{Driver: config.DriverPostgres}); err == nil {
		t.Error("expected error for postgres without dsn")
	}
}

func TestLoadVocabulary_Default(t *testing.T) {
	reg, err := loadVocabulary(config.VocabularyConfig{})
	if err != nil {
		t.Fatalf("default vocabulary: %v", err)
	}
	if name, ok := reg.Lookup("class", 4); !ok || name != "Warrior" {
		t.Errorf("class 4 = %q, %v", name, ok)
	}
	if _, err := loadVocabulary(config.VocabularyConfig{Path: "/nonexistent/vocab.yaml"}); err == nil {
		t.Error("expected error for missing vocabulary file")
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestWideEventMiddleware_RequestID(t *testing.T) {
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
}
