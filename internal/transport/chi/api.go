package chi

import (
	jsoniter "github.com/json-iterator/go"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeInvalidScalar    ErrorCode = "invalid_scalar_encoding"
	ErrorCodeUnknownSymbol    ErrorCode = "unknown_symbolic_name"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNetworkNotFound  ErrorCode = "network_not_found"
	ErrorCodeEntityNotFound   ErrorCode = "entity_not_found"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed ErrorCode = "method_not_allowed"
	ErrorCodeDataIntegrity    ErrorCode = "data_integrity"
	ErrorCodeStoreUnavailable ErrorCode = "store_unavailable"
	ErrorCodeInternal         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// QueryRequest is the body of POST /v1/{network}/{entity}.
//
// where maps entity field names to operator objects, e.g.
// {"health": {"gte": "50"}, "classType": {"in": ["Warrior"]}}, plus the
// nested {"chain": {"validFrom": {...}}}. orderBy maps field names to
// {"asc": true} or {"desc": true}.
type QueryRequest struct {
	Where   map[string]jsoniter.RawMessage `json:"where,omitempty"`
	OrderBy map[string]OrderDirective      `json:"orderBy,omitempty"`
	Limit   *int                           `json:"limit,omitempty"`
	Skip    *int                           `json:"skip,omitempty"`
}

// OrderDirective is the asc/desc pair of one orderBy field.
type OrderDirective struct {
	Asc  bool `json:"asc"`
	Desc bool `json:"desc"`
}

// QueryResponse is one page of entities.
type QueryResponse struct {
	Items any `json:"items"`
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// filterOps is the wire form of one field filter. Every literal travels as
// a string: felts in decimal, hex with a 0x prefix, dates in RFC 3339.
type filterOps struct {
	Eq         *string  `json:"eq"`
	In         []string `json:"in"`
	NotIn      []string `json:"notIn"`
	Lt         *string  `json:"lt"`
	Lte        *string  `json:"lte"`
	Gt         *string  `json:"gt"`
	Gte        *string  `json:"gte"`
	Contains   *string  `json:"contains"`
	StartsWith *string  `json:"startsWith"`
	EndsWith   *string  `json:"endsWith"`
}

type boolOps struct {
	Eq *bool `json:"eq"`
}

type chainFilter struct {
	ValidFrom jsoniter.RawMessage `json:"validFrom"`
}

// strictJSON rejects unknown operators and fields.
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

var json = jsoniter.ConfigCompatibleWithStandardLibrary
