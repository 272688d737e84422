package querycache

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/survivor-labs/survivor-indexer/internal/db"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// value is the tagged wire form of a record value.
type value struct {
	Kind  string     `json:"k"`
	Bytes []byte     `json:"b,omitempty"`
	Time  *time.Time `json:"t,omitempty"`
}

const (
	kindNull  = "n"
	kindBytes = "b"
	kindTime  = "t"
)

func encodeRecords(recs []db.Record) ([]byte, error) {
	out := make([]map[string]value, len(recs))
	for i, r := range recs {
		m := make(map[string]value, len(r))
		for k, v := range r {
			switch x := v.(type) {
			case nil:
				m[k] = value{Kind: kindNull}
			case []byte:
				m[k] = value{Kind: kindBytes, Bytes: x}
			case time.Time:
				t := x
				m[k] = value{Kind: kindTime, Time: &t}
			default:
				return nil, fmt.Errorf("field %s: unsupported value %T", k, v)
			}
		}
		out[i] = m
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	return data, nil
}

func decodeRecords(data []byte) ([]db.Record, error) {
	var in []map[string]value
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	recs := make([]db.Record, len(in))
	for i, m := range in {
		r := make(db.Record, len(m))
		for k, v := range m {
			switch v.Kind {
			case kindNull:
				r[k] = nil
			case kindBytes:
				b := v.Bytes
				if b == nil {
					b = []byte{}
				}
				r[k] = b
			case kindTime:
				if v.Time == nil {
					return nil, fmt.Errorf("field %s: time value missing", k)
				}
				r[k] = *v.Time
			default:
				return nil, fmt.Errorf("field %s: unknown kind %q", k, v.Kind)
			}
		}
		recs[i] = r
	}
	return recs, nil
}
