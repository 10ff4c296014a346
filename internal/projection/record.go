package projection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/iwvelando/investment-calculator/pkg/coerce"
)

// Record is an ordered mapping of parameter name to value. Insertion order
// is preserved because it drives the parameter block of the report.
type Record struct {
	keys   []string
	values map[string]float64
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]float64)}
}

// Set stores value under key, appending key on first use.
func (r *Record) Set(key string, value float64) *Record {
	if r.values == nil {
		r.values = make(map[string]float64)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return r
}

// Get returns the value for key and whether it was present.
func (r *Record) Get(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Float returns the value for key or 0 when absent.
func (r *Record) Float(key string) float64 {
	v, _ := r.Get(key)
	return v
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len returns the number of parameters.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns an independent copy.
func (r *Record) Clone() *Record {
	c := NewRecord()
	for _, k := range r.Keys() {
		c.Set(k, r.values[k])
	}
	return c
}

// RecordFromMap coerces loosely typed values into a Record. Keys listed in
// order come first, in that order; any remaining keys follow alphabetically.
func RecordFromMap(values map[string]interface{}, order []string) *Record {
	rec := NewRecord()
	seen := make(map[string]struct{}, len(values))
	for _, key := range order {
		if v, ok := values[key]; ok {
			rec.Set(key, coerce.Value(v))
			seen[key] = struct{}{}
		}
	}

	remaining := make([]string, 0, len(values))
	for key := range values {
		if _, ok := seen[key]; !ok {
			remaining = append(remaining, key)
		}
	}
	sort.Strings(remaining)
	for _, key := range remaining {
		rec.Set(key, coerce.Value(values[key]))
	}
	return rec
}

// MarshalJSON encodes the record as an object with keys in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object preserving the order keys appear in.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parameters must be a JSON object")
	}

	*r = Record{values: make(map[string]float64)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.Set(key, coerce.Value(raw))
	}
	_, err = dec.Token()
	return err
}
