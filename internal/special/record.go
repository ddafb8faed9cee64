package special

import (
	"fmt"
	"sort"
)

// Record is the serializable progress of one special.
// Fields hold integer state (heights are raw Fixed values); Texts hold
// texture names and other strings. The encoding on disk is up to the caller.
type Record struct {
	Kind    string            `yaml:"kind"`
	Paused  bool              `yaml:"paused,omitempty"`
	Sectors []SectorRef       `yaml:"sectors"`
	Fields  map[string]int64  `yaml:"fields,omitempty"`
	Texts   map[string]string `yaml:"texts,omitempty"`
}

// Set stores an integer field.
func (r *Record) Set(key string, v int64) {
	if r.Fields == nil {
		r.Fields = make(map[string]int64)
	}
	r.Fields[key] = v
}

// SetText stores a string field.
func (r *Record) SetText(key, v string) {
	if r.Texts == nil {
		r.Texts = make(map[string]string)
	}
	r.Texts[key] = v
}

// Int returns an integer field, or an error naming the missing key.
func (r Record) Int(key string) (int64, error) {
	v, ok := r.Fields[key]
	if !ok {
		return 0, fmt.Errorf("special: %s record missing field %q", r.Kind, key)
	}
	return v, nil
}

// Text returns a string field, or "" when absent.
func (r Record) Text(key string) string {
	return r.Texts[key]
}

// FieldKeys returns the integer field names in sorted order.
func (r Record) FieldKeys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TextKeys returns the string field names in sorted order.
func (r Record) TextKeys() []string {
	keys := make([]string, 0, len(r.Texts))
	for k := range r.Texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decoder reads several integer fields and keeps the first error.
//
//	d := special.NewDecoder(rec)
//	speed := core.Fixed(d.Int("speed"))
//	if err := d.Err(); err != nil { ... }
type Decoder struct {
	rec Record
	err error
}

// NewDecoder wraps rec.
func NewDecoder(rec Record) *Decoder {
	return &Decoder{rec: rec}
}

// Int returns the field or zero after recording the first missing key.
func (d *Decoder) Int(key string) int64 {
	v, err := d.rec.Int(key)
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}

// Err returns the first missing-field error.
func (d *Decoder) Err() error {
	return d.err
}
