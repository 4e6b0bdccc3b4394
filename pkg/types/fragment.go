// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
)

// ChunkIDKey is the field injected into every extracted record, holding
// the content-hash identifier of the raw matched text.
const ChunkIDKey = "chunk_id"

// Record is one JSON fragment recovered from free text.
type Record struct {
	// Fields holds the parsed object, including the injected chunk_id.
	Fields map[string]any `json:"-" yaml:"-"`

	// Keys lists the top-level field names in raw-text order, chunk_id last.
	// Parsed maps lose ordering; the tabular output needs it back.
	Keys []string `json:"-" yaml:"-"`

	// ChunkID is the MD5 hex digest of the raw matched text. Identical
	// fragments produce identical identifiers across runs.
	ChunkID string `json:"-" yaml:"-"`

	// Raw is the matched substring the record was parsed from.
	Raw string `json:"-" yaml:"-"`
}

// MarshalJSON writes the record's fields in raw-text order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.Fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ConceptSpace maps the single key "all concepts" to every bracketed
// concept group found in a text, in match order.
type ConceptSpace struct {
	AllConcepts [][]string `json:"all concepts"`
}

// ExtractionResult holds everything recovered from a single input text.
type ExtractionResult struct {
	// Source is the input file name without extension.
	Source string

	// Records contains the extracted JSON fragments in match order.
	Records []Record

	// Concepts is the conceptual space built from bracketed lists.
	Concepts ConceptSpace
}
