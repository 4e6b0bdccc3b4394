// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output serializes extraction results to their on-disk formats:
// a JSON array of records, a pipe-delimited table, and the conceptual
// space document.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/fragment-engine/pkg/types"
)

// Output file names, fixed by the interface contract.
const (
	RecordsFile      = "cleaned_data.json"
	TableFile        = "graph.csv"
	ConceptSpaceFile = "conceptual_space.json"
)

// WriteResult writes all output files for one extraction result into dir,
// creating the directory if absent. Status lines go to w. The table file
// is omitted when there are no records.
func WriteResult(dir string, result *types.ExtractionResult, w io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	if err := writeRecords(dir, result.Records, w); err != nil {
		return err
	}
	if err := writeTable(dir, result.Records, w); err != nil {
		return err
	}
	return writeConceptSpace(dir, result.Concepts, w)
}

// writeRecords writes the extracted records as a JSON array. An empty
// extraction produces a literal empty array, not null.
func writeRecords(dir string, records []types.Record, w io.Writer) error {
	if records == nil {
		records = []types.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}

	path := filepath.Join(dir, RecordsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(w, "Cleaned JSON data has been saved to %s\n", path)
	return nil
}

// writeTable writes records as a pipe-delimited table whose columns are
// the union of record keys in first-appearance order. With no records it
// prints the no-objects message instead and writes nothing.
func writeTable(dir string, records []types.Record, w io.Writer) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No valid JSON objects found to save to CSV.")
		return nil
	}

	columns := tableColumns(records)
	path := filepath.Join(dir, TableFile)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	cw.Comma = '|'

	cw.Write(columns)
	for _, r := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cellValue(r.Fields[col])
		}
		cw.Write(row)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	fmt.Fprintf(w, "CSV data has been saved to %s\n", path)
	return nil
}

// tableColumns returns the union of record keys in first-appearance order.
func tableColumns(records []types.Record) []string {
	var cols []string
	seen := map[string]bool{}
	for _, r := range records {
		for _, k := range r.Keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// cellValue renders a field for the tabular output. Strings pass through,
// absent keys and JSON nulls become empty cells, everything else renders
// as its JSON encoding.
func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// writeConceptSpace writes the single-key conceptual space document.
func writeConceptSpace(dir string, space types.ConceptSpace, w io.Writer) error {
	if space.AllConcepts == nil {
		space.AllConcepts = [][]string{}
	}

	data, err := json.MarshalIndent(space, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling conceptual space: %w", err)
	}

	path := filepath.Join(dir, ConceptSpaceFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(w, "Conceptual space data has been saved to %s\n", path)
	return nil
}
