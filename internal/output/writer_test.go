package output_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/fragment-engine/internal/extract"
	"github.com/pdiddy/fragment-engine/internal/output"
	"github.com/pdiddy/fragment-engine/pkg/types"
)

func writeAndRead(t *testing.T, result *types.ExtractionResult) (string, string) {
	t.Helper()
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := output.WriteResult(dir, result, &buf); err != nil {
		t.Fatal(err)
	}
	return dir, buf.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestWriteResultFiles(t *testing.T) {
	text := `{"name": "alpha", "value": 3} then [x, y]`
	result := &types.ExtractionResult{
		Source:   "sample",
		Records:  extract.ScanFragments(text),
		Concepts: extract.ScanConcepts(text),
	}

	dir, status := writeAndRead(t, result)

	records := readFile(t, filepath.Join(dir, output.RecordsFile))
	// Field order follows the raw text, chunk_id last.
	nameIdx := strings.Index(records, `"name"`)
	valueIdx := strings.Index(records, `"value"`)
	chunkIdx := strings.Index(records, `"chunk_id"`)
	if nameIdx == -1 || valueIdx == -1 || chunkIdx == -1 {
		t.Fatalf("missing fields in records output:\n%s", records)
	}
	if !(nameIdx < valueIdx && valueIdx < chunkIdx) {
		t.Errorf("fields out of raw-text order:\n%s", records)
	}

	concepts := readFile(t, filepath.Join(dir, output.ConceptSpaceFile))
	if !strings.Contains(concepts, `"all concepts"`) {
		t.Errorf("missing all-concepts key:\n%s", concepts)
	}

	for _, msg := range []string{
		"Cleaned JSON data has been saved to",
		"CSV data has been saved to",
		"Conceptual space data has been saved to",
	} {
		if !strings.Contains(status, msg) {
			t.Errorf("missing status line %q in:\n%s", msg, status)
		}
	}
}

func TestWriteResultCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	result := &types.ExtractionResult{}
	if err := output.WriteResult(dir, result, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, output.RecordsFile)); err != nil {
		t.Errorf("missing records file: %v", err)
	}
}

func TestWriteResultEmpty(t *testing.T) {
	result := &types.ExtractionResult{}

	dir, status := writeAndRead(t, result)

	if got := readFile(t, filepath.Join(dir, output.RecordsFile)); got != "[]" {
		t.Errorf("records file = %q, want empty array", got)
	}

	if _, err := os.Stat(filepath.Join(dir, output.TableFile)); !os.IsNotExist(err) {
		t.Error("table file should be omitted with no records")
	}
	if !strings.Contains(status, "No valid JSON objects found to save to CSV.") {
		t.Errorf("missing no-objects message in:\n%s", status)
	}

	concepts := readFile(t, filepath.Join(dir, output.ConceptSpaceFile))
	if !strings.Contains(concepts, `"all concepts": []`) {
		t.Errorf("concept space should hold an empty list:\n%s", concepts)
	}
}

func TestWriteTableColumns(t *testing.T) {
	text := `{"name": "alpha", "value": 3} and {"name": "beta", "weight": 1.5}`
	result := &types.ExtractionResult{Records: extract.ScanFragments(text)}

	dir, _ := writeAndRead(t, result)

	f, err := os.Open(filepath.Join(dir, output.TableFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '|'
	rows, err := cr.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	// Union of keys in first-appearance order: new keys append after the
	// first record's columns.
	wantHeader := []string{"name", "value", "chunk_id", "weight"}
	if len(rows[0]) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	// Absent keys render as empty cells; numbers as their JSON form.
	if rows[1][0] != "alpha" || rows[1][1] != "3" || rows[1][3] != "" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][0] != "beta" || rows[2][1] != "" || rows[2][3] != "1.5" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestWriteResultIdempotent(t *testing.T) {
	text := `{"id": "n1"} plus [a, b] and {"id": "n2", "extra": [1, 2]}`
	result := &types.ExtractionResult{
		Records:  extract.ScanFragments(text),
		Concepts: extract.ScanConcepts(text),
	}

	dirA, _ := writeAndRead(t, result)
	dirB, _ := writeAndRead(t, result)

	for _, name := range []string{output.RecordsFile, output.TableFile, output.ConceptSpaceFile} {
		a := readFile(t, filepath.Join(dirA, name))
		b := readFile(t, filepath.Join(dirB, name))
		if a != b {
			t.Errorf("%s differs between identical runs", name)
		}
	}
}
