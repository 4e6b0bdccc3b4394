package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/fragment-engine/internal/output"
)

func TestExtractAll(t *testing.T) {
	inputDir := t.TempDir()
	outDir := t.TempDir()

	writeInput := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	writeInput("notes.txt", `{"topic": "graphs"} and [node, edge]`)
	writeInput("empty.txt", "no structure in this one")
	writeInput("ignored.md", `{"skipped": true}`)

	var buf bytes.Buffer
	summary, err := ExtractAll(inputDir, outDir, "*.txt", &buf)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Extracted != 1 {
		t.Errorf("Extracted = %d, want 1", summary.Extracted)
	}
	if summary.Empty != 1 {
		t.Errorf("Empty = %d, want 1", summary.Empty)
	}
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", summary.Failed)
	}
	if summary.Total() != 2 {
		t.Errorf("Total() = %d, want 2", summary.Total())
	}

	// Each processed input gets its own output subdirectory.
	for _, stem := range []string{"notes", "empty"} {
		path := filepath.Join(outDir, stem, output.RecordsFile)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "ignored")); !os.IsNotExist(err) {
		t.Error("non-matching file should not produce output")
	}

	// The empty input reports the no-objects message.
	if !strings.Contains(buf.String(), "No valid JSON objects found to save to CSV.") {
		t.Errorf("missing no-objects message in output:\n%s", buf.String())
	}
}

func TestExtractAllMissingDir(t *testing.T) {
	_, err := ExtractAll(filepath.Join(t.TempDir(), "absent"), t.TempDir(), "*.txt", &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestExtractAllBadPattern(t *testing.T) {
	inputDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inputDir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractAll(inputDir, t.TempDir(), "[", &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestBatchSummaryHasFailures(t *testing.T) {
	if (BatchSummary{}).HasFailures() {
		t.Error("empty summary should have no failures")
	}
	if !(BatchSummary{Failed: 1}).HasFailures() {
		t.Error("summary with a failure should report it")
	}
}
