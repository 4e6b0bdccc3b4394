// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/fragment-engine/internal/output"
)

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Empty     int
	Failed    int
}

// Total returns the number of input files processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Empty + s.Failed
}

// HasFailures reports whether any input files failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll processes every file in inputDir matching pattern and writes
// each file's outputs to outDir/[stem]/. Per-file failures are reported
// on w and counted, not fatal. Files with no extractable fragments count
// as empty, not failed.
func ExtractAll(inputDir, outDir, pattern string, w io.Writer) (BatchSummary, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading input directory %s: %w", inputDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return BatchSummary{}, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			names = append(names, entry.Name())
		}
	}

	bar := progressbar.Default(int64(len(names)), "Extracting")

	var summary BatchSummary
	for _, name := range names {
		result, err := ExtractFile(filepath.Join(inputDir, name))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			bar.Add(1)
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if err := output.WriteResult(filepath.Join(outDir, stem), result, w); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			bar.Add(1)
			continue
		}

		if len(result.Records) == 0 {
			summary.Empty++
		} else {
			summary.Extracted++
		}
		bar.Add(1)
	}

	fmt.Fprintf(w, "\nextracted: %d, empty: %d, failed: %d\n",
		summary.Extracted, summary.Empty, summary.Failed)

	return summary, nil
}
