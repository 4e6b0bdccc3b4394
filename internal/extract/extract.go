// Package extract recovers structured fragments from unstructured text:
// brace-delimited JSON objects and bracketed concept lists.
package extract

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/fragment-engine/pkg/types"
)

// fragmentPattern matches brace-delimited candidate spans. Non-greedy and
// not brace-depth aware: an object containing a nested object truncates
// at the first closing brace, so the candidate fails to parse and is
// skipped. Flat objects are the contract.
var fragmentPattern = regexp.MustCompile(`(?s)\{.*?\}`)

// ScanFragments extracts every parseable JSON object embedded in text,
// in match order. Candidates that fail to parse are skipped silently.
// Each record is tagged with a chunk_id field holding the MD5 hex digest
// of the raw matched text, so identical fragments produce identical
// identifiers across runs.
func ScanFragments(text string) []types.Record {
	matches := fragmentPattern.FindAllString(text, -1)
	records := make([]types.Record, 0, len(matches))

	for _, raw := range matches {
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			continue
		}

		keys, err := topLevelKeys(raw)
		if err != nil {
			continue
		}

		id := chunkID(raw)
		fields[types.ChunkIDKey] = id

		records = append(records, types.Record{
			Fields:  fields,
			Keys:    append(keys, types.ChunkIDKey),
			ChunkID: id,
			Raw:     raw,
		})
	}

	return records
}

// chunkID derives the content-hash identifier for a raw matched span.
func chunkID(raw string) string {
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// topLevelKeys walks a raw object and returns its field names in text
// order. Duplicate keys are reported once, at first appearance.
func topLevelKeys(raw string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("candidate is not an object")
	}

	var keys []string
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in key position", tok)
		}

		// Consume the value; Unmarshal already kept it.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}

		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// ExtractFile reads an input text file and extracts its fragments and
// conceptual space. The result's Source is the file name without
// extension.
func ExtractFile(inputPath string) (*types.ExtractionResult, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", inputPath, err)
	}

	text := string(data)
	base := filepath.Base(inputPath)

	return &types.ExtractionResult{
		Source:   strings.TrimSuffix(base, filepath.Ext(base)),
		Records:  ScanFragments(text),
		Concepts: ScanConcepts(text),
	}, nil
}
