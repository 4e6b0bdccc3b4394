// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists extracted fragments and builds a retrieval
// index over them.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/fragment-engine/internal/output"
	"github.com/pdiddy/fragment-engine/pkg/types"
)

const dbFile = "fragments.db"

// Store manages the fragment index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the index database at indexDir/fragments.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			results_path TEXT,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL,
			source_id TEXT NOT NULL REFERENCES sources(id),
			position INTEGER,
			fields TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_source ON fragments(source_id)`,
		`CREATE TABLE IF NOT EXISTS concept_groups (
			source_id TEXT NOT NULL REFERENCES sources(id),
			position INTEGER,
			concepts TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over the fragment field text, with triggers
	// keeping it in sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='fragments_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE fragments_fts USING fts5(fields, content=fragments, content_rowid=rowid)`,
			`CREATE TRIGGER fragments_ai AFTER INSERT ON fragments BEGIN
				INSERT INTO fragments_fts(rowid, fields) VALUES (new.rowid, new.fields);
			END`,
			`CREATE TRIGGER fragments_ad AFTER DELETE ON fragments BEGIN
				INSERT INTO fragments_fts(fragments_fts, rowid, fields) VALUES('delete', old.rowid, old.fields);
			END`,
			`CREATE TRIGGER fragments_au AFTER UPDATE ON fragments BEGIN
				INSERT INTO fragments_fts(fragments_fts, rowid, fields) VALUES('delete', old.rowid, old.fields);
				INSERT INTO fragments_fts(rowid, fields) VALUES (new.rowid, new.fields);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index ingestion run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of sources processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction outputs from resultsDir and populates the
// database. A source is resultsDir itself or any immediate subdirectory
// containing cleaned_data.json (batch extraction writes one subdirectory
// per input file). Unchanged sources are skipped by file mod time;
// changed sources replace their previous rows. On success it writes
// export.yaml.
func (s *Store) Ingest(ctx context.Context, resultsDir string, w io.Writer) (IngestSummary, error) {
	dirs, err := sourceDirs(resultsDir)
	if err != nil {
		return IngestSummary{}, err
	}
	if len(dirs) == 0 {
		return IngestSummary{}, fmt.Errorf("no %s found under %s", output.RecordsFile, resultsDir)
	}

	var summary IngestSummary

	for _, dir := range dirs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		sourceID := filepath.Base(dir)
		recordsPath := filepath.Join(dir, output.RecordsFile)

		info, err := os.Stat(recordsPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM sources WHERE id = ?`, sourceID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", sourceID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		records, err := readRecords(recordsPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		groups := readConceptGroups(filepath.Join(dir, output.ConceptSpaceFile))

		if err := s.ingestSource(ctx, sourceID, dir, records, groups, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d fragments)\n", sourceID, len(records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d fragments)\n", sourceID, len(records))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

// sourceDirs lists directories under resultsDir that hold extraction
// outputs: the directory itself and its immediate subdirectories.
func sourceDirs(resultsDir string) ([]string, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("reading results directory %s: %w", resultsDir, err)
	}

	var dirs []string
	if _, err := os.Stat(filepath.Join(resultsDir, output.RecordsFile)); err == nil {
		dirs = append(dirs, resultsDir)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(resultsDir, entry.Name())
		if _, err := os.Stat(filepath.Join(sub, output.RecordsFile)); err == nil {
			dirs = append(dirs, sub)
		}
	}

	return dirs, nil
}

// readRecords parses a cleaned_data.json array into field maps.
func readRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	return records, nil
}

// readConceptGroups parses a conceptual_space.json document. A missing or
// malformed file yields no groups; the concept space is auxiliary.
func readConceptGroups(path string) [][]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var space types.ConceptSpace
	if err := json.Unmarshal(data, &space); err != nil {
		return nil
	}

	return space.AllConcepts
}

func (s *Store) ingestSource(ctx context.Context, sourceID, dir string, records []map[string]any, groups [][]string, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM fragments WHERE source_id = ?`, sourceID); err != nil {
			return fmt.Errorf("deleting old fragments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM concept_groups WHERE source_id = ?`, sourceID); err != nil {
			return fmt.Errorf("deleting old concept groups: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sources (id, results_path, file_mod_time) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			results_path=excluded.results_path, file_mod_time=excluded.file_mod_time`,
		sourceID, dir, modTime,
	); err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fragments (chunk_id, source_id, position, fields) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		chunkID, _ := rec[types.ChunkIDKey].(string)
		fieldsJSON, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling fragment %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, chunkID, sourceID, i, string(fieldsJSON)); err != nil {
			return fmt.Errorf("inserting fragment %d: %w", i, err)
		}
	}

	for i, group := range groups {
		groupJSON, err := json.Marshal(group)
		if err != nil {
			return fmt.Errorf("marshaling concept group %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO concept_groups (source_id, position, concepts) VALUES (?, ?, ?)`,
			sourceID, i, string(groupJSON),
		); err != nil {
			return fmt.Errorf("inserting concept group %d: %w", i, err)
		}
	}

	return tx.Commit()
}
