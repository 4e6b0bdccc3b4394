// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Source filters by source ID (input file stem).
	Source string

	// Key filters to fragments that carry the given top-level field.
	Key string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Source == "" && q.Key == ""
}

// QueryResult is one indexed fragment with its provenance.
type QueryResult struct {
	ChunkID  string         `json:"chunk_id" yaml:"chunk_id"`
	Source   string         `json:"source" yaml:"source"`
	Position int            `json:"position" yaml:"position"`
	Fields   map[string]any `json:"fields" yaml:"fields"`
}

// Retrieve queries the index with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by source and position otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT f.chunk_id, f.source_id, f.position, f.fields, fragments_fts.rank
			FROM fragments_fts
			JOIN fragments f ON f.rowid = fragments_fts.rowid
			WHERE fragments_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT f.chunk_id, f.source_id, f.position, f.fields, 0 AS rank
			FROM fragments f
			WHERE 1=1`)
	}

	if opts.Source != "" {
		qb.WriteString(` AND f.source_id = ?`)
		args = append(args, opts.Source)
	}

	if opts.Key != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(f.fields) WHERE json_each.key = ?)`)
		args = append(args, opts.Key)
	}

	if useFTS {
		qb.WriteString(` ORDER BY fragments_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.source_id, f.position`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr         QueryResult
			fieldsJSON sql.NullString
			rank       float64
		)

		if err := rows.Scan(&qr.ChunkID, &qr.Source, &qr.Position, &fieldsJSON, &rank); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if fieldsJSON.Valid {
			json.Unmarshal([]byte(fieldsJSON.String), &qr.Fields)
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// Concepts returns the concept groups for a source, in extraction order.
// An empty source returns every group in the index.
func (s *Store) Concepts(ctx context.Context, source string) ([][]string, error) {
	query := `SELECT concepts FROM concept_groups`
	var args []any
	if source != "" {
		query += ` WHERE source_id = ?`
		args = append(args, source)
	}
	query += ` ORDER BY source_id, position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying concept groups: %w", err)
	}
	defer rows.Close()

	var groups [][]string
	for rows.Next() {
		var groupJSON string
		if err := rows.Scan(&groupJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var group []string
		if err := json.Unmarshal([]byte(groupJSON), &group); err != nil {
			return nil, fmt.Errorf("parsing concept group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}
