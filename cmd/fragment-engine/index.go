// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/fragment-engine/internal/index"
	"github.com/pdiddy/fragment-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the fragment index (store, retrieve, export)",
	Long: `Index manages a local SQLite index built from extraction outputs. Use
subcommands to ingest results, query fragments, or export the index.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store <results-dir>",
	Short: "Ingest extraction outputs into the fragment index",
	Long: `Store reads cleaned_data.json and conceptual_space.json from a results
directory (or its per-file subdirectories, for batch output), ingests
them into a SQLite database with FTS5 indexing, and writes an export
file. Unchanged sources are skipped on subsequent runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d source(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the fragment index with full-text search and filters",
	Long: `Retrieve searches the fragment index using FTS5 full-text search,
structured filters (source, field key), or a combination of both.
Results include the source and match position of each fragment.

Use --concepts to list concept groups instead of fragments.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Concepts mode: list concept groups for a source (or all).
	if concepts, _ := cmd.Flags().GetBool("concepts"); concepts {
		source, _ := cmd.Flags().GetString("source")
		groups, err := store.Concepts(context.Background(), source)
		if err != nil {
			return err
		}
		return formatConceptOutput(groups, jsonOutput)
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --source, or --key")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-20s  %-8s  %s\n",
		"Rank", "Chunk", "Source", "Position", "Fields")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		chunk := r.ChunkID
		if len(chunk) > 12 {
			chunk = chunk[:12]
		}
		source := r.Source
		if len(source) > 20 {
			source = source[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-20s  %-8d  %s\n",
			i+1, chunk, source, r.Position, fieldsPreview(r.Fields))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// fieldsPreview renders a fragment's fields as a short key=value line,
// keys sorted, chunk_id omitted.
func fieldsPreview(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == types.ChunkIDKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	preview := strings.Join(parts, " ")
	if len(preview) > 50 {
		preview = preview[:47] + "..."
	}
	return preview
}

func formatConceptOutput(groups [][]string, jsonOutput bool) error {
	if jsonOutput {
		if groups == nil {
			groups = [][]string{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}

	if len(groups) == 0 {
		fmt.Println("No concept groups found.")
		return nil
	}
	for i, group := range groups {
		fmt.Fprintf(os.Stdout, "%-4d  %s\n", i+1, strings.Join(group, ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%d concept groups\n", len(groups))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the fragment index to YAML or JSON",
	Long: `Export writes the full fragment index (or a filtered subset) to
export.yaml or export.json in the index directory. Supports the same
filter flags as retrieve for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := indexConfig(cmd)
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.IndexDir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.IndexDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = viper.GetString("index.index_dir")
	}
	if indexDir == "" {
		indexDir = "index"
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults <= 0 {
		maxResults = viper.GetInt("index.max_results")
	}

	return types.IndexConfig{
		IndexDir:   indexDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	source, _ := cmd.Flags().GetString("source")
	key, _ := cmd.Flags().GetString("key")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Source:     source,
		Key:        key,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "", "directory for the index database and exports (default index)")
	indexCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (default 20)")

	// Retrieve flags.
	indexRetrieveCmd.Flags().String("query", "", "full-text search query")
	indexRetrieveCmd.Flags().String("source", "", "filter by source (input file stem)")
	indexRetrieveCmd.Flags().String("key", "", "filter to fragments carrying a top-level field")
	indexRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexRetrieveCmd.Flags().Bool("concepts", false, "list concept groups instead of fragments")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	indexExportCmd.Flags().String("source", "", "filter by source for partial export")
	indexExportCmd.Flags().String("key", "", "filter by field key for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum fragments to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
