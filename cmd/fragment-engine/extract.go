package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/fragment-engine/internal/extract"
	"github.com/pdiddy/fragment-engine/internal/output"
	"github.com/pdiddy/fragment-engine/internal/prompt"
	"github.com/pdiddy/fragment-engine/pkg/types"
)

const (
	defaultPromptTimeout = 10 * time.Second
	defaultOutputName    = "clean_json"
	defaultBatchPattern  = "*.txt"
)

var extractCmd = &cobra.Command{
	Use:   "extract <input> <output-dir>",
	Short: "Extract JSON fragments and concept lists from a text file",
	Long: `Extract scans unstructured text for brace-delimited JSON fragments and
bracketed concept lists. Fragments that parse as JSON are tagged with a
content hash and written to cleaned_data.json and a pipe-delimited
graph.csv; concept lists are collected into conceptual_space.json. The
output directory is created if absent.

With --batch the input is a directory: every file matching --pattern is
processed into its own subdirectory of the output directory.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Bool("batch", false, "treat input as a directory and process all matching files")
	extractCmd.Flags().String("pattern", "", "filename glob for batch mode (default *.txt)")
	extractCmd.Flags().Duration("prompt-timeout", 0, "how long to wait at the output-name prompt (default 10s)")
	extractCmd.Flags().Bool("no-prompt", false, "skip the interactive output-name prompt")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath, outDir := args[0], args[1]
	batch, _ := cmd.Flags().GetBool("batch")
	cfg := extractionConfig(cmd)

	if batch {
		summary, err := extract.ExtractAll(inputPath, outDir, cfg.BatchPattern, os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d input file(s) failed extraction", summary.Failed)
		}
		return nil
	}

	if !cfg.NoPrompt {
		fmt.Printf("Please enter the output filename (default is %q):\n", cfg.DefaultOutputName)
		name, ok := prompt.ReadLine(os.Stdin, cfg.PromptTimeout, cfg.DefaultOutputName)
		if !ok {
			fmt.Printf("\nTimeout reached, using default output filename %q.\n", cfg.DefaultOutputName)
		}
		// Output file names are fixed by the interface contract; the
		// chosen name is echoed only.
		fmt.Printf("Output name: %s\n", name)
	}

	result, err := extract.ExtractFile(inputPath)
	if err != nil {
		return err
	}

	return output.WriteResult(outDir, result, os.Stdout)
}

// extractionConfig resolves extraction settings from defaults, the viper
// config, and command flags, in increasing precedence.
func extractionConfig(cmd *cobra.Command) types.ExtractionConfig {
	cfg := types.ExtractionConfig{
		PromptTimeout:     defaultPromptTimeout,
		DefaultOutputName: defaultOutputName,
		BatchPattern:      defaultBatchPattern,
	}

	if v := viper.GetDuration("extraction.prompt_timeout"); v > 0 {
		cfg.PromptTimeout = v
	}
	if v := viper.GetString("extraction.default_output_name"); v != "" {
		cfg.DefaultOutputName = v
	}
	if v := viper.GetString("extraction.batch_pattern"); v != "" {
		cfg.BatchPattern = v
	}
	cfg.NoPrompt = viper.GetBool("extraction.no_prompt")

	if cmd.Flags().Changed("prompt-timeout") {
		cfg.PromptTimeout, _ = cmd.Flags().GetDuration("prompt-timeout")
	}
	if cmd.Flags().Changed("pattern") {
		cfg.BatchPattern, _ = cmd.Flags().GetString("pattern")
	}
	if cmd.Flags().Changed("no-prompt") {
		cfg.NoPrompt, _ = cmd.Flags().GetBool("no-prompt")
	}

	return cfg
}
