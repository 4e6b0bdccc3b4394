package types

import "time"

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// PromptTimeout bounds the interactive output-name prompt (default 10s).
	PromptTimeout time.Duration `json:"prompt_timeout" yaml:"prompt_timeout"`

	// DefaultOutputName is substituted when the prompt times out or is
	// answered with an empty line (default "clean_json").
	DefaultOutputName string `json:"default_output_name" yaml:"default_output_name"`

	// NoPrompt disables the interactive prompt entirely.
	NoPrompt bool `json:"no_prompt" yaml:"no_prompt"`

	// BatchPattern is the filename glob used in batch mode (default "*.txt").
	BatchPattern string `json:"batch_pattern" yaml:"batch_pattern"`
}

// IndexConfig holds settings for the fragment index.
type IndexConfig struct {
	// IndexDir is the directory holding fragments.db and export files.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Index      IndexConfig      `json:"index" yaml:"index"`
}
