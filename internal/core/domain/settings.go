package domain

import "time"

// SchedulerSettings configures the extraction worker pool.
type SchedulerSettings struct {
	// Workers is the worker pool size. Extraction is I/O-bound, so the
	// default stays small to avoid oversubscribing the filesystem and
	// any external OCR or model calls.
	Workers int `toml:"workers"`

	// LockEnabled turns on the cross-process advisory file lock.
	// Without it only intra-process exclusion holds; deployments running
	// multiple processes against shared storage must enable it.
	LockEnabled bool `toml:"lock_enabled"`

	// LockTimeout bounds lock acquisition before ErrLockTimeout.
	LockTimeout time.Duration `toml:"lock_timeout"`
}

// SearchSettings configures hybrid scoring.
type SearchSettings struct {
	WeightLexical  float64 `toml:"weight_lexical"`
	WeightVector   float64 `toml:"weight_vector"`
	WeightPriority float64 `toml:"weight_priority"`
}

// LLMSettings configures the language model collaborator.
type LLMSettings struct {
	Provider string        `toml:"provider"`
	APIKey   string        `toml:"api_key"`
	BaseURL  string        `toml:"base_url"`
	Model    string        `toml:"model"`
	Timeout  time.Duration `toml:"timeout"`
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// Settings is the full configuration tree persisted as TOML.
type Settings struct {
	// StorageRoot is the content-addressed store root directory.
	StorageRoot string `toml:"storage_root"`

	// SegmentTargetTokens is the segmentation flush threshold.
	SegmentTargetTokens int `toml:"segment_target_tokens"`

	Scheduler SchedulerSettings `toml:"scheduler"`
	Search    SearchSettings    `toml:"search"`
	LLM       LLMSettings       `toml:"llm"`
	Embedding EmbeddingSettings `toml:"embedding"`
}

// DefaultSettings returns the shipped defaults.
func DefaultSettings() Settings {
	return Settings{
		SegmentTargetTokens: 1000,
		Scheduler: SchedulerSettings{
			Workers:     2,
			LockEnabled: false,
			LockTimeout: 10 * time.Second,
		},
		Search: SearchSettings{
			WeightLexical:  DefaultWeightLexical,
			WeightVector:   DefaultWeightVector,
			WeightPriority: DefaultWeightPriority,
		},
		LLM: LLMSettings{
			Provider: "anthropic",
			Timeout:  120 * time.Second,
		},
		Embedding: EmbeddingSettings{
			Provider: "static",
		},
	}
}
