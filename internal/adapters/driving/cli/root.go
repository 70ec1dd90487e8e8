// Package cli implements the evidentia command-line interface. It is a
// driving adapter: commands talk to the core exclusively through the
// driving ports, with all wiring done here.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evidentia-labs/evidentia/internal/adapters/driven/config/file"
	"github.com/evidentia-labs/evidentia/internal/adapters/driven/embedding/ollama"
	"github.com/evidentia-labs/evidentia/internal/adapters/driven/embedding/static"
	"github.com/evidentia-labs/evidentia/internal/adapters/driven/llm/anthropic"
	"github.com/evidentia-labs/evidentia/internal/adapters/driven/lock/flock"
	"github.com/evidentia-labs/evidentia/internal/adapters/driven/storage/fsstore"
	"github.com/evidentia-labs/evidentia/internal/adapters/driven/storage/sqlite"
	"github.com/evidentia-labs/evidentia/internal/adapters/driven/vector/flat"
	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driving"
	"github.com/evidentia-labs/evidentia/internal/core/services"
	"github.com/evidentia-labs/evidentia/internal/extractors"
	"github.com/evidentia-labs/evidentia/internal/extractors/pdf"
	"github.com/evidentia-labs/evidentia/internal/extractors/plaintext"
	"github.com/evidentia-labs/evidentia/internal/logger"
	"github.com/evidentia-labs/evidentia/internal/postprocessors/segmenter"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services the commands talk to. Populated by initServices; tests
// substitute stubs directly.
var (
	ingestService driving.IngestService
	searchService driving.SearchService
	planService   driving.PlanService
	reviewService driving.ReviewService

	configStore *file.ConfigStore
	scheduler   *services.Scheduler
	closers     []func() error
)

var rootCmd = &cobra.Command{
	Use:   "evidentia",
	Short: "Document ingestion, extraction and hybrid retrieval",
	Long: `Evidentia ingests documents into a content-addressed store, extracts
and segments their text, and serves hybrid keyword plus semantic search
over the resulting segments and committed notions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.evidentia)")
}

// Execute runs the CLI.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

// initServices builds the full adapter and service graph from the
// persisted settings. It is a no-op when services are already wired,
// which is how tests substitute stubs.
func initServices() error {
	if ingestService != nil {
		return nil
	}

	var err error
	configStore, err = file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	settings, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	baseDir := filepath.Dir(configStore.Path())
	storageRoot := settings.StorageRoot
	if storageRoot == "" {
		storageRoot = filepath.Join(baseDir, "store")
	}

	store, err := fsstore.New(storageRoot)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}

	lexical, err := sqlite.NewStore(filepath.Join(baseDir, "index"))
	if err != nil {
		return fmt.Errorf("opening lexical index: %w", err)
	}
	closers = append(closers, lexical.Close)

	embedder := newEmbedder(settings.Embedding)
	closers = append(closers, embedder.Close)

	vecSegments, err := flat.New(filepath.Join(baseDir, "index", "segments.vec"), embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening segment vectors: %w", err)
	}
	closers = append(closers, vecSegments.Close)

	vecNotions, err := flat.New(filepath.Join(baseDir, "index", "notions.vec"), embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening notion vectors: %w", err)
	}
	closers = append(closers, vecNotions.Close)

	var locker driven.DocLocker = flock.NopLocker{}
	if settings.Scheduler.LockEnabled {
		locker = flock.New(store, settings.Scheduler.LockTimeout)
	}

	manifests := store.ManifestStore()
	extraction := store.ExtractionStore()
	registry := extractors.NewRegistry(pdf.New(), plaintext.New())
	seg := segmenter.New(segmenter.WithTargetTokens(settings.SegmentTargetTokens))

	pipeline := services.NewExtractionPipeline(
		extraction,
		registry,
		nil, // no OCR collaborator configured; empty pages stay empty
		seg,
		lexical.LexicalIndex(domain.CollectionSegments),
		vecSegments,
		embedder,
	)

	scheduler = services.NewScheduler(
		services.NewTaskRegistry(),
		manifests,
		locker,
		pipeline,
		settings.Scheduler.Workers,
	)

	ingestService = services.NewIngestService(manifests, extraction, scheduler)
	searchService = services.NewSearchService(
		lexical.LexicalIndex(domain.CollectionSegments),
		vecSegments,
		lexical.LexicalIndex(domain.CollectionNotions),
		vecNotions,
		embedder,
		settings.Search,
	)
	reviewService = services.NewReviewService(
		manifests,
		store.NotionStore(),
		lexical.LexicalIndex(domain.CollectionNotions),
		vecNotions,
		embedder,
	)

	if settings.LLM.APIKey != "" {
		llm, err := anthropic.NewLLMService(anthropic.Config{
			APIKey:  settings.LLM.APIKey,
			BaseURL: settings.LLM.BaseURL,
			Model:   settings.LLM.Model,
			Timeout: settings.LLM.Timeout,
		})
		if err != nil {
			return fmt.Errorf("configuring language model: %w", err)
		}
		closers = append(closers, llm.Close)
		planService = services.NewPlanService(manifests, extraction, store.ArtifactStore(), llm, settings.LLM.Timeout)
	}

	return nil
}

// newEmbedder picks the embedding provider. The static hash embedder is
// the offline default; it needs no external service.
func newEmbedder(cfg domain.EmbeddingSettings) driven.EmbeddingService {
	if cfg.Provider == "ollama" {
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	}
	return static.NewEmbeddingService(cfg.Dimensions)
}

// shutdown waits for in-flight extraction jobs, then closes the
// adapters in reverse wiring order.
func shutdown() {
	if scheduler != nil {
		scheduler.Wait()
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}
	closers = nil
}
