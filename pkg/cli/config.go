package cli

import (
	"context"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/adapter"
	"github.com/abhijitramesh/echovault/pkg/interfaces"
	"github.com/abhijitramesh/echovault/pkg/policy"
	"github.com/abhijitramesh/echovault/pkg/repository"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	backend    string
	project    string
	database   string
	sqlitePath string

	// Adapters
	embeddingProvider   string
	generationProvider  string
	extractionProvider  string
	anthropicAPIKey     string
	openaiAPIKey        string
	geminiProject       string
	geminiLocation      string
	ollamaHost          string
	ollamaModel         string
	embeddingDimensions int64

	// Capture
	audioBucket string
	policyDir   string

	gemini *adapter.GeminiClient
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Aliases:     []string{"b"},
			Usage:       "Memory store backend (firestore, sqlite, memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("ECHOVAULT_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Path of the SQLite database file",
			Value:       "echovault.db",
			Sources:     cli.EnvVars("ECHOVAULT_SQLITE_PATH"),
			Destination: &cfg.sqlitePath,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-provider",
			Usage:       "Embedding provider (gemini, openai, ollama)",
			Value:       "gemini",
			Sources:     cli.EnvVars("ECHOVAULT_EMBEDDING_PROVIDER"),
			Destination: &cfg.embeddingProvider,
		},
		&cli.StringFlag{
			Name:        "generation-provider",
			Usage:       "Answer generation provider (claude, gemini)",
			Value:       "claude",
			Sources:     cli.EnvVars("ECHOVAULT_GENERATION_PROVIDER"),
			Destination: &cfg.generationProvider,
		},
		&cli.StringFlag{
			Name:        "extraction-provider",
			Usage:       "Entity extraction provider (gemini, claude)",
			Value:       "gemini",
			Sources:     cli.EnvVars("ECHOVAULT_EXTRACTION_PROVIDER"),
			Destination: &cfg.extractionProvider,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("OPENAI_API_KEY"),
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "ollama-host",
			Usage:       "Ollama server URL",
			Value:       adapter.DefaultOllamaHost,
			Sources:     cli.EnvVars("OLLAMA_HOST"),
			Destination: &cfg.ollamaHost,
		},
		&cli.StringFlag{
			Name:        "ollama-model",
			Usage:       "Ollama embedding model",
			Value:       adapter.DefaultOllamaModel,
			Sources:     cli.EnvVars("OLLAMA_EMBEDDING_MODEL"),
			Destination: &cfg.ollamaModel,
		},
		&cli.IntFlag{
			Name:        "embedding-dimensions",
			Usage:       "Dimensionality of embeddings (gemini, openai)",
			Value:       768,
			Sources:     cli.EnvVars("ECHOVAULT_EMBEDDING_DIMENSIONS"),
			Destination: &cfg.embeddingDimensions,
		},
	}
}

// captureFlags returns flags used when new memories are written
func captureFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "audio-bucket",
			Usage:       "Cloud Storage bucket to archive voice recordings",
			Sources:     cli.EnvVars("ECHOVAULT_AUDIO_BUCKET"),
			Destination: &cfg.audioBucket,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego files with the capture policy",
			Sources:     cli.EnvVars("ECHOVAULT_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
	}
}

// cleanSecret removes whitespace and surrounding quotes that are often left
// over when keys are pasted into environment files
func cleanSecret(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// newRepository creates a new repository instance. The returned function
// releases the backing connection.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, func(), error) {
	switch cfg.backend {
	case "firestore":
		if cfg.project == "" {
			return nil, nil, goerr.New("project is required for firestore backend")
		}
		if cfg.database == "" {
			return nil, nil, goerr.New("database is required for firestore backend")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create repository")
		}
		return repo, func() { _ = repo.Close() }, nil

	case "sqlite":
		if cfg.sqlitePath == "" {
			return nil, nil, goerr.New("sqlite-path is required for sqlite backend")
		}
		repo, err := repository.NewSQLite(ctx, cfg.sqlitePath)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create repository")
		}
		return repo, func() { _ = repo.Close() }, nil

	case "memory":
		return repository.NewMemory(), func() {}, nil

	default:
		return nil, nil, goerr.New("unsupported backend",
			goerr.V("backend", cfg.backend),
			goerr.V("supported", []string{"firestore", "sqlite", "memory"}))
	}
}

// newGemini creates the Gemini adapter once and shares it between roles
func (cfg *config) newGemini(ctx context.Context) (*adapter.GeminiClient, error) {
	if cfg.gemini != nil {
		return cfg.gemini, nil
	}

	project := cfg.geminiProject
	if project == "" {
		project = cfg.project
	}
	if project == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	gemini, err := adapter.NewGemini(ctx, project, cfg.geminiLocation,
		adapter.WithEmbeddingDimensions(int(cfg.embeddingDimensions)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	cfg.gemini = gemini
	return gemini, nil
}

// newClaude creates a new Claude adapter instance
func (cfg *config) newClaude() (adapter.Claude, error) {
	key := cleanSecret(cfg.anthropicAPIKey)
	if key == "" {
		return nil, goerr.New("anthropic-api-key is required")
	}
	return adapter.NewClaude(key), nil
}

// newOpenAI creates a new OpenAI adapter instance
func (cfg *config) newOpenAI() (adapter.OpenAI, error) {
	key := cleanSecret(cfg.openaiAPIKey)
	if key == "" {
		return nil, goerr.New("openai-api-key is required")
	}
	return adapter.NewOpenAI(key, adapter.WithOpenAIEmbeddingDimensions(int(cfg.embeddingDimensions))), nil
}

func (cfg *config) newEmbedder(ctx context.Context) (interfaces.Embedder, error) {
	switch cfg.embeddingProvider {
	case "gemini":
		return cfg.newGemini(ctx)
	case "openai":
		return cfg.newOpenAI()
	case "ollama":
		return adapter.NewOllama(cfg.ollamaHost, cfg.ollamaModel)
	default:
		return nil, goerr.New("unsupported embedding provider",
			goerr.V("provider", cfg.embeddingProvider),
			goerr.V("supported", []string{"gemini", "openai", "ollama"}))
	}
}

func (cfg *config) newGenerator(ctx context.Context) (interfaces.Generator, error) {
	switch cfg.generationProvider {
	case "claude":
		return cfg.newClaude()
	case "gemini":
		return cfg.newGemini(ctx)
	default:
		return nil, goerr.New("unsupported generation provider",
			goerr.V("provider", cfg.generationProvider),
			goerr.V("supported", []string{"claude", "gemini"}))
	}
}

func (cfg *config) newExtractor(ctx context.Context) (interfaces.Extractor, error) {
	switch cfg.extractionProvider {
	case "gemini":
		return cfg.newGemini(ctx)
	case "claude":
		return cfg.newClaude()
	default:
		return nil, goerr.New("unsupported extraction provider",
			goerr.V("provider", cfg.extractionProvider),
			goerr.V("supported", []string{"gemini", "claude"}))
	}
}

// newUseCase wires the repository and all providers into a memory UseCase
func (cfg *config) newUseCase(ctx context.Context) (*memory.UseCase, func(), error) {
	repo, closeRepo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	uc, err := cfg.buildUseCase(ctx, repo)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	return uc, closeRepo, nil
}

func (cfg *config) buildUseCase(ctx context.Context, repo repository.Repository) (*memory.UseCase, error) {
	embedder, err := cfg.newEmbedder(ctx)
	if err != nil {
		return nil, err
	}
	generator, err := cfg.newGenerator(ctx)
	if err != nil {
		return nil, err
	}
	extractor, err := cfg.newExtractor(ctx)
	if err != nil {
		return nil, err
	}

	var opts []memory.Option

	if cfg.openaiAPIKey != "" {
		openai, err := cfg.newOpenAI()
		if err != nil {
			return nil, err
		}
		opts = append(opts, memory.WithTranscriber(openai))
	}

	if cfg.audioBucket != "" {
		storage, err := adapter.NewStorage(ctx, cfg.audioBucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage")
		}
		opts = append(opts, memory.WithArchive(storage))
	}

	if cfg.policyDir != "" {
		capture, err := policy.NewCapture(ctx, cfg.policyDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load capture policy")
		}
		opts = append(opts, memory.WithCapturePolicy(capture))
	}

	return memory.New(repo, embedder, generator, extractor, opts...), nil
}

// newStoreUseCase creates a UseCase for commands that only read the store
// and never call a provider
func (cfg *config) newStoreUseCase(ctx context.Context) (*memory.UseCase, func(), error) {
	repo, closeRepo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	return memory.New(repo, nil, nil, nil), closeRepo, nil
}
