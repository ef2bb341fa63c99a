package config

// DefaultTemperature is the sampling temperature used when synthesis.temperature is unset.
const DefaultTemperature = 0.7

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.TimeoutSeconds == 0 {
		cfg.Server.TimeoutSeconds = 120
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kiku/data/db/kiku.db"
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderONNX
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kiku/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.TokenizerPath == "" {
		cfg.Embedding.TokenizerPath = "/usr/local/var/kiku/data/models/tokenizer.json"
	}
	if cfg.Embedding.Provider == ProviderOpenAI {
		if cfg.Embedding.Model == "" {
			cfg.Embedding.Model = "text-embedding-3-small"
		}
		if cfg.Embedding.Dimensions == 0 {
			cfg.Embedding.Dimensions = 1536
		}
		if cfg.Embedding.APIKeyEnv == "" {
			cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}

	if cfg.Synthesis.Provider == "" {
		cfg.Synthesis.Provider = ProviderOpenAI
	}
	if cfg.Synthesis.BaseURL == "" {
		cfg.Synthesis.BaseURL = "https://api.anthropic.com/v1/"
	}
	if cfg.Synthesis.Model == "" {
		cfg.Synthesis.Model = "claude-3-haiku-20240307"
	}
	if cfg.Synthesis.MaxTokens == 0 {
		cfg.Synthesis.MaxTokens = 1000
	}
	if cfg.Synthesis.APIKeyEnv == "" {
		cfg.Synthesis.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if cfg.Synthesis.TimeoutSeconds == 0 {
		cfg.Synthesis.TimeoutSeconds = 60
	}

	if cfg.Retrieval.Strategy == "" {
		cfg.Retrieval.Strategy = StrategyRetrieval
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 1000
	}
	// Overlap defaults to a tenth of the chunk size (100 for the default size).
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize / 10
	}
	if cfg.Retrieval.ChunkUnit == "" {
		cfg.Retrieval.ChunkUnit = UnitChars
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}

	if cfg.Window.MaxChars == 0 {
		cfg.Window.MaxChars = 4000
	}
	if cfg.Window.MaxTurns == 0 {
		cfg.Window.MaxTurns = 4
	}

	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".srt", ".vtt", ".pdf", ".docx", ".rtf", ".odt"}
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
}
