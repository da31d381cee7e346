package model

import "time"

// Config holds all runtime configuration for the verification engine.
// Values merge in the usual order: flags > environment > config file >
// DefaultConfig.
type Config struct {
	Reference   ReferenceConfig   `yaml:"reference" json:"reference" mapstructure:"reference"`
	Thresholds  ThresholdConfig   `yaml:"thresholds" json:"thresholds" mapstructure:"thresholds"`
	Cache       CacheConfig       `yaml:"cache" json:"cache" mapstructure:"cache"`
	Whisper     WhisperConfig     `yaml:"whisper" json:"whisper" mapstructure:"whisper"`
	Embedding   EmbeddingConfig   `yaml:"embedding" json:"embedding" mapstructure:"embedding"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" json:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" json:"log" mapstructure:"log"`
}

// ReferenceConfig locates the trusted reference recordings.
type ReferenceConfig struct {
	Dir        string   `yaml:"dir" json:"dir" mapstructure:"dir"`
	Extensions []string `yaml:"extensions" json:"extensions" mapstructure:"extensions"`
}

// ThresholdConfig holds the decision thresholds. All three are
// runtime-adjustable via flags, env, or config file.
type ThresholdConfig struct {
	Content          float64       `yaml:"content" json:"content" mapstructure:"content"`
	Speaker          float64       `yaml:"speaker" json:"speaker" mapstructure:"speaker"`
	SpeakerWindowCap time.Duration `yaml:"speaker_window_cap" json:"speaker_window_cap" mapstructure:"speaker_window_cap"`
}

// CacheConfig controls the transcript disk cache and the in-memory
// verification-result cache.
type CacheConfig struct {
	Dir       string        `yaml:"dir" json:"dir" mapstructure:"dir"`
	ResultTTL time.Duration `yaml:"result_ttl" json:"result_ttl" mapstructure:"result_ttl"`
}

// WhisperConfig configures the transcription collaborator.
type WhisperConfig struct {
	APIKey            string        `yaml:"api_key" json:"-" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url" json:"base_url" mapstructure:"base_url"`
	Model             string        `yaml:"model" json:"model" mapstructure:"model"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// EmbeddingConfig configures the speaker-embedding collaborator.
type EmbeddingConfig struct {
	BaseURL           string        `yaml:"base_url" json:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// ConcurrencyConfig sizes the worker pools.
type ConcurrencyConfig struct {
	SearchWorkers     int `yaml:"search_workers" json:"search_workers" mapstructure:"search_workers"`
	PreprocessWorkers int `yaml:"preprocess_workers" json:"preprocess_workers" mapstructure:"preprocess_workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string `yaml:"addr" json:"addr" mapstructure:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" json:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	UploadDir      string `yaml:"upload_dir" json:"upload_dir" mapstructure:"upload_dir"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"` // json or console
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Reference: ReferenceConfig{
			Dir:        "references",
			Extensions: []string{".mp4", ".avi", ".mov", ".mkv", ".webm", ".mp3", ".wav"},
		},
		Thresholds: ThresholdConfig{
			Content:          0.80,
			Speaker:          0.85,
			SpeakerWindowCap: 10 * time.Second,
		},
		Cache: CacheConfig{
			Dir:       "transcript_cache",
			ResultTTL: 24 * time.Hour,
		},
		Whisper: WhisperConfig{
			Model:             "whisper-1",
			Timeout:           2 * time.Minute,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Embedding: EmbeddingConfig{
			BaseURL:           "http://localhost:8500",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Concurrency: ConcurrencyConfig{
			SearchWorkers:     4,
			PreprocessWorkers: 2,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 200 << 20,
			UploadDir:      "uploads",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
