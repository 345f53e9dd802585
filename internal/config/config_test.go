package config

import (
	"errors"
	"strings"
	"testing"
)

// validConfig returns a configuration that passes Validate with the ollama
// provider (no API key requirement, keeps tests hermetic).
func validConfig() *Config {
	return &Config{
		Provider:       ProviderOllama,
		ModelName:      "llama3.2",
		Temperature:    0.7,
		MaxTokens:      1000,
		EmbedderModel:  "nomic-embed-text",
		EmbedderDims:   768,
		BatchSize:      100,
		OllamaHost:     "http://localhost:11434",
		TopK:           5,
		MinSimilarity:  0.3,
		RerankInitialK: 20,
		RerankWeights: map[string]float64{
			"airport_info":      1.1,
			"route_info":        1.05,
			"airline_info":      1.0,
			"general_knowledge": 0.95,
		},
		AirportLimit:       500,
		AirlineLimit:       300,
		RouteLimit:         1000,
		RouteMinAirlines:   2,
		HubMinDestinations: 50,
		PostgresHost:       "localhost",
		PostgresPort:       5432,
		PostgresUser:       "skychat",
		PostgresPassword:   "test_password_123",
		PostgresDBName:     "skychat",
		PostgresSSLMode:    "disable",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "bedrock" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidEmbedderModel,
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.Temperature = 2.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "negative temperature",
			mutate:  func(c *Config) { c.Temperature = -0.1 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.MaxTokens = 0 },
			wantErr: ErrInvalidMaxTokens,
		},
		{
			name:    "zero top k",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "min similarity out of range",
			mutate:  func(c *Config) { c.MinSimilarity = 1.5 },
			wantErr: ErrInvalidMinSimilarity,
		},
		{
			name:    "initial k below top k",
			mutate:  func(c *Config) { c.RerankInitialK = 3 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "non-positive rerank weight",
			mutate:  func(c *Config) { c.RerankWeights["route_info"] = 0 },
			wantErr: ErrInvalidRerankWeight,
		},
		{
			name:    "batch size out of range",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "empty postgres host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "postgres port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "empty database name",
			mutate:  func(c *Config) { c.PostgresDBName = "" },
			wantErr: ErrInvalidPostgresDBName,
		},
		{
			name:    "deprecated ssl mode",
			mutate:  func(c *Config) { c.PostgresSSLMode = "prefer" },
			wantErr: ErrInvalidPostgresSSLMode,
		},
		{
			name:    "ollama without host",
			mutate:  func(c *Config) { c.OllamaHost = "" },
			wantErr: ErrInvalidOllamaHost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Fatalf("Validate() on nil config = %v, want ErrConfigNil", err)
	}
}

func TestMarshalJSONMasksPassword(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "super_secret_password"

	data, err := cfg.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}

	if strings.Contains(string(data), "super_secret_password") {
		t.Errorf("MarshalJSON() leaked password: %s", data)
	}
	if !strings.Contains(string(data), maskedValue) {
		t.Errorf("MarshalJSON() did not mask password: %s", data)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"empty", "", ""},
		{"short fully masked", "short", maskedValue},
		{"exactly eight", "12345678", maskedValue},
		{"long shows edges", "my_long_secret_key_123", "my<" + maskedValue + ">23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskSecret(tt.secret); got != tt.want {
				t.Errorf("maskSecret(%q) = %q, want %q", tt.secret, got, tt.want)
			}
		})
	}
}

func TestFullModelName(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{ProviderGemini, "gemini-2.5-flash", "googleai/gemini-2.5-flash"},
		{ProviderOllama, "llama3.2", "ollama/llama3.2"},
		{ProviderOpenAI, "gpt-4o-mini", "openai/gpt-4o-mini"},
		{ProviderGemini, "googleai/gemini-2.5-pro", "googleai/gemini-2.5-pro"},
	}

	for _, tt := range tests {
		cfg := &Config{Provider: tt.provider, ModelName: tt.model}
		if got := cfg.FullModelName(); got != tt.want {
			t.Errorf("FullModelName(%s, %s) = %q, want %q", tt.provider, tt.model, got, tt.want)
		}
	}
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "pass with spaces"

	dsn := cfg.PostgresConnectionString()
	if !strings.Contains(dsn, "password='pass with spaces'") {
		t.Errorf("PostgresConnectionString() = %q, password not quoted", dsn)
	}
	if !strings.Contains(dsn, "host=localhost") || !strings.Contains(dsn, "dbname=skychat") {
		t.Errorf("PostgresConnectionString() = %q, missing expected fields", dsn)
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "p@ss/word"

	u := cfg.PostgresURL()
	if !strings.HasPrefix(u, "postgres://") {
		t.Errorf("PostgresURL() = %q, want postgres:// scheme", u)
	}
	if strings.Contains(u, "p@ss/word") {
		t.Errorf("PostgresURL() = %q, special characters not encoded", u)
	}
}
