// Package config loads service configuration from .env files, environment
// variables, and flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LLM           LLMConfig
	Artifact      ArtifactConfig
	RunStoreDSN   string
	PlanCacheSize int
}

type LLMConfig struct {
	// Provider selects the backend: gemini, groq, ollama, or fake.
	Provider string
	Model    string
	APIKey   string
	// BaseURL is only used by the ollama provider.
	BaseURL string
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8082", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cacheSize := 128
	if raw := strings.TrimSpace(os.Getenv("PLAN_CACHE_SIZE")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cacheSize = n
		}
	}

	return &Config{
		Port:          *port,
		Env:           env,
		LLM:           LoadLLM(),
		Artifact:      loadArtifactConfig(env),
		RunStoreDSN:   strings.TrimSpace(os.Getenv("RUN_STORE_PG_DSN")),
		PlanCacheSize: cacheSize,
	}, nil
}

// LoadLLM reads only the model-client settings from the environment. The CLI
// uses it directly since it owns its own flags.
func LoadLLM() LLMConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		if os.Getenv("GEMINI_API_KEY") != "" {
			provider = "gemini"
		} else if os.Getenv("GROQ_API_KEY") != "" {
			provider = "groq"
		} else {
			provider = "fake"
		}
	}

	cfg := LLMConfig{
		Provider: provider,
		Model:    strings.TrimSpace(os.Getenv("LLM_MODEL")),
		BaseURL:  strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL")),
	}
	switch provider {
	case "gemini":
		cfg.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	case "groq":
		cfg.APIKey = strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	}
	return cfg
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env)
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "archplan-artifacts"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
