package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Token Gate
	Token string

	// Google Cloud
	ProjectID       string
	CredentialsFile string

	// Completion model
	LLMProvider   string
	LLMModel      string
	LLMLocation   string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Analysis
	ProgressScale string
	PromptsFile   string

	// Requests per minute per client IP on /chat; 0 disables the limit.
	ChatRateLimit int

	// Voice relay
	VoiceRelayPort     string
	VoiceLanguage      string
	VoiceSampleRate    int
	VoiceDrainInterval time.Duration

	// Frontend
	FrontendURL string
}

// Load reads the process environment (and .env when present). A missing
// TOKEN panics so the process refuses to start.
func Load() *Config {
	cfg := LoadCommon()
	cfg.Token = mustGetEnv("TOKEN")
	return cfg
}

// LoadCommon reads every setting except the shared secret. The voice relay
// is unauthenticated and uses it directly.
func LoadCommon() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		ProjectID:          os.Getenv("PROJECT_ID"),
		CredentialsFile:    absPath(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		LLMProvider:        strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderVertex)),
		LLMModel:           os.Getenv("LLM_MODEL"),
		LLMLocation:        getEnvOrDefault("LLM_LOCATION", "us-central1"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		ProgressScale:      strings.ToLower(getEnvOrDefault("PROGRESS_SCALE", ScalePercent)),
		PromptsFile:        os.Getenv("PROMPTS_FILE"),
		ChatRateLimit:      getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 0),
		VoiceRelayPort:     getEnvOrDefault("VOICE_RELAY_PORT", "8000"),
		VoiceLanguage:      getEnvOrDefault("VOICE_LANGUAGE", "ja-JP"),
		VoiceSampleRate:    getEnvAsIntOrDefault("VOICE_SAMPLE_RATE", 16000),
		VoiceDrainInterval: getEnvAsDurationOrDefault("VOICE_DRAIN_INTERVAL", 100*time.Millisecond),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "*"),
	}

	if cfg.ProjectID == "" {
		log.Println("⚠ PROJECT_ID environment variable is not set")
	}
	if cfg.CredentialsFile != "" {
		// Cloud client libraries read the variable themselves.
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cfg.CredentialsFile)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModel(cfg.LLMProvider)
	}

	return cfg
}

const (
	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const (
	ScalePercent = "percent"
	ScaleFive    = "five"
)

func defaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-1.5-flash"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "gemini-1.5-flash-002"
	}
}

// absPath makes a relative credentials path absolute against the working
// directory, the way the cloud client libraries expect it.
func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
