package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	GoogleApiKey   string
	DatabaseURL    string
	ReasoningModel string
	FastModel      string
	EmbeddingModel string
	CollectionName string
	Port           string

	// OutputDir is where reports, screenshots and downloads are written.
	// It is threaded through constructors explicitly; nothing reads it from
	// a global.
	OutputDir string
	MaxPages  int

	// Command used to start the browser tool server (Playwright MCP).
	BrowserCommand string
	BrowserArgs    []string
}

func Load() *Config {
	return &Config{
		GoogleApiKey:   getEnv("GOOGLE_API_KEY", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ReasoningModel: getEnv("REASONING_MODEL", "gemini-3-pro-preview"),
		FastModel:      getEnv("FAST_MODEL", "gemini-3-flash-preview"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		CollectionName: getEnv("COLLECTION_NAME", "research_pages"),
		Port:           getEnv("PORT", "8081"),
		OutputDir:      getEnv("OUTPUT_DIR", "research_outputs"),
		MaxPages:       getEnvAsInt("MAX_PAGES", 10),
		BrowserCommand: getEnv("BROWSER_MCP_COMMAND", "npx"),
		BrowserArgs:    getEnvAsSlice("BROWSER_MCP_ARGS", []string{"-y", "@playwright/mcp@latest"}),
	}
}

// EnsureOutputDir creates the output directory. Called once at startup so
// directory creation is a scoped side effect rather than ambient state.
func (c *Config) EnsureOutputDir() error {
	return os.MkdirAll(c.OutputDir, 0o755)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Fields(valueStr)
}
