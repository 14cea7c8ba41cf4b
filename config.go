package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configDir = ".blogsmith"

const (
	defaultWorkbookPath    = "data/Key Insights.xlsx"
	defaultOutputDir       = "generated_blogs"
	defaultBatchSize       = 5
	defaultMaxOutputTokens = 4000
)

// Embedded configuration files
//
//go:embed .blogsmith/blog-prompt.md
var defaultBlogPrompt string

//go:embed .blogsmith/system-prompt.md
var defaultSystemPrompt string

//go:embed .blogsmith/settings.yaml
var defaultSettings string

// Settings represents the YAML configuration structure
type Settings struct {
	WorkbookPath    string                  `yaml:"workbook_path"`
	OutputDirectory string                  `yaml:"output_directory"`
	BatchSize       int                     `yaml:"batch_size"`
	Temperature     float64                 `yaml:"temperature"`
	Models          []ModelSettings         `yaml:"models"`
	Pricing         map[string]RateSettings `yaml:"pricing"`
	Research        ResearchSettings        `yaml:"research"`
	Sinks           SinkSettings            `yaml:"sinks"`
	Server          ServerSettings          `yaml:"server"`
}

// ModelSettings names one candidate model in fallback order.
type ModelSettings struct {
	Name      string `yaml:"name"`
	Provider  string `yaml:"provider"`
	MaxTokens int    `yaml:"max_tokens"`
}

// RateSettings is the per-1K-token price pair for one model.
type RateSettings struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
}

// ResearchSettings controls the optional source-page context fetch.
type ResearchSettings struct {
	Enabled   bool `yaml:"enabled"`
	MaxTokens int  `yaml:"max_tokens"`
}

// SinkSettings toggles the remote record sinks.
type SinkSettings struct {
	Airtable        bool `yaml:"airtable"`
	AirtableMinimal bool `yaml:"airtable_minimal"`
	Sheets          bool `yaml:"sheets"`
}

// ServerSettings configures the HTTP API front-end.
type ServerSettings struct {
	Port int `yaml:"port"`
}

// loadSettings reads settings.yaml from the config directory, falling back
// to the embedded defaults when the file is absent.
func loadSettings() (*Settings, error) {
	data, err := os.ReadFile(getConfigPath("settings.yaml"))
	if err != nil {
		data = []byte(defaultSettings)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}

	if settings.WorkbookPath == "" {
		settings.WorkbookPath = defaultWorkbookPath
	}
	if settings.OutputDirectory == "" {
		settings.OutputDirectory = defaultOutputDir
	}
	if settings.BatchSize <= 0 {
		log.Printf("Warning: batch_size is %d, defaulting to %d", settings.BatchSize, defaultBatchSize)
		settings.BatchSize = defaultBatchSize
	}

	return &settings, nil
}

// getConfigPath returns the path to a config file in the .blogsmith directory
func getConfigPath(filename string) string {
	return filepath.Join(configDir, filename)
}

// ensureConfigExists creates the config directory and default files if they
// don't exist, so users can edit prompts and settings without rebuilding.
func ensureConfigExists() error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaults := map[string]string{
		"settings.yaml":    defaultSettings,
		"blog-prompt.md":   defaultBlogPrompt,
		"system-prompt.md": defaultSystemPrompt,
	}
	for name, content := range defaults {
		path := getConfigPath(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing default %s: %w", name, err)
			}
		}
	}

	return nil
}

// blogPromptText returns the prompt template, preferring an edited on-disk
// copy over the embedded default.
func blogPromptText() string {
	if data, err := os.ReadFile(getConfigPath("blog-prompt.md")); err == nil {
		return string(data)
	}
	return defaultBlogPrompt
}

// systemPromptText returns the system instruction sent with every
// completion request.
func systemPromptText() string {
	if data, err := os.ReadFile(getConfigPath("system-prompt.md")); err == nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(defaultSystemPrompt)
}

// getEnv returns the environment value for key, or fallback when unset.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
