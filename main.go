package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	countFlag      int
	allFlag        bool
	portFlag       int
	setupSheetFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "blogsmith",
	Short: "SEO blog generation pipeline driven by an Excel workbook",
	Long:  `Generates SEO-optimized blog posts from workbook topics using LLM completions, with file reports and Airtable/Google Sheets output.`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate blogs for the workbook topics",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}

		if len(app.Corpus.Topics) == 0 {
			log.Fatal("No topics in corpus; add rows to the key topics sheet")
		}

		limit := app.Settings.BatchSize
		if countFlag > 0 {
			limit = countFlag
		}
		if allFlag {
			limit = 0
		}

		sinks := []Sink{app.FileSink}
		for _, remote := range app.Remotes {
			sinks = append(sinks, remote)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		pipeline := NewBatchPipeline(app.Corpus, app.Engine, sinks...)
		results, summary, err := pipeline.Run(ctx, limit)
		if err != nil {
			log.Printf("✗ Batch stopped early: %v", err)
		}

		if err := app.FileSink.WriteSummary(results, summary); err != nil {
			log.Printf("✗ Writing summary: %v", err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blog generation HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}

		if len(app.Corpus.Topics) == 0 {
			log.Fatal("No topics in corpus; add rows to the key topics sheet")
		}

		port := app.Settings.Server.Port
		if portFlag > 0 {
			port = portFlag
		}
		if port == 0 {
			port = 8080
		}

		server := NewServer(app.Corpus, app.Engine, app.Remotes)
		addr := fmt.Sprintf(":%d", port)
		log.Printf("Blog Generator API listening on %s", addr)
		if err := http.ListenAndServe(addr, server.Router()); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify API credentials and sink connectivity",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}

		failed := false

		if err := app.Engine.TestConnection(context.Background()); err != nil {
			log.Printf("✗ Completion API (%s): %v", app.Engine.PrimaryModel(), err)
			failed = true
		} else {
			log.Printf("✓ Completion API (%s)", app.Engine.PrimaryModel())
		}

		for _, remote := range app.Remotes {
			if err := remote.TestConnection(); err != nil {
				log.Printf("✗ %s: %v", remote.Name(), err)
				failed = true
				continue
			}
			log.Printf("✓ %s", remote.Name())

			if setupSheetFlag {
				if sheets, ok := remote.(*SheetsSink); ok {
					if err := sheets.WriteHeaders(); err != nil {
						log.Printf("✗ Writing sheet headers: %v", err)
						failed = true
					} else {
						log.Printf("✓ Sheet headers written")
					}
				}
			}
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	generateCmd.Flags().IntVar(&countFlag, "count", 0, "Number of blogs to generate (default: batch_size from settings)")
	generateCmd.Flags().BoolVar(&allFlag, "all", false, "Generate blogs for every topic in the workbook")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "HTTP port (default: server.port from settings)")
	checkCmd.Flags().BoolVar(&setupSheetFlag, "setup-sheet", false, "Write the header row to the Google Sheet")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// App bundles the loaded corpus, the engine, and the configured sinks.
type App struct {
	Settings *Settings
	Corpus   *Corpus
	Engine   *Engine
	FileSink *FileSink
	Remotes  []RemoteSink
}

// buildApp loads configuration and data and wires up every component the
// subcommands share.
func buildApp() (*App, error) {
	if err := ensureConfigExists(); err != nil {
		return nil, fmt.Errorf("ensuring config files exist: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using system environment")
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	workbook := getEnv("EXCEL_FILE_PATH", settings.WorkbookPath)
	corpus, err := LoadCorpus(workbook)
	if err != nil {
		return nil, fmt.Errorf("loading workbook: %w", err)
	}

	composer, err := NewPromptComposer(blogPromptText(), nil)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}

	engine, err := buildEngine(settings, composer)
	if err != nil {
		return nil, err
	}

	fileSink, err := NewFileSink(settings.OutputDirectory)
	if err != nil {
		return nil, err
	}

	return &App{
		Settings: settings,
		Corpus:   corpus,
		Engine:   engine,
		FileSink: fileSink,
		Remotes:  buildRemoteSinks(settings),
	}, nil
}

// buildEngine assembles the candidate model list from settings. Clients
// are shared per provider so all candidates of one provider reuse the same
// HTTP client and rate limiter.
func buildEngine(settings *Settings, composer *PromptComposer) (*Engine, error) {
	clients := make(map[string]Completer)
	candidates := make([]ModelCandidate, 0, len(settings.Models))

	for _, m := range settings.Models {
		provider := m.Provider
		if provider == "" {
			provider = "openai"
		}

		client, ok := clients[provider]
		if !ok {
			switch provider {
			case "openai":
				apiKey := os.Getenv("OPENAI_API_KEY")
				if apiKey == "" {
					return nil, fmt.Errorf("OPENAI_API_KEY required for model %q", m.Name)
				}
				client = NewOpenAIClient(apiKey)
			case "anthropic":
				apiKey := os.Getenv("ANTHROPIC_API_KEY")
				if apiKey == "" {
					return nil, fmt.Errorf("ANTHROPIC_API_KEY required for model %q", m.Name)
				}
				client = NewAnthropicClient(apiKey)
			default:
				return nil, fmt.Errorf("unknown provider %q for model %q", provider, m.Name)
			}
			clients[provider] = client
		}

		maxTokens := m.MaxTokens
		if maxTokens <= 0 {
			maxTokens = defaultMaxOutputTokens
		}

		candidates = append(candidates, ModelCandidate{
			Model:     m.Name,
			MaxTokens: maxTokens,
			Client:    client,
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no models configured in settings.yaml")
	}

	rates := make(map[string]ModelRate, len(settings.Pricing))
	for model, r := range settings.Pricing {
		rates[model] = ModelRate{InputPer1K: r.InputPer1K, OutputPer1K: r.OutputPer1K}
	}
	prices := NewPriceTable(rates, candidates[0].Model)

	engine := NewEngine(composer, candidates, prices, systemPromptText(), settings.Temperature)

	if settings.Research.Enabled {
		engine.SetResearch(NewResearchFetcher(settings.Research.MaxTokens))
	}

	return engine, nil
}

// buildRemoteSinks constructs the enabled remote sinks. A sink whose
// credentials are missing is skipped with a warning rather than failing
// the run.
func buildRemoteSinks(settings *Settings) []RemoteSink {
	var remotes []RemoteSink

	if settings.Sinks.Airtable {
		apiKey := os.Getenv("AIRTABLE_API_KEY")
		baseID := os.Getenv("AIRTABLE_BASE_ID")
		if apiKey == "" || baseID == "" {
			log.Printf("→ Airtable sink disabled: AIRTABLE_API_KEY and AIRTABLE_BASE_ID not set")
		} else {
			table := getEnv("AIRTABLE_TABLE_NAME", "Table 1")
			remotes = append(remotes, NewAirtableSink(apiKey, baseID, table, settings.Sinks.AirtableMinimal))
		}
	}

	if settings.Sinks.Sheets {
		token := os.Getenv("GOOGLE_SHEETS_TOKEN")
		sheetID := os.Getenv("GOOGLE_SHEET_ID")
		if token == "" || sheetID == "" {
			log.Printf("→ Sheets sink disabled: GOOGLE_SHEETS_TOKEN and GOOGLE_SHEET_ID not set")
		} else {
			remotes = append(remotes, NewSheetsSink(token, sheetID))
		}
	}

	return remotes
}
