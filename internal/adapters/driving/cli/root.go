package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fetcha-cli/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/fetcha-cli/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/fetcha-cli/internal/adapters/driven/config/file"
	memstorage "github.com/custodia-labs/fetcha-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fetcha-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/fetcha-cli/internal/adapters/driven/summarizer/naive"
	"github.com/custodia-labs/fetcha-cli/internal/adapters/driven/summarizer/openai"
	"github.com/custodia-labs/fetcha-cli/internal/connectors/confluence"
	"github.com/custodia-labs/fetcha-cli/internal/connectors/gdrive"
	"github.com/custodia-labs/fetcha-cli/internal/connectors/notion"
	"github.com/custodia-labs/fetcha-cli/internal/connectors/slack"
	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fetcha-cli/internal/core/services"
	"github.com/custodia-labs/fetcha-cli/internal/logger"
)

// version is stamped at build time via -ldflags.
var version = "0.1.0"

// Services used by the commands. Wired in initServices, replaced by mocks
// in tests.
var (
	aggregatorService driving.AggregatorService
	identityService   driving.IdentityService
	credentialsStore  driven.CredentialsStore
	configStore       driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fetcha",
	Short: "Unified search across your team's knowledge sources",
	Long: `Fetcha aggregates search, document retrieval, and recent activity
across Google Drive, Notion, Slack, and Confluence behind one CLI and
one MCP server.

Connect a source with 'fetcha auth add', then query everything at once:

  fetcha auth add notion
  fetcha search "quarterly roadmap"
  fetcha updates --days 3
  fetcha mcp serve`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute wires the services and runs the root command.
func Execute() {
	cleanup, err := initServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initServices builds the full dependency graph from local configuration.
// The returned cleanup closes everything that holds resources.
func initServices() (func(), error) {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	settings, err := file.LoadSettings(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := buildCredentialsStore(settings)
	if err != nil {
		return nil, fmt.Errorf("opening credentials store: %w", err)
	}
	credentialsStore = store

	searchCache, documentCache, updatesCache := buildCaches(settings)

	registry := services.NewAdapterRegistry(store)
	registry.Register(domain.SourceGoogleDrive, func(_ *domain.Identity, creds *domain.SourceCredentials) driven.SourceAdapter {
		return gdrive.New(creds.AccessToken)
	})
	registry.Register(domain.SourceNotion, func(_ *domain.Identity, creds *domain.SourceCredentials) driven.SourceAdapter {
		return notion.New(creds.AccessToken)
	})
	registry.Register(domain.SourceSlack, func(_ *domain.Identity, creds *domain.SourceCredentials) driven.SourceAdapter {
		return slack.New(creds.AccessToken)
	})
	if settings.ConfluenceBaseURL != "" {
		baseURL := settings.ConfluenceBaseURL
		registry.Register(domain.SourceConfluence, func(_ *domain.Identity, creds *domain.SourceCredentials) driven.SourceAdapter {
			return confluence.New(baseURL, creds.AccountEmail, creds.AccessToken)
		})
	}

	summarizer, err := buildSummarizer(settings, cfg)
	if err != nil {
		return nil, err
	}

	aggregatorService = services.NewAggregator(services.AggregatorConfig{
		Registry:       registry,
		Summarizer:     summarizer,
		SearchCache:    searchCache,
		DocumentCache:  documentCache,
		UpdatesCache:   updatesCache,
		AdapterTimeout: settings.AdapterTimeout,
	})
	identityService = services.NewLocalIdentity(cfg, store)

	cleanup := func() {
		for _, c := range []driven.Cache{searchCache, documentCache, updatesCache} {
			if c != nil {
				if err := c.Close(); err != nil {
					logger.Warn("Closing cache: %v", err)
				}
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("Closing credentials store: %v", err)
		}
	}
	return cleanup, nil
}

// buildCredentialsStore selects the credentials backend per the settings.
func buildCredentialsStore(settings domain.Settings) (driven.CredentialsStore, error) {
	if settings.Storage == domain.StorageMemory {
		return memstorage.NewStore(), nil
	}
	return sqlite.NewStore("")
}

// buildCaches returns the search, document, and updates caches per the
// settings. All three are nil when caching is disabled.
func buildCaches(settings domain.Settings) (driven.Cache, driven.Cache, driven.Cache) {
	if !settings.CacheEnabled {
		return nil, nil, nil
	}

	if settings.RedisAddr != "" {
		return rediscache.New(settings.RedisAddr, "fetcha:search", settings.SearchCache.TTL),
			rediscache.New(settings.RedisAddr, "fetcha:document", settings.DocumentCache.TTL),
			rediscache.New(settings.RedisAddr, "fetcha:updates", settings.UpdatesCache.TTL)
	}

	return memory.New(settings.SearchCache.Capacity, settings.SearchCache.TTL),
		memory.New(settings.DocumentCache.Capacity, settings.DocumentCache.TTL),
		memory.New(settings.UpdatesCache.Capacity, settings.UpdatesCache.TTL)
}

func buildSummarizer(settings domain.Settings, cfg driven.ConfigStore) (driven.Summarizer, error) {
	switch settings.Summarizer {
	case domain.SummarizerOpenAI:
		apiKey := cfg.GetString("summarizer.openai_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		s, err := openai.New(openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("summarizer.openai_base_url"),
			Model:   cfg.GetString("summarizer.openai_model"),
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai summarizer: %w", err)
		}
		return s, nil
	default:
		return naive.New(), nil
	}
}
