package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/newsgate/internal/logging"
	"github.com/ppiankov/newsgate/internal/model"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "newsgate",
	Short: "Newsgate - two-stage news verification",
	Long: `Newsgate screens news content before it is shared.

Stage 1 is a fast pre-filter: it scores the source domain and the writing
itself and either blocks the article or passes it on.

Stage 2 cross-references the story against reference outlets and wire
feeds and produces a 0-100 score with a verdict (VERIFIED, SUSPICIOUS,
NEEDS_REVIEW or FAKE).`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsgate %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.newsgate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".newsgate"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// NEWSGATE_LLM_MODEL overrides llm.model, and so on
	viper.SetEnvPrefix("NEWSGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Well-known key variables, first match wins
	_ = viper.BindEnv("llm.api_key", "NEWSGATE_LLM_API_KEY", "LLM_API_KEY", "LOVABLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("llm.base_url", "NEWSGATE_LLM_BASE_URL", "OLLAMA_BASE_URL")
	_ = viper.BindEnv("search.api_key", "NEWSGATE_SEARCH_API_KEY", "NEWSAPI_KEY", "NEWS_API_KEY")
	_ = viper.BindEnv("events.nats_url", "NEWSGATE_EVENTS_NATS_URL", "NATS_URL")
	_ = viper.BindEnv("http.http_proxy", "NEWSGATE_HTTP_HTTP_PROXY", "HTTP_PROXY")
	_ = viper.BindEnv("http.https_proxy", "NEWSGATE_HTTP_HTTPS_PROXY", "HTTPS_PROXY")
	_ = viper.BindEnv("http.no_proxy", "NEWSGATE_HTTP_NO_PROXY", "NO_PROXY")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file and the environment
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from config and the --verbose flag
func newLogger(cfg *model.Config) zerolog.Logger {
	return logging.Verbose(logging.New(cfg.Log, os.Stderr), verbose)
}
