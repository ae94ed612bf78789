package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/semtext/pkg/semtext/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "semtext",
	Short: "Convert annotated text to semantic text and semantic strings",
	Long: `semtext converts the output of an NLP pipeline (tokens, multi-word
groups, named entities and their candidate meanings) into semantic text,
a flat list of non-overlapping terms, and encodes it as a weighted
semantic string for indexing.

Semantic strings can be decoded back, stored in SQLite and searched by
concept, entity or text.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads ENV variables. SEMTEXT_MAPPER_BASE_URL overrides
// mapper.base_url and so on.
func initConfig() {
	viper.SetEnvPrefix("SEMTEXT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}

// loadConfig reads the config file, if any, then applies environment
// overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	overrideString(&cfg.Mapper.Kind, "mapper.kind")
	overrideString(&cfg.Mapper.EntityPrefix, "mapper.entity_prefix")
	overrideString(&cfg.Mapper.ConceptPrefix, "mapper.concept_prefix")
	overrideString(&cfg.Mapper.BaseURL, "mapper.base_url")
	overrideString(&cfg.Store.Path, "store.path")
	if viper.IsSet("reviewed") {
		cfg.Reviewed = viper.GetBool("reviewed")
	}
	if viper.IsSet("index.max_results") {
		cfg.Index.MaxResults = viper.GetInt("index.max_results")
	}
	return cfg, cfg.Validate()
}

func overrideString(dst *string, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetString(key)
	}
}

// components builds the converters, honouring a --reviewed flag on cmd.
func components(cmd *cobra.Command) (*config.Components, *zap.Logger, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if f := cmd.Flags().Lookup("reviewed"); f != nil && f.Changed {
		cfg.Reviewed = reviewed
	}
	comp, err := config.Build(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return comp, logger, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
