package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/candimap/pkg/constants"
	"github.com/agentstation/candimap/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file actually read, empty when none was found
	ConfigFile string

	// Reconciliation rules file; empty uses the embedded defaults
	RulesFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. CANDIMAP_* environment variables
//  3. .env files
//  4. Config file (CANDIMAP_CONFIG, or .candimap.yaml in $HOME or the working directory)
//  5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()
	return loadConfig(os.Getenv(constants.EnvPrefix + "_CONFIG"))
}

// LoadConfigFile loads configuration like LoadConfig but reads the given
// config file, which must exist.
func LoadConfigFile(path string) (*Config, error) {
	loadEnvFiles()
	return loadConfig(path)
}

func loadConfig(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-format", "auto")
	v.SetDefault("log-output", "stderr")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "cannot read config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),
		RulesFile:  v.GetString("rules"),

		LogLevel:  v.GetString("log-level"),
		LogFormat: v.GetString("log-format"),
		LogOutput: v.GetString("log-output"),
	}

	// A relative rules path in a config file is relative to that file
	if config.RulesFile != "" && !filepath.IsAbs(config.RulesFile) &&
		v.InConfig("rules") && os.Getenv(constants.EnvPrefix+"_RULES") == "" {
		config.RulesFile = filepath.Join(filepath.Dir(config.ConfigFile), config.RulesFile)
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags so that flag values take
// precedence over the config file and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, rulesFile string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if rulesFile != "" {
		c.RulesFile = rulesFile
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env; neither overrides the real environment.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
