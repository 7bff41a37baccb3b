package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/logger"
)

const (
	app = "jobfinder"
)

type Config struct {
	AI     *AIConfig     `mapstructure:"ai"`
	Server *ServerConfig `mapstructure:"server"`
}

type AIConfig struct {
	OpenAI     *ProviderConfig `mapstructure:"openai"`
	OpenRouter *ProviderConfig `mapstructure:"openrouter"`
	Gemini     *ProviderConfig `mapstructure:"gemini"`
}

type ProviderConfig struct {
	APIKey     string            `mapstructure:"api-key"`
	APIKeyFile string            `mapstructure:"api-key-file"`
	BaseURL    string            `mapstructure:"base-url"`
	Models     map[string]string `mapstructure:"models"`
	// Referer and Title are sent to OpenRouter only.
	Referer string `mapstructure:"referer"`
	Title   string `mapstructure:"title"`
}

type ServerConfig struct {
	Listen       string   `mapstructure:"listen"`
	RateLimit    float64  `mapstructure:"rate-limit"`
	AllowOrigins []string `mapstructure:"allow-origins"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobfinder exposes OpenAI, OpenRouter and Gemini behind one AI gateway",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.openai.api-key":          "OPENAI_API_KEY",
		"ai.openai.api-key-file":     "OPENAI_API_KEY_FILE",
		"ai.openrouter.api-key":      "OPENROUTER_API_KEY",
		"ai.openrouter.api-key-file": "OPENROUTER_API_KEY_FILE",
		"ai.gemini.api-key":          "GEMINI_API_KEY",
		"ai.gemini.api-key-file":     "GEMINI_API_KEY_FILE",
		"server.listen":              "JOBFINDER_LISTEN",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("server.listen", ":8080")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobfinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Every setting has an environment variable, so the file is optional unless
	// it was requested explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
