package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/extract"
	"github.com/spigell/resume-analyzer/internal/feedback"
	"github.com/spigell/resume-analyzer/internal/matching"
	"github.com/spigell/resume-analyzer/internal/server"
)

const (
	app = "resume-analyzer"
)

type Config struct {
	Scoring  matching.Options `mapstructure:"scoring"`
	Job      JobConfig        `mapstructure:"job"`
	Feedback *feedback.Config `mapstructure:"feedback"`
	Server   server.Config    `mapstructure:"server"`
}

type JobConfig struct {
	SampleFile    string `mapstructure:"sample-file"`
	ExcerptLength int    `mapstructure:"excerpt-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-analyzer scores how well a resume matches a job description and suggests improvements",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("feedback.openai.api-key-file", "OPENAI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("feedback.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetEnvPrefix("RESUME_ANALYZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-analyzer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scoring.cosine-weight", matching.DefaultCosineWeight)
	v.SetDefault("scoring.overlap-weight", matching.DefaultOverlapWeight)
	v.SetDefault("scoring.max-vocabulary", matching.DefaultMaxVocabulary)

	v.SetDefault("job.sample-file", analysis.DefaultSampleJobFile)
	v.SetDefault("job.excerpt-length", analysis.DefaultExcerptLength)

	v.SetDefault("feedback.provider", feedback.ProviderAuto)

	v.SetDefault("server.listen", server.DefaultListen)
	v.SetDefault("server.max-upload-mb", server.DefaultMaxUploadMB)
	v.SetDefault("server.requests-per-second", server.DefaultRequestsPerSecond)
	v.SetDefault("server.burst", server.DefaultBurst)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// newAnalyzer wires extraction, scoring and the selected feedback backend.
func newAnalyzer(config *Config, logger *zap.Logger) (*analysis.Analyzer, error) {
	generator, err := feedback.Select(config.Feedback, logger)
	if err != nil {
		return nil, err
	}

	var timeout time.Duration
	if config.Feedback != nil {
		timeout = config.Feedback.Timeout
	}

	return analysis.New(analysis.Config{
		Scoring:         &config.Scoring,
		SampleJobFile:   config.Job.SampleFile,
		ExcerptLength:   config.Job.ExcerptLength,
		FeedbackTimeout: timeout,
	}, analysis.Deps{
		Extractor: extract.New(logger),
		Feedback:  generator,
		Logger:    logger,
	})
}
