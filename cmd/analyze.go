package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/logger"
)

const (
	PromptShowText  = "Show report"
	PromptShowJSON  = "Show report as JSON"
	PromptShowYAML  = "Show report as YAML"
	PromptSaveToTmp = "Save report to file"
	PromptExit      = "Exit"
)

var errExit = errors.New("exit requested")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "path to the resume file (pdf, docx, txt)")
	analyzeCmd.Flags().StringP("job", "J", "", "path to a file with the job description")
	analyzeCmd.Flags().String("job-text", "", "job description text")
	analyzeCmd.Flags().StringP("name", "n", "", "candidate name")
	analyzeCmd.Flags().StringP("output", "o", outputText, "output format: text, json or yaml")
	analyzeCmd.Flags().BoolP("interactive", "i", false, "ask for missing inputs and choose how to show the report")
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting the analysis", zap.String("version", version))

	flags := cmd.Flags()
	interactive, _ := flags.GetBool("interactive")
	resumePath, _ := flags.GetString("resume")
	jobPath, _ := flags.GetString("job")
	jobText, _ := flags.GetString("job-text")
	name, _ := flags.GetString("name")
	output, _ := flags.GetString("output")

	if !validFormat(output) {
		logger.Fatal("unsupported output format", zap.String("output", output))
	}

	if interactive {
		if resumePath == "" {
			resumePath, err = ask("Path to the resume file", requireValue)
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}
		if name == "" {
			name, err = ask("Candidate name (optional)", nil)
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}
	}

	if resumePath == "" {
		logger.Fatal("resume file is required", zap.String("hint", "pass --resume or use --interactive"))
	}

	input, err := buildInput(resumePath, jobPath, jobText, name)
	if err != nil {
		logger.Fatal("reading inputs", zap.Error(err))
	}

	analyzer, err := newAnalyzer(config, logger)
	if err != nil {
		logger.Fatal("building the analyzer", zap.Error(err))
	}

	report, err := analyzer.Analyze(ctx, input)
	if err != nil {
		logger.Fatal("analysis failed", zap.Error(err))
	}

	if !interactive {
		if err := render(os.Stdout, report, output); err != nil {
			logger.Fatal("rendering the report", zap.Error(err))
		}
		return
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptShowText, PromptShowJSON, PromptShowYAML, PromptSaveToTmp, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, report, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, report *analysis.Report, logger *zap.Logger) error {
	switch action {
	case PromptShowText:
		return render(os.Stdout, report, outputText)
	case PromptShowJSON:
		return render(os.Stdout, report, outputJSON)
	case PromptShowYAML:
		return render(os.Stdout, report, outputYAML)
	case PromptSaveToTmp:
		filename, err := dumpToTmpFile(report)
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func buildInput(resumePath, jobPath, jobText, name string) (analysis.Input, error) {
	data, err := os.ReadFile(resumePath)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("reading resume: %w", err)
	}

	if jobPath != "" {
		raw, err := os.ReadFile(jobPath)
		if err != nil {
			return analysis.Input{}, fmt.Errorf("reading job description: %w", err)
		}
		jobText = string(raw)
	}

	return analysis.Input{
		ResumeData:     data,
		ResumeFilename: resumePath,
		JobDescription: jobText,
		CandidateName:  strings.TrimSpace(name),
	}, nil
}

func ask(label string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{Label: label, Validate: validate}
	value, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func requireValue(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}
