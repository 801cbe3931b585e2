package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/feedback"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"

	progressWidth = 20
)

func validFormat(format string) bool {
	switch format {
	case outputText, outputJSON, outputYAML:
		return true
	default:
		return false
	}
}

func render(w io.Writer, report *analysis.Report, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case outputText:
		_, err := io.WriteString(w, renderText(report))
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func renderText(report *analysis.Report) string {
	var b strings.Builder

	if report.CandidateName != "" {
		fmt.Fprintf(&b, "Candidate: %s\n", report.CandidateName)
	}

	fmt.Fprintf(&b, "Match score: %.1f%%\n", report.Score)
	fmt.Fprintf(&b, "%s %d%%\n", progressBar(report.Progress), report.Progress)
	if report.Match != nil {
		fmt.Fprintf(&b, "Cosine similarity: %.3f, keyword overlap: %.3f\n", report.Match.Cosine, report.Match.Overlap)
	}

	if fb := report.Feedback; fb != nil {
		b.WriteString("\nFeedback")
		if fb.Source != "" {
			fmt.Fprintf(&b, " (%s)", fb.Source)
		}
		b.WriteString(":\n")

		switch fb.Kind {
		case feedback.KindPlainText:
			fmt.Fprintf(&b, "%s\n", fb.Text)
		default:
			if fb.Summary != "" {
				fmt.Fprintf(&b, "%s\n", fb.Summary)
			}
			for _, s := range fb.Suggestions {
				fmt.Fprintf(&b, "  - %s\n", s)
			}
			if fb.Headline != "" {
				fmt.Fprintf(&b, "Suggested headline: %s\n", fb.Headline)
			}
		}
	}

	return b.String()
}

func progressBar(progress int) string {
	progress = max(0, min(100, progress))
	filled := progress * progressWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled) + "]"
}

func dumpToTmpFile(report *analysis.Report) (string, error) {
	f, err := os.CreateTemp("", app+"-report-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := render(f, report, outputJSON); err != nil {
		return "", err
	}

	return f.Name(), nil
}
