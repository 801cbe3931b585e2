package feedback

import (
	"context"
	"fmt"
	"strings"
)

// MaxSuggestions caps the number of suggestions in a structured result.
const MaxSuggestions = 5

// Kind tells which variant of Result is populated.
type Kind string

const (
	KindStructured Kind = "structured"
	KindPlainText  Kind = "plain_text"
)

// Result is either Structured (Summary, Suggestions, Headline) or PlainText (Text).
type Result struct {
	Kind        Kind     `json:"kind" yaml:"kind"`
	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Headline    string   `json:"headline,omitempty" yaml:"headline,omitempty"`
	Text        string   `json:"text,omitempty" yaml:"text,omitempty"`
	// Source names the generator that produced the result.
	Source string `json:"source" yaml:"source"`
}

// Structured builds a structured result, dropping blank suggestions and
// keeping at most MaxSuggestions of them.
func Structured(summary string, suggestions []string, headline string) *Result {
	kept := make([]string, 0, min(len(suggestions), MaxSuggestions))
	for _, s := range suggestions {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		kept = append(kept, s)
		if len(kept) == MaxSuggestions {
			break
		}
	}

	return &Result{
		Kind:        KindStructured,
		Summary:     strings.TrimSpace(summary),
		Suggestions: kept,
		Headline:    strings.TrimSpace(headline),
	}
}

// PlainText builds a free-form result.
func PlainText(text string) *Result {
	return &Result{Kind: KindPlainText, Text: strings.TrimSpace(text)}
}

// AsStructured returns r in the structured shape. Plain text becomes the summary.
func (r *Result) AsStructured() *Result {
	if r == nil {
		return Structured("", nil, "")
	}
	if r.Kind == KindStructured {
		return r
	}
	out := Structured(r.Text, nil, "")
	out.Source = r.Source
	return out
}

// Request is the input of a feedback generator.
type Request struct {
	ResumeText    string
	JobText       string
	CandidateName string
}

// Generator produces feedback for a resume against a job description.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Error is returned by remote generators.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s feedback: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
