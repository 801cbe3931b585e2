package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/extract"
	"github.com/spigell/resume-analyzer/internal/feedback"
	"github.com/spigell/resume-analyzer/internal/matching"
	"github.com/spigell/resume-analyzer/internal/metrics"
	"github.com/spigell/resume-analyzer/internal/utils"
)

const (
	DefaultSampleJobFile = "sample_job.txt"
	DefaultExcerptLength = 2000
)

var (
	ErrNoResume         = errors.New("resume is required")
	ErrNoJobDescription = errors.New("job description is required")
)

// Config holds the analysis settings.
type Config struct {
	// Scoring overrides the scoring options. Nil means matching.DefaultOptions.
	Scoring *matching.Options
	// SampleJobFile is read when the job description is blank.
	SampleJobFile string
	// ExcerptLength caps the resume and job excerpts in the report.
	ExcerptLength int
	// FeedbackTimeout bounds the feedback step. Zero means no limit.
	FeedbackTimeout time.Duration
}

// Deps are the collaborators of the Analyzer. Feedback is optional.
type Deps struct {
	Extractor extract.Extractor
	Feedback  feedback.Generator
	Logger    *zap.Logger
}

// Input is one resume/job pair. ResumeText, when set, skips extraction.
type Input struct {
	ResumeData     []byte
	ResumeFilename string
	ResumeText     string
	JobDescription string
	CandidateName  string
}

// StepInfo describes one executed step.
type StepInfo struct {
	Name     string        `json:"name" yaml:"name"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the outcome of one analysis.
type Report struct {
	CandidateName string           `json:"candidate_name,omitempty" yaml:"candidate_name,omitempty"`
	ResumeFormat  string           `json:"resume_format,omitempty" yaml:"resume_format,omitempty"`
	ResumeExcerpt string           `json:"resume_excerpt" yaml:"resume_excerpt"`
	JobExcerpt    string           `json:"job_excerpt" yaml:"job_excerpt"`
	Score         float64          `json:"score" yaml:"score"`
	Progress      int              `json:"progress" yaml:"progress"`
	Match         *matching.Result `json:"match" yaml:"match"`
	Feedback      *feedback.Result `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Steps         []StepInfo       `json:"steps" yaml:"steps"`
}

// Analyzer sequences extraction, scoring and feedback for a single pair.
type Analyzer struct {
	cfg     Config
	scoring matching.Options
	deps    Deps
}

// New validates the scoring options and returns an Analyzer.
func New(cfg Config, deps Deps) (*Analyzer, error) {
	scoring := matching.DefaultOptions()
	if cfg.Scoring != nil {
		scoring = *cfg.Scoring
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	if cfg.ExcerptLength <= 0 {
		cfg.ExcerptLength = DefaultExcerptLength
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.New(deps.Logger)
	}

	return &Analyzer{cfg: cfg, scoring: scoring, deps: deps}, nil
}

type state struct {
	input  Input
	resume string
	job    string
	report *Report
}

type step struct {
	name string
	run  func(ctx context.Context, s *state) error
}

// Analyze runs the pipeline. Extraction problems and a missing job
// description stop it before scoring.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Report, error) {
	s := &state{
		input:  in,
		report: &Report{CandidateName: strings.TrimSpace(in.CandidateName)},
	}

	steps := []step{
		{name: "job_description", run: a.resolveJob},
		{name: "extract", run: a.extract},
		{name: "score", run: a.score},
		{name: "feedback", run: a.feedback},
	}

	for _, st := range steps {
		start := time.Now()
		if err := st.run(ctx, s); err != nil {
			metrics.AnalysesTotal.WithLabelValues("error").Inc()
			a.deps.Logger.Warn("analysis step failed", zap.String("name", st.name), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}

		info := StepInfo{Name: st.name, Duration: time.Since(start)}
		s.report.Steps = append(s.report.Steps, info)
		a.deps.Logger.Debug("analysis step", zap.String("name", info.Name), zap.Duration("duration", info.Duration))
	}

	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	a.deps.Logger.Info("analysis completed",
		zap.Float64("score", s.report.Score),
		zap.Float64("cosine", s.report.Match.Cosine),
		zap.Float64("overlap", s.report.Match.Overlap),
	)

	return s.report, nil
}

func (a *Analyzer) resolveJob(_ context.Context, s *state) error {
	job := s.input.JobDescription
	if strings.TrimSpace(job) == "" && a.cfg.SampleJobFile != "" {
		data, err := os.ReadFile(a.cfg.SampleJobFile)
		if err != nil {
			a.deps.Logger.Debug("sample job description is not available",
				zap.String("file", a.cfg.SampleJobFile),
				zap.Error(err),
			)
		} else {
			a.deps.Logger.Info("using sample job description", zap.String("file", a.cfg.SampleJobFile))
			job = string(data)
		}
	}

	if strings.TrimSpace(job) == "" {
		return ErrNoJobDescription
	}

	s.job = job
	s.report.JobExcerpt = utils.Excerpt(job, a.cfg.ExcerptLength)
	return nil
}

func (a *Analyzer) extract(ctx context.Context, s *state) error {
	if text := s.input.ResumeText; strings.TrimSpace(text) != "" {
		s.resume = text
		s.report.ResumeExcerpt = utils.Excerpt(text, a.cfg.ExcerptLength)
		return nil
	}

	if len(s.input.ResumeData) == 0 {
		return ErrNoResume
	}

	format := extract.ExtensionOf(s.input.ResumeFilename)
	s.report.ResumeFormat = format

	text, err := extract.Require(a.deps.Extractor.Extract(ctx, s.input.ResumeData, format))
	if err != nil {
		metrics.ExtractionErrorsTotal.WithLabelValues(formatLabel(format), extractionReason(err)).Inc()
		return err
	}

	s.resume = text
	s.report.ResumeExcerpt = utils.Excerpt(text, a.cfg.ExcerptLength)
	return nil
}

func (a *Analyzer) score(_ context.Context, s *state) error {
	res, err := matching.Compute(s.resume, s.job, a.scoring)
	if err != nil {
		return err
	}

	metrics.MatchScore.Observe(res.Score)

	s.report.Match = res
	s.report.Score = res.Score
	s.report.Progress = int(min(100, res.Score))
	return nil
}

func (a *Analyzer) feedback(ctx context.Context, s *state) error {
	if a.deps.Feedback == nil {
		return nil
	}

	if a.cfg.FeedbackTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.FeedbackTimeout)
		defer cancel()
	}

	res, err := a.deps.Feedback.Generate(ctx, feedback.Request{
		ResumeText:    s.resume,
		JobText:       s.job,
		CandidateName: s.report.CandidateName,
	})
	if err != nil {
		return err
	}

	s.report.Feedback = res
	return nil
}

func formatLabel(format string) string {
	switch format {
	case "pdf", "docx", "doc":
		return format
	default:
		return "text"
	}
}

func extractionReason(err error) string {
	switch {
	case errors.Is(err, extract.ErrNoExtractableText):
		return "no_text"
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, extract.ErrCorruptDocument):
		return "corrupt"
	default:
		return "other"
	}
}
