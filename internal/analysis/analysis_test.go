package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spigell/resume-analyzer/internal/extract"
	"github.com/spigell/resume-analyzer/internal/feedback"
	"github.com/spigell/resume-analyzer/internal/matching"
	"github.com/spigell/resume-analyzer/internal/metrics"
)

const (
	scenarioResume = "Experienced python developer with sql and github projects"
	scenarioJob    = "Looking for a python developer with sql and machine learning skills"
)

type stubExtractor struct {
	text string
	err  error
	ext  string
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte, ext string) (string, error) {
	s.ext = ext
	return s.text, s.err
}

type stubFeedback struct {
	req feedback.Request
	err error
}

func (s *stubFeedback) Name() string { return "stub" }

func (s *stubFeedback) Generate(ctx context.Context, req feedback.Request) (*feedback.Result, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return feedback.PlainText("no deadline"), nil
	}
	return feedback.Structured("ok", []string{"add metrics"}, "Go Engineer"), nil
}

func newAnalyzer(t *testing.T, cfg Config, deps Deps) *Analyzer {
	t.Helper()

	if deps.Logger == nil {
		deps.Logger = zaptest.NewLogger(t)
	}

	a, err := New(cfg, deps)
	require.NoError(t, err)
	return a
}

func TestAnalyzeScenario(t *testing.T) {
	t.Parallel()

	ex := &stubExtractor{text: scenarioResume}
	fb := &stubFeedback{}
	a := newAnalyzer(t, Config{}, Deps{Extractor: ex, Feedback: fb})

	report, err := a.Analyze(context.Background(), Input{
		ResumeData:     []byte("ignored"),
		ResumeFilename: "cv.PDF",
		JobDescription: scenarioJob,
		CandidateName:  "  Jane Doe ",
	})
	require.NoError(t, err)

	assert.Equal(t, "pdf", ex.ext)
	assert.Equal(t, "pdf", report.ResumeFormat)
	assert.Equal(t, 33.7, report.Score)
	assert.Equal(t, 33, report.Progress)
	assert.InDelta(t, 0.26704531371660245, report.Match.Cosine, 1e-12)
	assert.InDelta(t, 0.5, report.Match.Overlap, 1e-12)
	assert.Equal(t, scenarioResume, report.ResumeExcerpt)
	assert.Equal(t, scenarioJob, report.JobExcerpt)
	assert.Equal(t, "Jane Doe", report.CandidateName)

	require.NotNil(t, report.Feedback)
	assert.Equal(t, "plain_text", string(report.Feedback.Kind))
	assert.Equal(t, "Jane Doe", fb.req.CandidateName)
	assert.Equal(t, scenarioResume, fb.req.ResumeText)
	assert.Equal(t, scenarioJob, fb.req.JobText)

	names := make([]string, 0, len(report.Steps))
	for _, s := range report.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"job_description", "extract", "score", "feedback"}, names)
}

func TestAnalyzeUsesResumeText(t *testing.T) {
	t.Parallel()

	ex := &stubExtractor{err: errors.New("must not be called")}
	a := newAnalyzer(t, Config{}, Deps{Extractor: ex})

	report, err := a.Analyze(context.Background(), Input{
		ResumeText:     scenarioJob,
		JobDescription: scenarioJob,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, 100, report.Progress)
	assert.Empty(t, ex.ext)
	assert.Nil(t, report.Feedback)
}

func TestAnalyzeFeedbackTimeout(t *testing.T) {
	t.Parallel()

	fb := &stubFeedback{}
	a := newAnalyzer(t, Config{FeedbackTimeout: 30 * time.Second}, Deps{Feedback: fb})

	report, err := a.Analyze(context.Background(), Input{ResumeText: scenarioResume, JobDescription: scenarioJob})
	require.NoError(t, err)
	require.NotNil(t, report.Feedback)
	assert.Equal(t, feedback.KindStructured, report.Feedback.Kind)
}

func TestAnalyzeFeedbackError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a := newAnalyzer(t, Config{}, Deps{Feedback: &stubFeedback{err: boom}})

	_, err := a.Analyze(context.Background(), Input{ResumeText: scenarioResume, JobDescription: scenarioJob})
	require.ErrorIs(t, err, boom)
	assert.True(t, strings.HasPrefix(err.Error(), "feedback:"))
}

func TestAnalyzeSampleJob(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample_job.txt")
	require.NoError(t, os.WriteFile(path, []byte(scenarioJob), 0o600))

	a := newAnalyzer(t, Config{SampleJobFile: path}, Deps{})

	report, err := a.Analyze(context.Background(), Input{ResumeText: scenarioResume, JobDescription: " \n "})
	require.NoError(t, err)
	assert.Equal(t, 33.7, report.Score)
	assert.Equal(t, scenarioJob, report.JobExcerpt)
}

func TestAnalyzeNoJobDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
	}{
		{name: "no sample configured"},
		{name: "sample missing", file: filepath.Join(t.TempDir(), "missing.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newAnalyzer(t, Config{SampleJobFile: tt.file}, Deps{})
			_, err := a.Analyze(context.Background(), Input{ResumeText: scenarioResume})
			require.ErrorIs(t, err, ErrNoJobDescription)
		})
	}
}

func TestAnalyzeExtractionErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		ex       *stubExtractor
		want     error
		format   string
		reason   string
		counting bool
	}{
		{
			name:  "no resume",
			input: Input{JobDescription: scenarioJob},
			ex:    &stubExtractor{},
			want:  ErrNoResume,
		},
		{
			name:     "blank text",
			input:    Input{ResumeData: []byte("x"), ResumeFilename: "cv.docx", JobDescription: scenarioJob},
			ex:       &stubExtractor{text: "   "},
			want:     extract.ErrNoExtractableText,
			format:   "docx",
			reason:   "no_text",
			counting: true,
		},
		{
			name:     "corrupt pdf",
			input:    Input{ResumeData: []byte("x"), ResumeFilename: "cv.pdf", JobDescription: scenarioJob},
			ex:       &stubExtractor{err: extract.ErrCorruptDocument},
			want:     extract.ErrCorruptDocument,
			format:   "pdf",
			reason:   "corrupt",
			counting: true,
		},
		{
			name:     "legacy doc",
			input:    Input{ResumeData: []byte("x"), ResumeFilename: "cv.doc", JobDescription: scenarioJob},
			ex:       &stubExtractor{err: extract.ErrUnsupportedFormat},
			want:     extract.ErrUnsupportedFormat,
			format:   "doc",
			reason:   "unsupported",
			counting: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before float64
			if tt.counting {
				before = testutil.ToFloat64(metrics.ExtractionErrorsTotal.WithLabelValues(tt.format, tt.reason))
			}

			a := newAnalyzer(t, Config{}, Deps{Extractor: tt.ex})
			report, err := a.Analyze(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, report)

			if tt.counting {
				after := testutil.ToFloat64(metrics.ExtractionErrorsTotal.WithLabelValues(tt.format, tt.reason))
				assert.Equal(t, before+1, after)
			}
		})
	}
}

func TestNewRejectsInvalidScoring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scoring matching.Options
	}{
		{name: "negative weight", scoring: matching.Options{CosineWeight: -1, OverlapWeight: 0.3, MaxVocabulary: 10}},
		{name: "all zero", scoring: matching.Options{}},
		{name: "zero vocabulary", scoring: matching.Options{CosineWeight: 0.7, OverlapWeight: 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(Config{Scoring: &tt.scoring}, Deps{})
			require.ErrorIs(t, err, matching.ErrConfiguration)
		})
	}
}

func TestNewKeepsExplicitScoring(t *testing.T) {
	t.Parallel()

	scoring := matching.Options{CosineWeight: 0, OverlapWeight: 1, MaxVocabulary: 10}
	a, err := New(Config{Scoring: &scoring}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, scoring, a.scoring)

	report, err := a.Analyze(context.Background(), Input{ResumeText: scenarioResume, JobDescription: scenarioJob})
	require.NoError(t, err)
	assert.Equal(t, 50.0, report.Match.Score)
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	a, err := New(Config{}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, matching.DefaultOptions(), a.scoring)
	assert.Equal(t, DefaultExcerptLength, a.cfg.ExcerptLength)
	assert.NotNil(t, a.deps.Extractor)
}

func TestExcerptLength(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, Config{ExcerptLength: 6}, Deps{})
	report, err := a.Analyze(context.Background(), Input{ResumeText: scenarioResume, JobDescription: scenarioJob})
	require.NoError(t, err)
	assert.Equal(t, "Experi...", report.ResumeExcerpt)
	assert.Equal(t, "Lookin...", report.JobExcerpt)
}
