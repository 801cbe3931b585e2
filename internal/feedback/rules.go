package feedback

import (
	"context"
	"strings"
)

const (
	rulesName           = "rules"
	rulesSummary        = "Basic rule-based feedback (no API key detected)."
	fallbackSummary     = "Basic rule-based feedback (remote feedback unavailable)."
	rulesHeadline       = "Aspiring AI/Software Engineer eager to apply technical and analytical skills."
	rulesDefault        = "Resume seems relevant, add measurable results for stronger impact."
	minDetailedWordSize = 200
)

type rule struct {
	applies    func(jd, resume string) bool
	suggestion string
}

var rules = []rule{
	{
		applies:    missingKeyword("python", "python"),
		suggestion: "Add 'Python' prominently if you have experience with it.",
	},
	{
		applies:    missingKeyword("machine learning", "machine"),
		suggestion: "Mention machine learning projects or coursework.",
	},
	{
		applies:    missingKeyword("sql", "sql"),
		suggestion: "Include experience with SQL databases.",
	},
	{
		applies: func(_, resume string) bool {
			return len(strings.Fields(resume)) < minDetailedWordSize
		},
		suggestion: "Add more detail about your projects and achievements.",
	},
	{
		applies: func(_, resume string) bool {
			return !strings.Contains(resume, "github")
		},
		suggestion: "Add your GitHub link to highlight your coding work.",
	},
}

// missingKeyword matches when the job mentions want and the resume lacks have.
func missingKeyword(want, have string) func(jd, resume string) bool {
	return func(jd, resume string) bool {
		return strings.Contains(jd, want) && !strings.Contains(resume, have)
	}
}

// RuleBased is the local deterministic feedback engine. It never fails.
type RuleBased struct {
	summary string
}

func NewRuleBased() *RuleBased { return &RuleBased{summary: rulesSummary} }

// NewFallbackRules returns the engine that stands in for a failed remote
// provider. Only its summary differs from NewRuleBased.
func NewFallbackRules() *RuleBased { return &RuleBased{summary: fallbackSummary} }

func (*RuleBased) Name() string { return rulesName }

func (r *RuleBased) Generate(_ context.Context, req Request) (*Result, error) {
	jd := strings.ToLower(req.JobText)
	resume := strings.ToLower(req.ResumeText)

	suggestions := make([]string, 0, len(rules))
	for _, rl := range rules {
		if rl.applies(jd, resume) {
			suggestions = append(suggestions, rl.suggestion)
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, rulesDefault)
	}

	res := Structured(r.summary, suggestions, rulesHeadline)
	res.Source = r.Name()
	return res, nil
}
