package feedback

import (
	_ "embed"
	"strings"
)

const (
	maxPromptInputRunes = 3000
	unknownCandidate    = "N/A"
)

const systemPrompt = "You are a helpful, concise career coach specialized in tech resumes. " +
	"Given the candidate's resume text and a job description, produce:\n" +
	"1) Short summary (1-3 lines) of resume strengths for this job.\n" +
	"2) Top 5 specific suggestions to improve the resume for this job (bullet list).\n" +
	"3) A short rewritten 1-2 line resume headline suggestion.\n" +
	"Return JSON with keys: summary, suggestions (list), headline."

//go:embed prompt.md
var promptTemplate string

func buildPrompt(req Request) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume text:\n{{RESUME}}\n\nJob description:\n{{JOB}}\n\nCandidate name: {{CANDIDATE}}"
	}

	candidate := strings.TrimSpace(req.CandidateName)
	if candidate == "" {
		candidate = unknownCandidate
	}

	return strings.NewReplacer(
		"{{RESUME}}", clip(req.ResumeText, maxPromptInputRunes),
		"{{JOB}}", clip(req.JobText, maxPromptInputRunes),
		"{{CANDIDATE}}", candidate,
	).Replace(template)
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
