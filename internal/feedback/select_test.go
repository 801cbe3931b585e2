package feedback

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestSelectWithoutKeysUsesRules(t *testing.T) {
	t.Setenv(openAIKeyEnv, "")
	t.Setenv(geminiKeyEnv, "")

	for _, provider := range []string{"", "auto", "openai", "gemini", "rules", "  OpenAI "} {
		gen, err := Select(&Config{Provider: provider}, zap.NewNop())
		if err != nil {
			t.Fatalf("provider %q: unexpected error: %v", provider, err)
		}
		if gen.Name() != ProviderRules {
			t.Fatalf("provider %q: expected rules, got %s", provider, gen.Name())
		}
	}

	gen, err := Select(nil, nil)
	if err != nil || gen.Name() != ProviderRules {
		t.Fatalf("expected rules for nil config, got %v, %v", gen, err)
	}

	res, err := gen.Generate(context.Background(), Request{ResumeText: "r", JobText: "j"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary != rulesSummary {
		t.Fatalf("unexpected summary %q", res.Summary)
	}
}

func TestSelectUnknownProvider(t *testing.T) {
	if _, err := Select(&Config{Provider: "claude"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestSelectAutoPrefersOpenAI(t *testing.T) {
	t.Setenv(openAIKeyEnv, "sk-test")
	t.Setenv(geminiKeyEnv, "gm-test")

	gen, err := Select(&Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Name() != ProviderOpenAI {
		t.Fatalf("expected openai, got %s", gen.Name())
	}

	gen, err = Select(&Config{Provider: "gemini"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Name() != ProviderGemini {
		t.Fatalf("expected gemini, got %s", gen.Name())
	}
}

func TestSelectMissingKeyFileFails(t *testing.T) {
	cfg := &Config{
		Provider: "openai",
		OpenAI:   &OpenAISettings{APIKeyFile: filepath.Join(t.TempDir(), "missing")},
	}
	if _, err := Select(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unreadable key file")
	}
}

func TestSelectedOpenAIFallsBackOnFailure(t *testing.T) {
	t.Setenv(openAIKeyEnv, "")

	server := newChatServer(t, http.StatusBadGateway, "", nil)
	defer server.Close()

	gen, err := Select(&Config{
		Provider: "openai",
		OpenAI:   &OpenAISettings{APIKey: "test-key", BaseURL: server.URL},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := gen.Generate(context.Background(), Request{ResumeText: "python github", JobText: "python"})
	if err != nil {
		t.Fatalf("expected fallback instead of error, got %v", err)
	}
	if res.Source != ProviderRules {
		t.Fatalf("expected rules result, got %+v", res)
	}
	if res.Summary != fallbackSummary {
		t.Fatalf("fallback result must not claim a missing key, got %q", res.Summary)
	}
}
