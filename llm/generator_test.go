package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/use-agent/sitemodel/models"
)

func testSite() *models.SiteModel {
	return &models.SiteModel{
		URL:   "https://acme.test",
		Title: "Acme",
		Screenshots: map[string]models.ScreenshotArtifact{
			models.ViewportDesktop: {Viewport: models.ViewportDesktop, EncodedImage: strings.Repeat("A", 4096), Width: 1920, Height: 3000},
		},
		Colors: models.ColorPalette{"rgb(10, 20, 30)"},
		Fonts:  models.FontInventory{"Inter, sans-serif"},
		Meta:   models.MetaInfo{"description": "Widgets"},
	}
}

func chatServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"content": content}}},
		"usage":   map[string]int{"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150},
	})
	return string(b)
}

func TestGenerate(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, http.StatusOK, chatReply("Here you go:\n```html\n<html><body>hi</body></html>\n```\nEnjoy"), &seen)
	defer srv.Close()

	res, err := NewClient(nil).Generate(context.Background(), testSite(), Params{
		APIKey:      "sk-test",
		Model:       "gpt-4o",
		BaseURL:     srv.URL + "/",
		MaxTokens:   1000,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.HTML != "<!DOCTYPE html>\n<html><body>hi</body></html>" {
		t.Errorf("HTML = %q", res.HTML)
	}
	if res.Usage.TotalTokens != 150 {
		t.Errorf("usage = %+v", res.Usage)
	}

	if seen.Model != "gpt-4o" || seen.MaxTokens != 1000 || len(seen.Messages) != 2 {
		t.Fatalf("request = %+v", seen)
	}
	user := seen.Messages[1].Content
	if !strings.Contains(user, "rgb(10, 20, 30)") {
		t.Error("prompt should carry the palette")
	}
	if strings.Contains(user, strings.Repeat("A", 100)) {
		t.Error("prompt must not carry encoded screenshots")
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, models.ErrCodeLLMAuthFailure},
		{"rate limited", http.StatusTooManyRequests, `{}`, models.ErrCodeLLMRateLimited},
		{"server error", http.StatusInternalServerError, `oops`, models.ErrCodeLLMFailure},
		{"no choices", http.StatusOK, `{"choices":[]}`, models.ErrCodeLLMFailure},
		{"empty reply", http.StatusOK, chatReply("   "), models.ErrCodeLLMFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, tt.body, nil)
			defer srv.Close()

			_, err := NewClient(nil).Generate(context.Background(), testSite(), Params{APIKey: "sk-test", BaseURL: srv.URL})
			var se *models.ScrapeError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *ScrapeError", err)
			}
			if se.Code != tt.code {
				t.Errorf("code = %q, want %q", se.Code, tt.code)
			}
		})
	}
}

func TestGenerateNilSite(t *testing.T) {
	if _, err := NewClient(nil).Generate(context.Background(), nil, Params{}); models.ErrorCode(err) != models.ErrCodeInvalidInput {
		t.Errorf("err = %v", err)
	}
}

func TestExtractHTML(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"fenced", "text\n```html\n<html></html>\n```", "<html></html>"},
		{"unterminated fence", "```html\n<html></html>", "<html></html>"},
		{"doctype prefix text", "Sure! <!doctype html><html></html> trailing", "<!doctype html><html></html>"},
		{"bare", "  <div>x</div>  ", "<div>x</div>"},
	}
	for _, tt := range tests {
		if got := extractHTML(tt.reply); got != tt.want {
			t.Errorf("%s: extractHTML = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFinishHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"<!DOCTYPE html><html></html>", "<!DOCTYPE html><html></html>"},
		{"<!doctype html><html></html>", "<!doctype html><html></html>"},
		{"<html></html>", "<!DOCTYPE html>\n<html></html>"},
	}
	for _, tt := range tests {
		if got := finishHTML(tt.in); got != tt.want {
			t.Errorf("finishHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	wrapped := finishHTML("<div>x</div>")
	if !strings.HasPrefix(wrapped, "<!DOCTYPE html>") || !strings.Contains(wrapped, "<body>\n<div>x</div>") {
		t.Errorf("fragment not wrapped: %q", wrapped)
	}
}
