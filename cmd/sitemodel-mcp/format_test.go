package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/sitemodel/models"
)

func TestSummarize(t *testing.T) {
	site := &models.SiteModel{
		CaptureID:   "c1",
		URL:         "https://acme.test",
		Title:       "Acme",
		Fingerprint: "00000000000000ff",
		Screenshots: map[string]models.ScreenshotArtifact{
			models.ViewportMobile:  {Width: 375, Height: 2000},
			models.ViewportDesktop: {Width: 1920, Height: 3000},
		},
		Colors: models.ColorPalette{"rgb(10, 20, 30)"},
		Structure: models.StructuralTree{
			Headings: []models.Heading{{Level: 1, Text: "Welcome"}, {Level: 2, Text: "Pricing"}, {Level: 0, Text: "odd"}},
		},
		Components: models.ComponentInventory{Buttons: make([]models.Component, 2)},
		Content:    models.ContentSummary{Markdown: "# Welcome"},
		Brand: models.BrandInfo{
			Logo:            models.Logo{Kind: models.LogoText, Text: "Acme"},
			BackgroundColor: "rgb(0, 0, 0)",
			TextColor:       "rgb(255, 255, 255)",
			IsDark:          true,
		},
		Responsive: []models.BreakpointState{{Width: 320, PageWidth: 400, PageHeight: 900, Overflow: true}},
	}

	out := summarize(site)
	for _, want := range []string{
		"Title: Acme",
		"Screenshots: desktop 1920x3000 mobile 375x2000",
		"Colors: rgb(10, 20, 30)",
		"- Welcome\n  - Pricing\n- odd",
		"2 buttons",
		"0 modals",
		`Logo: "Acme"`,
		"dark true, search false",
		"At 320px: 400x900, nav visible false, overflow true",
		"---\n# Welcome",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Fonts:") {
		t.Error("empty lists should be omitted")
	}
}

func TestSummarizeBatch(t *testing.T) {
	out := summarizeBatch(models.BatchStatusResponse{
		ID: "b1", Status: models.BatchPartial, Completed: 2, Failed: 1, Total: 2,
		Results: []*models.ScrapeResponse{
			{Success: true, Site: &models.SiteModel{Title: "A"}},
			{Error: &models.ErrorDetail{Code: models.ErrCodeCapture, Message: "boom", Stage: "capture"}},
		},
	}, []string{"https://a.test", "https://b.test"})

	if !strings.Contains(out, "--- [1] https://a.test ---") {
		t.Errorf("missing success block:\n%s", out)
	}
	if !strings.Contains(out, "[2] https://b.test FAILED: [CAPTURE_FAILED at capture] boom") {
		t.Errorf("missing failure block:\n%s", out)
	}
}

func TestPollJobCompletion(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if polls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"status":"processing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"completed","total":1}`))
	}))
	defer srv.Close()

	body, err := pollJobCompletion(context.Background(), srv.Client(), srv.URL, "k", "/api/v1/batch/x", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "completed") || polls.Load() != 3 {
		t.Errorf("body = %s after %d polls", body, polls.Load())
	}
}
