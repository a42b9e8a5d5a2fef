package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/sitemodel/models"
)

func main() {
	apiURL := os.Getenv("SITEMODEL_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SITEMODEL_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SITEMODEL_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"sitemodel",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	captureSiteTool := mcp.NewTool("capture_site",
		mcp.WithDescription("Render a web page in a headless browser and describe its design: title, headings, navigation, color palette, fonts, UI components, layout sections and a Markdown summary of the content."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to capture"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'summary' (default, readable digest) or 'json' (the full site model without screenshots)"),
			mcp.Enum("summary", "json"),
		),
		mcp.WithBoolean("remove_overlays",
			mcp.Description("Dismiss cookie banners and modal overlays before capturing"),
		),
		mcp.WithBoolean("block_ads",
			mcp.Description("Block requests to known ad and tracking domains"),
		),
	)
	s.AddTool(captureSiteTool, handleCaptureSite(apiURL, apiKey))

	batchCaptureTool := mcp.NewTool("batch_capture",
		mcp.WithDescription("Capture several web pages in parallel and return a design digest for each."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to capture (max 20)"),
		),
	)
	s.AddTool(batchCaptureTool, handleBatchCapture(apiURL, apiKey))

	cloneSiteTool := mcp.NewTool("clone_site",
		mcp.WithDescription("Capture a web page and generate a standalone HTML document that reproduces its design using an LLM."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to clone"),
		),
		mcp.WithString("llm_api_key",
			mcp.Description("API key for the LLM service (OpenAI-compatible). Optional when the server has a default key."),
		),
		mcp.WithString("llm_model",
			mcp.Description("LLM model to use (default: server setting)"),
		),
		mcp.WithString("llm_base_url",
			mcp.Description("Base URL for the LLM API. Supports any OpenAI-compatible API."),
		),
	)
	s.AddTool(cloneSiteTool, handleCloneSite(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string, every time.Duration) ([]byte, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			req.Header.Set("X-API-Key", apiKey)

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != models.BatchProcessing {
				return body, nil
			}
		}
	}
}

func handleCaptureSite(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 330 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		noShots := false
		payload := models.ScrapeRequest{
			URL:                url,
			RemoveOverlays:     request.GetBool("remove_overlays", false),
			BlockAds:           request.GetBool("block_ads", false),
			IncludeScreenshots: &noShots,
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("capture request failed: %v", err)), nil
		}

		var resp models.ScrapeResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success || resp.Site == nil {
			return mcp.NewToolResultError(errorText("capture failed", resp.Error)), nil
		}

		if request.GetString("format", "summary") == "json" {
			pretty, err := json.MarshalIndent(resp.Site, "", "  ")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to encode site model: %v", err)), nil
			}
			return mcp.NewToolResultText(string(pretty)), nil
		}
		return mcp.NewToolResultText(summarize(resp.Site)), nil
	}
}

func handleBatchCapture(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/scrape", models.BatchRequest{URLs: urls})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var batchResp models.BatchResponse
		if err := json.Unmarshal(respBody, &batchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}
		if batchResp.ID == "" {
			return mcp.NewToolResultError("batch job creation failed"), nil
		}

		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/batch/"+batchResp.ID, 2*time.Second)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var status models.BatchStatusResponse
		if err := json.Unmarshal(resultBody, &status); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch status: %v", err)), nil
		}
		return mcp.NewToolResultText(summarizeBatch(status, urls)), nil
	}
}

func handleCloneSite(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		noShots := false
		payload := models.CloneRequest{
			ScrapeRequest: models.ScrapeRequest{URL: url, IncludeScreenshots: &noShots},
			LLMAPIKey:     request.GetString("llm_api_key", ""),
			LLMModel:      request.GetString("llm_model", ""),
			LLMBaseURL:    request.GetString("llm_base_url", ""),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/clone", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("clone request failed: %v", err)), nil
		}

		var resp models.CloneResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse clone response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errorText("clone failed", resp.Error)), nil
		}

		result := resp.HTML
		if resp.LLMUsage != nil {
			result += fmt.Sprintf("\n\n<!-- tokens: %d prompt, %d completion -->",
				resp.LLMUsage.PromptTokens, resp.LLMUsage.CompletionTokens)
		}
		return mcp.NewToolResultText(result), nil
	}
}
