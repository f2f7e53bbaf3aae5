package genai

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestEditPortraitReturnsFirstInlineImage(t *testing.T) {
	source := []byte{0x89, 0x50, 0x4e, 0x47}
	result := []byte("aged-portrait-bytes")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Fatalf("unexpected api key: %q", got)
		}
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash-image-preview:generateContent") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload geminiGenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		parts := payload.Contents[0].Parts
		if len(parts) != 2 {
			t.Fatalf("unexpected parts length: %d", len(parts))
		}
		if !strings.Contains(parts[0].Text, "year 2040") {
			t.Fatalf("instruction mismatch: %s", parts[0].Text)
		}
		if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/png" {
			t.Fatalf("inline data mismatch: %+v", parts[1].InlineData)
		}
		if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString(source) {
			t.Fatal("source image bytes not carried in payload")
		}

		resp := geminiGenerateContentResponse{Candidates: []geminiCandidate{{
			Content: geminiContent{Parts: []geminiPart{
				{Text: "here is the aged portrait"},
				{InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(result)}},
			}},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	asset, err := client.EditPortrait(context.Background(), "show the person in the year 2040", source, "image/png")
	if err != nil {
		t.Fatalf("EditPortrait error: %v", err)
	}
	if asset == nil || string(asset.Data) != string(result) {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if asset.MIME != "image/png" {
		t.Fatalf("unexpected mime: %s", asset.MIME)
	}
}

func TestEditPortraitImagelessResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := geminiGenerateContentResponse{Candidates: []geminiCandidate{{
			Content: geminiContent{Parts: []geminiPart{{Text: "no image for you"}}},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	asset, err := client.EditPortrait(context.Background(), "instr", []byte{0x01}, "image/jpeg")
	if err != nil {
		t.Fatalf("EditPortrait error: %v", err)
	}
	if asset != nil {
		t.Fatalf("expected nil asset for imageless response, got %+v", asset)
	}
}

func TestEditPortraitSurfacesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exhausted"},
		})
	}))
	defer ts.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	_, err = client.EditPortrait(context.Background(), "instr", []byte{0x01}, "image/png")
	if err == nil {
		t.Fatal("expected error for API failure")
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("error should carry the API message: %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error when api key missing")
	}
}
