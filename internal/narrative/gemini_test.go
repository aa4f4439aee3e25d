package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nutriplan/internal/model"
)

func TestGeminiClientGenerate(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && len(payload.Contents) > 0 {
			gotPrompt = payload.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"**Nutritional Analysis**\n"},{"text":"1. Low calories."}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", "").WithBaseURL(srv.URL)
	out, err := client.Generate(context.Background(), Input{
		Summary:        &model.CalculationResponse{RdaProfileName: "Diabetic", FinalSummary: "summary"},
		CoMorbidities:  "Type 2 diabetes",
		DietPreference: "Vegetarian",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if out != "**Nutritional Analysis**\n1. Low calories." {
		t.Errorf("output = %q", out)
	}
	if gotPath != "/v1beta/models/"+DefaultGeminiModel+":generateContent" {
		t.Errorf("path = %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	for _, want := range []string{"Type 2 diabetes", "Vegetarian", `"rda_profile_name":"Diabetic"`} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGeminiClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	in := Input{Summary: &model.CalculationResponse{}}

	if _, err := NewGeminiClient("", "").Generate(context.Background(), in); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing api key: expected ErrNotConfigured, got %v", err)
	}

	_, err := NewGeminiClient("k", "m").WithBaseURL(srv.URL).Generate(context.Background(), in)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected 429 error, got %v", err)
	}
}
