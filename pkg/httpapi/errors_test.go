package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusBadRequest, CodeFieldRequired, "title", "Title is required")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.Error.Code != CodeFieldRequired {
		t.Errorf("Expected code %q, got %q", CodeFieldRequired, body.Error.Code)
	}
	if body.Error.Field != "title" {
		t.Errorf("Expected field %q, got %q", "title", body.Error.Field)
	}
	if body.Error.Message != "Title is required" {
		t.Errorf("Expected message %q, got %q", "Title is required", body.Error.Message)
	}
}

func TestWriteErrorOmitsEmptyField(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusTooManyRequests, CodeRateLimit, "", "Too many requests. Please try again later.")

	var raw map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if _, present := raw["error"]["field"]; present {
		t.Error("Expected empty field to be omitted from the envelope")
	}
}
