package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateStreamsFragments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"response":"Hello","done":false}`)
		fmt.Fprintln(w, `{"response":" world","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ch, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hi", Model: "test"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var text string
	var done bool
	for frag := range ch {
		if frag.Err != nil {
			t.Fatalf("stream error: %v", frag.Err)
		}
		if frag.Done {
			done = true
			continue
		}
		text += frag.Content
	}
	if text != "Hello world" {
		t.Fatalf("expected streamed text %q, got %q", "Hello world", text)
	}
	if !done {
		t.Fatal("stream ended without a done marker")
	}
}

func TestGenerateCanceledMidStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"first","done":false}`)
		w.(http.Flusher).Flush()
		// Hold the response open; only cancellation ends this stream.
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := client.Generate(ctx, GenerateRequest{Prompt: "hi", Model: "test"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	frag := <-ch
	if frag.Content != "first" {
		t.Fatalf("expected first fragment, got %+v", frag)
	}
	cancel()

	// The stream goroutine must shut down and close the channel even if the
	// consumer never reads another fragment.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("fragment channel not closed after cancel")
		}
	}
}

func TestGenerateRuntimeDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hi", Model: "test"})
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hi", Model: "missing"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", apiErr.StatusCode)
	}
	if errors.Is(err, ErrUnreachable) {
		t.Fatal("an API error must not be classified as unreachable")
	}
}

func TestListModels(t *testing.T) {
	modified := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{"models":[{"name":"llama3:8b","size":4920000000,"modified_at":%q}]}`,
			modified.Format(time.RFC3339))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected one model, got %d", len(models))
	}
	m := models[0]
	if m.Name != "llama3:8b" || m.Size != 4920000000 || !m.ModifiedAt.Equal(modified) {
		t.Fatalf("unexpected model: %+v", m)
	}
}

func TestPingDistinguishesDownFromError(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	if err := NewClient(down.URL).Ping(context.Background()); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	err := NewClient(failing.URL).Ping(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}
