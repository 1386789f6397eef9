package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kksliderdl/kk-downloader/internal/retry"
)

func TestClient_FetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "kk-downloader" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	resp, err := client.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("IsSuccess() = false for status %d", resp.StatusCode)
	}
	if err := resp.StatusError(); err != nil {
		t.Errorf("StatusError() = %v, want nil", err)
	}

	text, err := resp.Text()
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if text != "hello" {
		t.Errorf("Text() = %q", text)
	}
}

func TestClient_NonSuccessStatusStillYieldsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	resp, err := client.Fetch(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want response with status", err)
	}
	defer resp.Body.Close()

	if resp.IsSuccess() {
		t.Error("IsSuccess() = true for 404")
	}

	var statusErr *StatusError
	if !errors.As(resp.StatusError(), &statusErr) {
		t.Fatalf("StatusError() = %v, want *StatusError", resp.StatusError())
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
	if statusErr.URL != srv.URL+"/missing" {
		t.Errorf("URL = %q", statusErr.URL)
	}
}

func TestClient_TransportError(t *testing.T) {
	client := NewClient(time.Second)
	// Closed server: connection refused.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := client.Fetch(context.Background(), url); err == nil {
		t.Error("Fetch() to closed server returned nil error")
	}
}

func TestFetcher_RetriesStatusFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	policy, err := retry.NewPolicy(5)
	if err != nil {
		t.Fatal(err)
	}
	fetcher := NewFetcher(NewClient(5*time.Second), policy)

	doc, err := fetcher.Document(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if doc != "<html>ok</html>" {
		t.Errorf("Document() = %q", doc)
	}
	if calls != 3 {
		t.Errorf("server hit %d times, want 3", calls)
	}
}

func TestFetcher_ExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	policy, err := retry.NewPolicy(3)
	if err != nil {
		t.Fatal(err)
	}
	fetcher := NewFetcher(NewClient(5*time.Second), policy)

	_, err = fetcher.Document(context.Background(), srv.URL)

	var exhausted *retry.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Document() error = %v, want ExhaustedError", err)
	}
	if calls != 3 {
		t.Errorf("server hit %d times, want 3", calls)
	}

	var statusErr *StatusError
	if !errors.As(exhausted.Last(), &statusErr) {
		t.Errorf("last attempt error = %v, want *StatusError", exhausted.Last())
	}
}
