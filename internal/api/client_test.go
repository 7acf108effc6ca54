package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestBearerTokenInjection(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, zap.NewNop())

	if apiErr := client.Get(context.Background(), "/ping", nil); apiErr != nil {
		t.Fatalf("Get() error = %v", apiErr)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none before SetToken", gotAuth)
	}

	client.SetToken("tok-123")
	if apiErr := client.Get(context.Background(), "/ping", nil); apiErr != nil {
		t.Fatalf("Get() error = %v", apiErr)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantCode   string
	}{
		{
			name:       "detail from payload",
			status:     http.StatusBadRequest,
			body:       `{"detail":"Email already registered","code":"duplicate"}`,
			wantDetail: "Email already registered",
			wantCode:   "duplicate",
		},
		{
			name:       "non-JSON body falls back to status text",
			status:     http.StatusBadGateway,
			body:       "<html>bad gateway</html>",
			wantDetail: "Bad Gateway",
		},
		{
			name:       "empty error body falls back to status text",
			status:     http.StatusInternalServerError,
			body:       "",
			wantDetail: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			client := New(server.URL, zap.NewNop())
			apiErr := client.Get(context.Background(), "/x", nil)
			if apiErr == nil {
				t.Fatal("expected error")
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", apiErr.Code, tt.wantCode)
			}
		})
	}
}

func TestNetworkFailureIsStatusZero(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // refuse all connections

	client := New(server.URL, zap.NewNop())
	apiErr := client.Get(context.Background(), "/x", nil)
	if apiErr == nil {
		t.Fatal("expected error")
	}
	if apiErr.Status != 0 {
		t.Errorf("Status = %d, want 0", apiErr.Status)
	}
	if apiErr.Detail == "" {
		t.Error("expected a detail message")
	}
	if !apiErr.Temporary() {
		t.Error("network failure should be temporary")
	}
}

func TestEmptyResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{"no content", http.StatusNoContent},
		{"zero-length ok", http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(server.Close)

			client := New(server.URL, zap.NewNop())
			var out map[string]any
			if apiErr := client.Get(context.Background(), "/x", &out); apiErr != nil {
				t.Fatalf("Get() error = %v", apiErr)
			}
		})
	}
}

func TestUnauthorizedCallbackOncePerRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, zap.NewNop())
	calls := 0
	client.SetUnauthorizedCallback(func() { calls++ })

	apiErr := client.Get(context.Background(), "/x", nil)
	if apiErr == nil || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", apiErr)
	}
	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}

	// A second 401 triggers it again: once per request, not once ever.
	_ = client.Get(context.Background(), "/x", nil)
	if calls != 2 {
		t.Errorf("callback calls = %d, want 2", calls)
	}
}

func TestDecodesResponseBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"title":"buy milk"}`))
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, zap.NewNop())
	var out struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	if apiErr := client.Post(context.Background(), "/x", map[string]string{"title": "buy milk"}, &out); apiErr != nil {
		t.Fatalf("Post() error = %v", apiErr)
	}
	if out.ID != 7 || out.Title != "buy milk" {
		t.Errorf("decoded = %+v", out)
	}
}
