package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/topoviz/pkg/cache"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test", time.Hour, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("NewClient(nil) should fall back to a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, nil)
	client.http = server.Client()

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var override, custom string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		override = r.Header.Get("X-Override")
		custom = r.Header.Get("X-Custom")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, map[string]string{"X-Override": "default"})
	client.http = server.Client()

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL,
		map[string]string{"X-Override": "overridden", "X-Custom": "custom"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if override != "overridden" {
		t.Errorf("override header = %q, want %q", override, "overridden")
	}
	if custom != "custom" {
		t.Errorf("custom header = %q, want %q", custom, "custom")
	}
}

func TestClientGetText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text response"))
	}))
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, nil)
	client.http = server.Client()

	text, err := client.GetText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if text != "plain text response" {
		t.Errorf("GetText() = %q, want %q", text, "plain text response")
	}
}

func TestClientGetStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		code int
		want error
	}{
		{"404", http.StatusNotFound, ErrNotFound},
		{"500", http.StatusInternalServerError, ErrNetwork},
		{"400", http.StatusBadRequest, ErrRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			client := NewClient(nil, "test", time.Hour, nil)
			client.http = server.Client()

			var resp map[string]string
			err := client.Get(context.Background(), server.URL, &resp)
			if !errors.Is(err, tt.want) {
				t.Errorf("Get() error = %v, want %v", err, tt.want)
			}
			if calls != 1 {
				t.Errorf("server saw %d requests, want exactly 1", calls)
			}
		})
	}
}

func TestClientGetUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(nil, "test", time.Hour, nil)
	var resp map[string]string
	if err := client.Get(context.Background(), url, &resp); !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test", time.Hour, nil)

	type testData struct {
		Value string `json:"value"`
	}
	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			v.Value = "fetched"
			return nil
		}
	}

	var first testData
	if err := client.Cached(context.Background(), "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second testData
	if err := client.Cached(context.Background(), "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q, want %q", second.Value, "fetched")
	}

	var third testData
	if err := client.Cached(context.Background(), "key", true, &third, fetch(&third)); err != nil {
		t.Fatalf("Cached(refresh) error: %v", err)
	}
	if fetchCount != 2 {
		t.Errorf("refresh should bypass cache, fetch count = %d, want 2", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test", time.Hour, nil)

	var value string
	fetchCount := 0
	err := client.Cached(context.Background(), "error-key", false, &value, func() error {
		fetchCount++
		return ErrNetwork
	})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Cached() error = %v, want ErrNetwork", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1 (no retries)", fetchCount)
	}
	if _, ok, _ := c.Get(context.Background(), "http:test:error-key"); ok {
		t.Error("failed fetch should not be cached")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		wantType error
	}{
		{"200 OK", 200, nil},
		{"404 Not Found", 404, ErrNotFound},
		{"500 Internal Server Error", 500, ErrNetwork},
		{"502 Bad Gateway", 502, ErrNetwork},
		{"503 Service Unavailable", 503, ErrNetwork},
		{"400 Bad Request", 400, ErrRequest},
		{"403 Forbidden", 403, ErrRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if tt.wantType == nil {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
		})
	}
}

func TestURLEncode(t *testing.T) {
	if got := URLEncode("igp_node/r1 x"); got != "igp_node%2Fr1+x" {
		t.Errorf("URLEncode() = %q", got)
	}
}
