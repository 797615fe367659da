package update

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	c := NewChecker("owner", "repo")
	if c.endpoint != "https://api.github.com/repos/owner/repo/releases/latest" {
		t.Errorf("endpoint = %q", c.endpoint)
	}
	if c.httpClient == nil {
		t.Error("httpClient should not be nil")
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
}

func TestNewCheckerWithOptions(t *testing.T) {
	customClient := &http.Client{Timeout: 10 * time.Second}
	c := NewChecker("owner", "repo", WithHTTPClient(customClient), WithTimeout(2*time.Second))

	if c.httpClient != customClient {
		t.Error("custom HTTP client not applied")
	}
	if customClient.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", customClient.Timeout)
	}
}

func TestNewRegistryChecker(t *testing.T) {
	c := NewRegistryChecker("@scope/pkg")
	if c.endpoint != "https://registry.npmjs.org/@scope%2Fpkg/latest" {
		t.Errorf("endpoint = %q", c.endpoint)
	}
}

func TestNewSource(t *testing.T) {
	if c := NewSource("GitHub", "pkg", "o", "r").(*Checker); c.endpoint != "https://api.github.com/repos/o/r/releases/latest" {
		t.Errorf("github source endpoint = %q", c.endpoint)
	}
	if c := NewSource("npm", "pkg", "o", "r").(*Checker); c.endpoint != "https://registry.npmjs.org/pkg/latest" {
		t.Errorf("npm source endpoint = %q", c.endpoint)
	}
	if c := NewSource("", "pkg", "o", "r").(*Checker); c.endpoint != "https://registry.npmjs.org/pkg/latest" {
		t.Errorf("default source endpoint = %q", c.endpoint)
	}
}

func TestCheckerLatestGitHub(t *testing.T) {
	release := ReleaseInfo{
		TagName: "v2.0.0",
		HTMLURL: "https://github.com/owner/repo/releases/tag/v2.0.0",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/releases/latest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(release)
	}))
	defer server.Close()

	c := NewChecker("owner", "repo")
	// Override the URL by using a custom transport
	c.httpClient = &http.Client{
		Transport: &rewriteTransport{
			base:      http.DefaultTransport,
			targetURL: server.URL,
		},
	}

	got, err := c.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got != "2.0.0" {
		t.Errorf("Latest() = %q, want %q", got, "2.0.0")
	}
}

func TestCheckerLatestRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"hail-hydra-cc","version":"1.4.2","dist":{}}`))
	}))
	defer server.Close()

	c := NewRegistryChecker("hail-hydra-cc", WithEndpoint(server.URL+"/hail-hydra-cc/latest"))
	got, err := c.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got != "1.4.2" {
		t.Errorf("Latest() = %q, want %q", got, "1.4.2")
	}
}

func TestCheckerLatestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "forbidden", status: http.StatusForbidden, want: ErrRateLimited},
		{name: "too many requests", status: http.StatusTooManyRequests, want: ErrRateLimited},
		{name: "server error", status: http.StatusInternalServerError, want: ErrNetworkFailure},
		{name: "not found", status: http.StatusNotFound, want: ErrNetworkFailure},
		{name: "empty version", status: http.StatusOK, body: `{"version":""}`, want: ErrInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewRegistryChecker("pkg", WithEndpoint(server.URL))
			_, err := c.Latest(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Latest() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckerLatestMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer server.Close()

	c := NewRegistryChecker("pkg", WithEndpoint(server.URL))
	if _, err := c.Latest(context.Background()); err == nil {
		t.Fatal("Latest() should fail on a non-JSON body")
	}
}

func TestCheckerLatestUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewRegistryChecker("pkg", WithEndpoint(url))
	_, err := c.Latest(context.Background())
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("Latest() error = %v, want ErrNetworkFailure", err)
	}
}

// rewriteTransport rewrites request URLs for testing.
type rewriteTransport struct {
	base      http.RoundTripper
	targetURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.targetURL[7:] // strip "http://"
	return t.base.RoundTrip(req)
}
