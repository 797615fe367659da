package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultRepoOwner = "AR6420"
	DefaultRepoName  = "Hail_Hydra"
	DefaultPackage   = "hail-hydra-cc"
	DefaultTimeout   = 10 * time.Second

	githubAPI   = "https://api.github.com"
	npmRegistry = "https://registry.npmjs.org"
	userAgent   = "hydra-update-checker"
)

// Error variables for specific error conditions.
var (
	ErrNetworkFailure = fmt.Errorf("network request failed")
	ErrRateLimited    = fmt.Errorf("rate limited by update source")
	ErrInvalidVersion = fmt.Errorf("invalid version format")
)

// Source reports the newest published version of Hydra.
type Source interface {
	Latest(ctx context.Context) (string, error)
}

// ReleaseInfo is the subset of a GitHub release Hydra reads.
type ReleaseInfo struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
	Draft      bool   `json:"draft"`
}

// packageInfo is the subset of an npm registry "latest" document Hydra reads.
type packageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Checker fetches the latest version from one HTTP endpoint. Build it with
// NewChecker (GitHub releases) or NewRegistryChecker (npm registry).
type Checker struct {
	endpoint   string
	accept     string
	decode     func(io.Reader) (string, error)
	httpClient *http.Client
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithHTTPClient sets a custom HTTP client for the checker.
func WithHTTPClient(client *http.Client) CheckerOption {
	return func(c *Checker) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		c.httpClient.Timeout = timeout
	}
}

// WithEndpoint replaces the URL the checker queries.
func WithEndpoint(endpoint string) CheckerOption {
	return func(c *Checker) {
		c.endpoint = endpoint
	}
}

// NewChecker creates a checker for the latest GitHub release of owner/repo.
func NewChecker(owner, repo string, opts ...CheckerOption) *Checker {
	c := &Checker{
		endpoint: fmt.Sprintf("%s/repos/%s/%s/releases/latest", githubAPI, owner, repo),
		accept:   "application/vnd.github.v3+json",
		decode:   decodeRelease,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRegistryChecker creates a checker for the "latest" dist-tag of an npm package.
func NewRegistryChecker(pkg string, opts ...CheckerOption) *Checker {
	c := &Checker{
		endpoint: fmt.Sprintf("%s/%s/latest", npmRegistry, url.PathEscape(pkg)),
		accept:   "application/json",
		decode:   decodePackage,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSource picks a Source by name: "github" selects releases, anything else
// the npm registry.
func NewSource(kind, pkg, owner, repo string, opts ...CheckerOption) Source {
	if strings.EqualFold(strings.TrimSpace(kind), "github") {
		return NewChecker(owner, repo, opts...)
	}
	return NewRegistryChecker(pkg, opts...)
}

// Latest queries the endpoint and returns the published version without a
// leading "v".
func (c *Checker) Latest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", c.accept)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrNetworkFailure, resp.StatusCode)
	}

	version, err := c.decode(resp.Body)
	if err != nil {
		return "", err
	}
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if version == "" {
		return "", fmt.Errorf("%w: empty version", ErrInvalidVersion)
	}
	return version, nil
}

func decodeRelease(r io.Reader) (string, error) {
	var release ReleaseInfo
	if err := json.NewDecoder(r).Decode(&release); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return release.TagName, nil
}

func decodePackage(r io.Reader) (string, error) {
	var info packageInfo
	if err := json.NewDecoder(r).Decode(&info); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return info.Version, nil
}
