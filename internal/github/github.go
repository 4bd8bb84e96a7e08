package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

const (
	perPage    = 100
	maxRetries = 3
)

var (
	// ErrNotAFile is returned when a contents path resolves to something other
	// than a regular file (a directory, symlink or submodule).
	ErrNotAFile = errors.New("not a file")
	// ErrNoContent is returned when the contents API omits the file body.
	ErrNoContent = errors.New("no content returned")
)

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
	backoff time.Duration
}

// NewClient creates a new GitHub client. An empty apiURL selects the public
// API.
func NewClient(token, apiURL string) (*Client, error) {
	if token == "" {
		return nil, &AuthError{Message: "no GitHub token configured"}
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
		backoff: time.Second,
	}, nil
}

// do performs a request, retrying rate-limited and 5xx responses.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
	}

	var result []byte
	err := retryWithBackoff(ctx, maxRetries, c.backoff, func() error {
		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, rdr)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpCli.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if err := checkStatus(resp, data); err != nil {
			return err
		}
		result = data
		return nil
	})
	return result, err
}

func checkStatus(resp *http.Response, body []byte) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	msg := apiMessage(body)
	switch {
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return &retryableError{status: code, message: msg, retryAfter: retryAfter(resp.Header)}
	case code >= 500:
		return &retryableError{status: code, message: msg}
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return &AuthError{Status: code, Message: msg}
	default:
		return &APIError{Status: code, Message: msg}
	}
}

// apiMessage extracts the "message" field of a GitHub error body.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}

func retryAfter(h http.Header) time.Duration {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// PRFile represents a file changed in a pull request.
type PRFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ListPRFiles fetches every file changed in a pull request, following
// pagination.
func (c *Client) ListPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]PRFile, error) {
	var all []PRFile
	for page := 1; ; page++ {
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/files?per_page=%d&page=%d", owner, repo, prNumber, perPage, page)
		body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			if IsNotFound(err) {
				return nil, fmt.Errorf("PR #%d not found in %s/%s", prNumber, owner, repo)
			}
			return nil, fmt.Errorf("listing PR files: %w", err)
		}
		var files []PRFile
		if err := json.Unmarshal(body, &files); err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}
		all = append(all, files...)
		if len(files) < perPage {
			return all, nil
		}
	}
}

type contentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// GetFileContent fetches the raw bytes of a file at the given ref.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, filePath, ref string) ([]byte, error) {
	path := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s", owner, repo, escapePath(filePath), url.QueryEscape(ref))
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", filePath, err)
	}

	// Directories come back as a JSON array.
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, fmt.Errorf("%s: %w", filePath, ErrNotAFile)
	}
	var cr contentResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if cr.Type != "file" {
		return nil, fmt.Errorf("%s (type %s): %w", filePath, cr.Type, ErrNotAFile)
	}
	if cr.Content == "" || cr.Encoding != "base64" {
		return nil, fmt.Errorf("%s (encoding %q): %w", filePath, cr.Encoding, ErrNoContent)
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filePath, err)
	}
	return data, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// CreateComment posts a comment on a pull request's conversation.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, prNumber)
	if _, err := c.do(ctx, http.MethodPost, path, map[string]string{"body": body}); err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	return nil
}
