package browserstack

// This file contains the base REST client for the BrowserStack App Automate
// API: authentication, transport and JSON decoding shared by the app, test
// suite, build, session and device endpoints.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api-cloud.browserstack.com/"

// ErrMissingCredentials is returned by NewClient when no access key is
// available.
var ErrMissingCredentials = errors.New("browserstack: missing access key")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("browserstack: request returned status %d: %s", e.StatusCode, e.Body)
}

// Client is the authenticated HTTP client for the App Automate API. The
// underlying transport retries transient network and 5xx failures; API-level
// rejections surface as *APIError and are never retried here.
type Client struct {
	baseURL  string
	user     string
	key      string
	http     *http.Client
	logger   zerolog.Logger
	timeFmts []string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		c.baseURL = url
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient builds a Client from a "user:key" access key, as carried in the
// BROWSER_STACK_KEY environment variable.
func NewClient(logger zerolog.Logger, accessKey string, opts ...Option) (*Client, error) {
	if accessKey == "" {
		return nil, ErrMissingCredentials
	}
	user, key, ok := strings.Cut(accessKey, ":")
	if !ok || user == "" || key == "" {
		return nil, errors.Errorf("browserstack: malformed access key, want \"user:key\"")
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.RetryWaitMin = 1 * time.Second
	retry.RetryWaitMax = 10 * time.Second
	retry.Logger = nil

	c := &Client{
		baseURL: defaultBaseURL,
		user:    user,
		key:     key,
		http:    retry.StandardClient(),
		logger:  logger,
		timeFmts: []string{
			"2006-01-02 15:04:05 MST",
			"2006-01-02 15:04:05 -0700",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.SetBasicAuth(c.user, c.key)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("API request")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s %s failed", method, path)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(data)}
	}

	c.logger.Debug().Str("path", path).Int("status", res.StatusCode).Msg("API response")
	return data, nil
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", path)
	}
	return nil
}

// getText issues a GET and returns the raw response body, for endpoints
// such as the junit report that return plain text or XML.
func (c *Client) getText(ctx context.Context, path string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// postJSON issues a POST with a JSON body and decodes the JSON response.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode request payload")
	}
	data, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", path)
	}
	return nil
}

// uploadFile issues a multipart POST of a local file, optionally tagging it
// with a custom id, and decodes the JSON response.
func (c *Client) uploadFile(ctx context.Context, path, file, customID string, out any) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "upload file does not exist %s", file)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(file))
	if err != nil {
		return errors.Wrap(err, "failed to create multipart field")
	}
	if _, err := io.Copy(part, f); err != nil {
		return errors.Wrap(err, "failed to read upload file")
	}
	if customID != "" {
		if err := mw.WriteField("custom_id", customID); err != nil {
			return errors.Wrap(err, "failed to write custom_id field")
		}
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize multipart body")
	}

	data, err := c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", path)
	}
	return nil
}

func (c *Client) delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, "")
}

// parseTime parses the API's timestamp format, trying the zone-name form
// first and the numeric-offset form second. Empty or unparseable values
// yield the zero time.
func (c *Client) parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range c.timeFmts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	c.logger.Debug().Str("value", value).Msg("Unparseable timestamp")
	return time.Time{}
}
