package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
)

const userAgent = "zendesk-jira-migrator"

// Client wraps JSON HTTP calls to one remote API using basic auth.
// Credentials are only sent to the endpoint's own host.
type Client struct {
	ep   config.Endpoint
	host string
	http *http.Client
	// transfer moves attachment bodies; it has no overall timeout and is
	// bounded by the request context instead.
	transfer *http.Client
}

// New creates a new API client for an endpoint.
func New(ep config.Endpoint) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if ep.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	var host string
	if u, err := url.Parse(ep.URL); err == nil {
		host = u.Host
	}
	return &Client{
		ep:   ep,
		host: host,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		transfer: &http.Client{Transport: transport},
	}
}

// APIError is returned for responses with a status of 400 or more.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	case e.Code != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorResponse covers both the helpdesk ({"error", "description"}) and the
// issue tracker ({"errorMessages", "errors"}) error shapes.
type errorResponse struct {
	Error         json.RawMessage   `json:"error"`
	Description   string            `json:"description"`
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

func parseError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: data}

	var resp errorResponse
	if json.Unmarshal(data, &resp) != nil {
		return apiErr
	}

	if len(resp.Error) > 0 {
		var code string
		if json.Unmarshal(resp.Error, &code) == nil {
			apiErr.Code = code
			apiErr.Message = resp.Description
		} else {
			var obj struct {
				Title   string `json:"title"`
				Message string `json:"message"`
			}
			if json.Unmarshal(resp.Error, &obj) == nil {
				apiErr.Code = obj.Title
				apiErr.Message = obj.Message
			}
		}
	}

	if apiErr.Message == "" {
		msgs := append([]string(nil), resp.ErrorMessages...)
		keys := make([]string, 0, len(resp.Errors))
		for k := range resp.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msgs = append(msgs, k+": "+resp.Errors[k])
		}
		apiErr.Message = strings.Join(msgs, "; ")
	}
	return apiErr
}

// resolve accepts either a path relative to the endpoint URL or an absolute
// URL such as a pagination link.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.ep.URL + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if (c.ep.User != "" || c.ep.Password != "") && req.URL.Host == c.host {
		req.SetBasicAuth(c.ep.User, c.ep.Password)
	}
	return req, nil
}

func (c *Client) send(hc *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return data, resp.StatusCode, parseError(resp.StatusCode, data)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, bodyReader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(c.http, req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) ([]byte, int, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, int, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, int, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, int, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// GetJSON performs a GET request and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	data, _, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Download streams the body of a GET request into w.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.transfer.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return 0, parseError(resp.StatusCode, data)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download: %w", err)
	}
	return n, nil
}

// Upload posts r as a multipart file field. Extra headers are added to the
// request as given.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, header http.Header) ([]byte, int, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, 0, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, 0, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, 0, fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.send(c.transfer, req)
}
