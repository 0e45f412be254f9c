package mmc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

var _ ClientInterface = (*Client)(nil)

// NewClient creates a new MMC client for the API rooted at baseURL.
// Requests carry HTTP basic credentials. No client-level timeout is set, so
// large archive uploads are bounded only by the transport and ctx.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Username:   username,
		Password:   password,
		HTTPClient: &http.Client{},
	}
}

// DefaultRequestConfig returns the headers used for JSON calls.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		ContentType: "application/json",
		Accept:      "application/json",
	}
}

// sendRequest sends a JSON request and returns the response body.
func (c *Client) sendRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	req, err := c.prepareRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	return c.doRequest(req)
}

// prepareRequest creates an HTTP request with proper headers and authentication.
func (c *Client) prepareRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	config := DefaultRequestConfig()
	var bodyReader io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, eris.Wrap(err, "Failed to marshal request body")
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, bodyReader)
	if err != nil {
		return nil, eris.Wrap(err, "Failed to create request")
	}

	if c.Username != "" || c.Password != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}
	req.Header.Set("Accept", config.Accept)

	// Set content type for requests with body
	if body != nil {
		req.Header.Set("Content-Type", config.ContentType)
	}

	return req, nil
}

// doRequest executes a single HTTP request. MMC calls are never retried: an
// upload or deployment that is repeated may create duplicates remotely.
func (c *Client) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "Failed to read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, eris.New("401 Unauthorized.")
		}
		if resp.StatusCode == http.StatusForbidden {
			return nil, eris.New("403 Forbidden.")
		}
		message := gjson.GetBytes(body, "message").String()
		if message == "" {
			return nil, eris.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status)
		}
		return nil, eris.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, message)
	}

	return body, nil
}
