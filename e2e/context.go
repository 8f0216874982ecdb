package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries one scenario's HTTP state against a running server.
type TestContext struct {
	BaseURL     string
	AccessToken string

	client       *http.Client
	lastStatus   int
	lastBody     []byte
	lastResponse map[string]any
	remembered   map[string]string
}

func NewTestContext(baseURL, token string) *TestContext {
	return &TestContext{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AccessToken: token,
		client:      &http.Client{Timeout: 45 * time.Second},
		remembered:  make(map[string]string),
	}
}

func (tc *TestContext) do(method, path string, body any, authenticated bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticated && tc.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AccessToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastResponse = nil
	if len(tc.lastBody) > 0 {
		_ = json.Unmarshal(tc.lastBody, &tc.lastResponse)
	}
	return nil
}

func (tc *TestContext) POST(path string, body any) error { return tc.do(http.MethodPost, path, body, true) }
func (tc *TestContext) PUT(path string, body any) error  { return tc.do(http.MethodPut, path, body, true) }
func (tc *TestContext) GET(path string) error            { return tc.do(http.MethodGet, path, nil, true) }

// POSTAnonymous sends without the bearer token.
func (tc *TestContext) POSTAnonymous(path string, body any) error {
	return tc.do(http.MethodPost, path, body, false)
}

func (tc *TestContext) GetLastStatusCode() int { return tc.lastStatus }

func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.lastBody)
	}
	v, ok := tc.lastResponse[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

// Remember stores a value for later steps in the same scenario.
func (tc *TestContext) Remember(key, value string) { tc.remembered[key] = value }

func (tc *TestContext) Recall(key string) string { return tc.remembered[key] }
