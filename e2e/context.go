package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// TestContext holds the HTTP client and the last response of a scenario.
// Values remembered with Remember are substituted into paths as {name}.
type TestContext struct {
	BaseURL    string
	AdminToken string
	client     *http.Client

	lastStatus int
	lastBody   []byte
	vars       map[string]string
}

func NewTestContext() *TestContext {
	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AdminToken: os.Getenv("ADMIN_API_TOKEN"),
		client:     &http.Client{Timeout: 10 * time.Second},
		vars:       map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.vars = map[string]string{}
}

func (tc *TestContext) Remember(name, value string) {
	tc.vars[name] = value
}

func (tc *TestContext) Recall(name string) string {
	return tc.vars[name]
}

func (tc *TestContext) expand(path string) string {
	for k, v := range tc.vars {
		path = strings.ReplaceAll(path, "{"+k+"}", v)
	}
	return path
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body, nil)
}

func (tc *TestContext) PUT(path string, body any) error {
	return tc.do(http.MethodPut, path, body, nil)
}

func (tc *TestContext) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, tc.BaseURL+tc.expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) StatusCode() int {
	return tc.lastStatus
}

func (tc *TestContext) Body() []byte {
	return tc.lastBody
}

// GetResponseField reads a dotted path ("state.progress") from the last JSON body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		doc, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found", field)
		}
	}
	return doc, nil
}

func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}
