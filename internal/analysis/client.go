package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const apiVersion = "2024-11-30"

// Client calls a Document Intelligence-compatible layout analysis API:
// submit the raw document, then poll the returned operation until the
// analyze result is available.
type Client struct {
	endpoint   string
	apiKey     string
	modelID    string
	httpClient *http.Client

	pollAttempts uint
	pollDelay    time.Duration
}

func NewClient(endpoint, apiKey, modelID string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		modelID:  modelID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		pollAttempts: 90,
		pollDelay:    2 * time.Second,
	}
}

type operationResponse struct {
	Status        string  `json:"status"`
	AnalyzeResult *Result `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze submits a document and blocks until the analysis completes.
func (c *Client) Analyze(ctx context.Context, data []byte, contentType string) (*Result, error) {
	opURL, err := c.beginAnalyze(ctx, data, contentType)
	if err != nil {
		return nil, err
	}
	res, err := c.pollResult(ctx, opURL)
	if err != nil {
		return nil, err
	}
	res.spansToByteOffsets()
	return res, nil
}

func (c *Client) beginAnalyze(ctx context.Context, data []byte, contentType string) (string, error) {
	// stringIndexType pins the unit of span offsets; without it the
	// service may count in UTF-16 code units or grapheme clusters.
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s&outputContentFormat=markdown&stringIndexType=unicodeCodePoint",
		c.endpoint, c.modelID, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("begin analyze: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("begin analyze: status %d: %s", resp.StatusCode, string(body))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("begin analyze: missing Operation-Location header")
	}
	return opURL, nil
}

// errAnalyzeRunning signals the poll loop that the operation has not
// finished yet.
var errAnalyzeRunning = fmt.Errorf("analyze operation still running")

func (c *Client) pollResult(ctx context.Context, opURL string) (*Result, error) {
	var result *Result

	err := retry.Do(
		func() error {
			op, err := c.getOperation(ctx, opURL)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			switch op.Status {
			case "succeeded":
				if op.AnalyzeResult == nil {
					return retry.Unrecoverable(fmt.Errorf("analyze succeeded without a result"))
				}
				result = op.AnalyzeResult
				return nil
			case "failed":
				msg := "unknown"
				if op.Error != nil {
					msg = fmt.Sprintf("%s: %s", op.Error.Code, op.Error.Message)
				}
				return retry.Unrecoverable(fmt.Errorf("analyze failed: %s", msg))
			default:
				return errAnalyzeRunning
			}
		},
		retry.Context(ctx),
		retry.Attempts(c.pollAttempts),
		retry.Delay(c.pollDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("poll analyze result: %w", err)
	}
	return result, nil
}

func (c *Client) getOperation(ctx context.Context, opURL string) (*operationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get operation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read operation: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get operation: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var op operationResponse
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("decode operation: %w", err)
	}
	return &op, nil
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
