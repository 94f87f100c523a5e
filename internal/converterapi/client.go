package converterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/parsererror"
	"fjacquet/statement-compare/internal/statement"
)

const (
	uploadPath  = "/api/v1/BankStatement"
	statusPath  = "/api/v1/BankStatement/status"
	convertPath = "/api/v1/BankStatement/convert?format=JSON"

	stateProcessing = "PROCESSING"

	maxErrorBody = 512
)

// ClientConfig configures the HTTP client.
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
	MaxPolls     int
}

// Client talks to the PDF-to-transaction API: upload, poll until the statement
// leaves the PROCESSING state, then fetch the JSON conversion.
type Client struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	maxPolls     int
	httpClient   *http.Client
	logger       logging.Logger
}

// NewClient returns a Client. BaseURL and APIKey are required.
func NewClient(cfg ClientConfig, logger logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("converter base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("converter API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 30
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logging.OrDefault(logger),
	}, nil
}

type uploadedStatement struct {
	UUID     string `json:"uuid"`
	Filename string `json:"filename"`
	PDFType  string `json:"pdfType"`
	State    string `json:"state"`
}

// Convert uploads the PDF in r and returns its converted transactions.
func (c *Client) Convert(ctx context.Context, filename string, r io.Reader) (*statement.APIResponse, error) {
	logger := c.logger.WithField(logging.FieldFile, filename)
	started := time.Now()

	uploaded, err := c.upload(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	logger.Debug("Uploaded statement", logging.F("uuid", uploaded.UUID), logging.F(logging.FieldStatus, uploaded.State))

	if uploaded.State == stateProcessing {
		if err := c.waitReady(ctx, uploaded.UUID); err != nil {
			return nil, err
		}
	}

	resp, err := c.convert(ctx, uploaded.UUID)
	if err != nil {
		return nil, err
	}
	logger.Info("Converted PDF statement",
		logging.F(logging.FieldCount, len(resp.Normalised)),
		logging.F(logging.FieldDuration, time.Since(started).String()))
	return resp, nil
}

func (c *Client) upload(ctx context.Context, filename string, r io.Reader) (*uploadedStatement, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("error building upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("error reading statement: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("error building upload: %w", err)
	}

	var uploaded []uploadedStatement
	if err := c.do(ctx, "upload", uploadPath, w.FormDataContentType(), &body, &uploaded); err != nil {
		return nil, err
	}
	if len(uploaded) == 0 || uploaded[0].UUID == "" {
		return nil, &parsererror.ConversionAPIError{Op: "upload", StatusCode: http.StatusOK, Body: "no statement id returned"}
	}
	return &uploaded[0], nil
}

func (c *Client) waitReady(ctx context.Context, id string) error {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		var statuses []uploadedStatement
		if err := c.postJSON(ctx, "status", statusPath, []string{id}, &statuses); err != nil {
			return err
		}
		if len(statuses) > 0 && statuses[0].State != stateProcessing {
			return nil
		}
		c.logger.Debug("Statement still processing", logging.F("uuid", id), logging.F("attempt", attempt))
		timer.Reset(c.pollInterval)
	}
	return fmt.Errorf("statement %s after %d polls: %w", id, c.maxPolls, parsererror.ErrConversionPending)
}

func (c *Client) convert(ctx context.Context, id string) (*statement.APIResponse, error) {
	var raw json.RawMessage
	if err := c.postJSON(ctx, "convert", convertPath, []string{id}, &raw); err != nil {
		return nil, err
	}
	return statement.DecodeAPIResponse(bytes.NewReader(raw))
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding %s request: %w", op, err)
	}
	return c.do(ctx, op, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, op, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", op, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("converter %s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &parsererror.ConversionAPIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("converter %s: error decoding response: %w", op, err)
	}
	return nil
}
