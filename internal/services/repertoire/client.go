package repertoire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amaumene/repertoire/internal/config"
	"github.com/amaumene/repertoire/internal/metrics"
	"github.com/amaumene/repertoire/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	tokenPath      = "/api-token-auth/"
	collectionPath = "/repertorio/api/"

	// error bodies are only kept for logging and messages
	maxErrorBody = 4 * 1024
)

// ErrNotAuthenticated is returned when a call needs a token and no session exists
var ErrNotAuthenticated = errors.New("not authenticated")

// StatusError is returned when the API answers with an unexpected status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status from err, if it carries one
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// Client handles communication with the repertoire API
type Client struct {
	baseURL    string
	sessions   models.SessionStore
	httpClient *http.Client
	metrics    *metrics.Collector
	logger     *logrus.Logger
}

// NewClient creates a new repertoire API client. The token is read from
// sessions on every call.
func NewClient(cfg *config.Config, sessions models.SessionStore, collector *metrics.Collector, logger *logrus.Logger) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("repertoire API URL is required")
	}
	if _, err := url.Parse(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid repertoire API URL: %w", err)
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		sessions:   sessions,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    collector,
		logger:     logger,
	}, nil
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one API call
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
	want   int
	auth   bool
}

// doRequest performs an HTTP request against the API and decodes the JSON
// response into result when it is non-nil.
func (c *Client) doRequest(ctx context.Context, r request, result interface{}) error {
	var token string
	if r.auth {
		session, err := c.sessions.Get()
		if errors.Is(err, models.ErrNoSession) {
			return ErrNotAuthenticated
		}
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		token = session.Token
	}

	var reqBody io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	fullURL := c.baseURL + r.path
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	requestID := uuid.NewString()
	log := c.logger.WithFields(logrus.Fields{
		"op":         r.op,
		"method":     r.method,
		"url":        fullURL,
		"request_id": requestID,
	})
	log.Debug("Making repertoire API request")

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(r.op, 0, time.Since(start))
		return fmt.Errorf("%s request failed: %w", r.op, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(r.op, resp.StatusCode, time.Since(start))

	if resp.StatusCode != r.want {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(bodyBytes),
		}).Error("Repertoire API returned unexpected status")
		return &StatusError{Op: r.op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Repertoire API request completed")
	return nil
}
