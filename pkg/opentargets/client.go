package opentargets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// Client handles interactions with the Open Targets Platform GraphQL API.
type Client struct {
	endpoint          string
	drugPageSize      int
	candidatePageSize int
	httpClient        *http.Client
	rateLimit         *rate.Limiter
	breaker           *gobreaker.CircuitBreaker
	logger            *logrus.Logger
}

// Config represents configuration for the Open Targets client.
type Config struct {
	Endpoint          string        `json:"endpoint"`
	Timeout           time.Duration `json:"timeout"`
	RateLimit         int           `json:"rate_limit"` // requests per second
	DrugPageSize      int           `json:"drug_page_size"`
	CandidatePageSize int           `json:"candidate_page_size"`
}

// NewClient creates a new Open Targets Platform client.
func NewClient(config Config, logger *logrus.Logger) *Client {
	if config.Endpoint == "" {
		config.Endpoint = "https://api.platform.opentargets.org/api/v4/graphql"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10
	}
	if config.DrugPageSize == 0 {
		config.DrugPageSize = 1000
	}
	if config.CandidatePageSize == 0 {
		config.CandidatePageSize = 500
	}
	if logger == nil {
		logger = logrus.New()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OpenTargets",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		endpoint:          config.Endpoint,
		drugPageSize:      config.DrugPageSize,
		candidatePageSize: config.CandidatePageSize,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:   breaker,
		logger:    logger,
	}
}

// graphQLError is one error entry in a GraphQL response envelope.
type graphQLError struct {
	Message string `json:"message"`
}

// query executes a GraphQL query through the circuit breaker and decodes the
// data section into out. GraphQL-level errors are logged and the partial data
// section is still decoded; HTTP failures surface as *domain.UpstreamError.
func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}

	requestBody := map[string]interface{}{
		"query":     query,
		"variables": variables,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, jsonBody)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return &domain.UpstreamError{URL: c.endpoint, Message: "service unavailable (circuit breaker open)"}
		}
		return err
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(body.([]byte), &envelope); err != nil {
		return &domain.UpstreamError{URL: c.endpoint, Message: "undecodable JSON: " + err.Error()}
	}

	if len(envelope.Errors) > 0 {
		c.logger.WithField("errors", envelope.Errors).Warn("Open Targets returned GraphQL errors")
	}

	if len(envelope.Data) == 0 {
		return fmt.Errorf("%w: missing data section", domain.ErrMalformedResponse)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	return nil
}

// post performs one HTTP POST against the GraphQL endpoint.
func (c *Client) post(ctx context.Context, jsonBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "biomarkerfinder/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{URL: c.endpoint, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{URL: c.endpoint, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{URL: c.endpoint, StatusCode: resp.StatusCode}
	}

	return body, nil
}
