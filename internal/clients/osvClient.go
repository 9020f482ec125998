package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cache "github.com/RobsonDevCode/depwatch/internal/caching"
	"github.com/RobsonDevCode/depwatch/internal/clients/models"
	"github.com/RobsonDevCode/depwatch/internal/configuration"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type OsvClientService interface {
	QueryVulnerabilities(name string, ecosystem string, version string, ctx context.Context) ([]models.OsvVulnerability, error)
}

type OsvClient struct {
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
	queryUrl string
	cache    *cache.Cache
	logger   *logrus.Logger
	timeout  time.Duration
	cacheTtl time.Duration
}

func NewOsvClient(config *configuration.Config, cache *cache.Cache, logger *logrus.Logger) *OsvClient {
	client := &http.Client{
		Timeout: 1 * time.Minute,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	cbSettings := gobreaker.Settings{
		Name:        "osv-client",
		MaxRequests: 5,
		Interval:    3 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithField("client", name).Warnf("Circuit breaker state changed from %v to %v", from, to)
		},
	}

	return &OsvClient{
		client:   client,
		cb:       gobreaker.NewCircuitBreaker(cbSettings),
		queryUrl: config.RegistrySettings.OsvUrl,
		cache:    cache,
		logger:   logger,
		timeout:  config.RegistrySettings.MetadataTimeout(),
		cacheTtl: config.RegistrySettings.CacheTtl(),
	}
}

func (c *OsvClient) QueryVulnerabilities(name string, ecosystem string, version string, ctx context.Context) ([]models.OsvVulnerability, error) {
	key := fmt.Sprintf("osv:%s:%s:%s", ecosystem, name, version)
	result, err := c.cache.GetOrCreate(key, c.cacheTtl, func() (interface{}, error) {
		return c.query(name, ecosystem, version, ctx)
	})

	if err != nil {
		return nil, err
	}

	vulns, ok := result.([]models.OsvVulnerability)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	return vulns, nil
}

func (c *OsvClient) query(name string, ecosystem string, version string, ctx context.Context) ([]models.OsvVulnerability, error) {
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := models.OsvQuery{
		Package: models.OsvQueryPackage{
			Name:      name,
			Ecosystem: ecosystem,
		},
		Version: version,
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal osv query: %w", err)
	}

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.queryUrl, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := c.client.Do(request)
		if err != nil {
			return nil, &scanner.RegistryError{Op: name, Err: err}
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("unexpected status code %d", response.StatusCode)}
		}

		var queryResponse models.OsvQueryResponse
		if err := json.NewDecoder(response.Body).Decode(&queryResponse); err != nil {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("failed to decode osv response: %w", err)}
		}

		return queryResponse.Vulns, nil
	})

	if err != nil {
		return nil, err
	}

	vulns, ok := cbResult.([]models.OsvVulnerability)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	return vulns, nil
}
