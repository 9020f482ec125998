package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	cache "github.com/RobsonDevCode/depwatch/internal/caching"
	"github.com/RobsonDevCode/depwatch/internal/clients/models"
	"github.com/RobsonDevCode/depwatch/internal/configuration"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type PypiRegistryClient struct {
	client          *http.Client
	cb              *gobreaker.CircuitBreaker
	baseUrl         *url.URL
	cache           *cache.Cache
	logger          *logrus.Logger
	versionTimeout  time.Duration
	metadataTimeout time.Duration
	cacheTtl        time.Duration
}

func NewPypiRegistryClient(config *configuration.Config, cache *cache.Cache, logger *logrus.Logger) (*PypiRegistryClient, error) {
	client := &http.Client{
		Timeout: 1 * time.Minute,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	cbSettings := gobreaker.Settings{
		Name:        "pypi-registry-client",
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

	baseUrl, err := url.Parse(config.RegistrySettings.PypiUrl)
	if err != nil {
		return nil, fmt.Errorf("error parsing pypi registry url, %w", err)
	}
	cb := gobreaker.NewCircuitBreaker(cbSettings)

	return &PypiRegistryClient{
		client:          client,
		cb:              cb,
		baseUrl:         baseUrl,
		cache:           cache,
		logger:          logger,
		versionTimeout:  config.RegistrySettings.VersionTimeout(),
		metadataTimeout: config.RegistrySettings.MetadataTimeout(),
		cacheTtl:        config.RegistrySettings.CacheTtl(),
	}, nil
}

func (c *PypiRegistryClient) GetLatestVersion(name string, ctx context.Context) (string, error) {
	key := fmt.Sprintf("pypi:latest:%s", name)
	result, err := c.cache.GetOrCreate(key, c.cacheTtl, func() (interface{}, error) {
		response, err := c.getPackage(name, c.versionTimeout, ctx)
		if err != nil {
			return nil, err
		}

		if response.Info.Version == "" {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("registry response has no version")}
		}

		return response.Info.Version, nil
	})

	if err != nil {
		return "", err
	}

	version, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected response type when converting response")
	}

	return version, nil
}

func (c *PypiRegistryClient) GetPackageMetadata(name string, ctx context.Context) (*scannermodels.PackageMetadata, error) {
	key := fmt.Sprintf("pypi:metadata:%s", name)
	result, err := c.cache.GetOrCreate(key, c.cacheTtl, func() (interface{}, error) {
		response, err := c.getPackage(name, c.metadataTimeout, ctx)
		if err != nil {
			return nil, err
		}

		metadata := &scannermodels.PackageMetadata{
			Name:          response.Info.Name,
			LatestVersion: response.Info.Version,
			Description:   response.Info.Summary,
			Homepage:      response.Info.HomePage,
			License:       response.Info.License,
		}
		if response.Info.Yanked {
			metadata.Deprecated = "latest release has been yanked"
		}

		return metadata, nil
	})

	if err != nil {
		var notFound *scanner.PackageNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}

	metadata, ok := result.(*scannermodels.PackageMetadata)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	return metadata, nil
}

func (c *PypiRegistryClient) getPackage(name string, timeout time.Duration, ctx context.Context) (*models.PypiPackageResponse, error) {
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	packageUrl := c.baseUrl.JoinPath(name, "json").String()

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, packageUrl, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}

		response, err := c.client.Do(request)
		if err != nil {
			return nil, &scanner.RegistryError{Op: name, Err: err}
		}
		defer response.Body.Close()

		if response.StatusCode == http.StatusNotFound {
			return nil, nil
		}

		if response.StatusCode != http.StatusOK {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("unexpected status code %d", response.StatusCode)}
		}

		var pypiResponse models.PypiPackageResponse
		if err := json.NewDecoder(response.Body).Decode(&pypiResponse); err != nil {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("failed to decode registry response: %w", err)}
		}

		return &pypiResponse, nil
	})

	if err != nil {
		return nil, err
	}

	//nil result with no error means the registry answered 404
	if cbResult == nil {
		return nil, &scanner.PackageNotFoundError{Name: name}
	}

	response, ok := cbResult.(*models.PypiPackageResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	return response, nil
}
