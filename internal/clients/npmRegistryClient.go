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

type RegistryClientService interface {
	GetLatestVersion(name string, ctx context.Context) (string, error)
	GetPackageMetadata(name string, ctx context.Context) (*scannermodels.PackageMetadata, error)
}

type NpmRegistryClient struct {
	client          *http.Client
	cb              *gobreaker.CircuitBreaker
	baseUrl         *url.URL
	cache           *cache.Cache
	logger          *logrus.Logger
	versionTimeout  time.Duration
	metadataTimeout time.Duration
	cacheTtl        time.Duration
}

func NewNpmRegistryClient(config *configuration.Config, cache *cache.Cache, logger *logrus.Logger) (*NpmRegistryClient, error) {
	client := &http.Client{
		Timeout: 1 * time.Minute,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	cbSettings := gobreaker.Settings{
		Name:        "npm-registry-client",
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

	baseUrl, err := url.Parse(config.RegistrySettings.NpmUrl)
	if err != nil {
		return nil, fmt.Errorf("error parsing npm registry url, %w", err)
	}
	cb := gobreaker.NewCircuitBreaker(cbSettings)

	return &NpmRegistryClient{
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

func (c *NpmRegistryClient) GetLatestVersion(name string, ctx context.Context) (string, error) {
	key := fmt.Sprintf("npm:latest:%s", name)
	result, err := c.cache.GetOrCreate(key, c.cacheTtl, func() (interface{}, error) {
		var response models.NpmDistTagsResponse
		if err := c.getPackument(name, c.versionTimeout, &response, ctx); err != nil {
			return nil, err
		}

		if response.DistTags.Latest == "" {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("registry response has no latest tag")}
		}

		return response.DistTags.Latest, nil
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

func (c *NpmRegistryClient) GetPackageMetadata(name string, ctx context.Context) (*scannermodels.PackageMetadata, error) {
	key := fmt.Sprintf("npm:metadata:%s", name)
	result, err := c.cache.GetOrCreate(key, c.cacheTtl, func() (interface{}, error) {
		var packument models.NpmPackument
		if err := c.getPackument(name, c.metadataTimeout, &packument, ctx); err != nil {
			return nil, err
		}

		return &scannermodels.PackageMetadata{
			Name:          packument.Name,
			LatestVersion: packument.DistTags.Latest,
			Description:   packument.Description,
			Homepage:      packument.Homepage,
			License:       packument.License,
		}, nil
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

func (c *NpmRegistryClient) getPackument(name string, timeout time.Duration, target interface{}, ctx context.Context) error {
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	packageUrl := c.baseUrl.JoinPath(name).String()

	//a 404 is a valid registry answer so it goes through the breaker as a
	//success, otherwise bulk scans with unknown packages trip it
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
			return http.StatusNotFound, nil
		}

		if response.StatusCode != http.StatusOK {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("unexpected status code %d", response.StatusCode)}
		}

		if err := json.NewDecoder(response.Body).Decode(target); err != nil {
			return nil, &scanner.RegistryError{Op: name, Err: fmt.Errorf("failed to decode registry response: %w", err)}
		}

		return http.StatusOK, nil
	})

	if err != nil {
		return err
	}

	if status, ok := cbResult.(int); ok && status == http.StatusNotFound {
		return &scanner.PackageNotFoundError{Name: name}
	}

	return nil
}
