package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	cache "github.com/RobsonDevCode/depwatch/internal/caching"
	"github.com/RobsonDevCode/depwatch/internal/configuration"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(registryUrl string) *configuration.Config {
	return &configuration.Config{
		RegistrySettings: configuration.RegistrySettings{
			NpmUrl:                 registryUrl,
			PypiUrl:                registryUrl,
			OsvUrl:                 registryUrl,
			VersionTimeoutSeconds:  5,
			MetadataTimeoutSeconds: 5,
			CacheTtlMinutes:        1,
		},
	}
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestNpmGetLatestVersionReadsDistTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/express", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"express","dist-tags":{"latest":"4.18.2"}}`)
	}))
	defer server.Close()

	client, err := NewNpmRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	version, err := client.GetLatestVersion("express", context.Background())

	require.NoError(t, err)
	assert.Equal(t, "4.18.2", version)
}

func TestNpmGetLatestVersionReturnsPackageNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewNpmRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	_, err = client.GetLatestVersion("definitely-not-a-package", context.Background())

	var notFound *scanner.PackageNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "definitely-not-a-package", notFound.Name)
}

func TestNpmGetLatestVersionReturnsRegistryErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewNpmRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	_, err = client.GetLatestVersion("express", context.Background())

	var registryErr *scanner.RegistryError
	assert.True(t, errors.As(err, &registryErr))
}

func TestNpmGetLatestVersionCachesLookups(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"dist-tags":{"latest":"4.18.2"}}`)
	}))
	defer server.Close()

	client, err := NewNpmRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := client.GetLatestVersion("express", context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 1, requests)
}

func TestNpmGetPackageMetadataMapsPackument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"name": "express",
			"description": "Fast, unopinionated, minimalist web framework",
			"homepage": "http://expressjs.com/",
			"license": "MIT",
			"dist-tags": {"latest": "4.18.2"}
		}`)
	}))
	defer server.Close()

	client, err := NewNpmRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	metadata, err := client.GetPackageMetadata("express", context.Background())

	require.NoError(t, err)
	require.NotNil(t, metadata)
	assert.Equal(t, "express", metadata.Name)
	assert.Equal(t, "4.18.2", metadata.LatestVersion)
	assert.Equal(t, "MIT", metadata.License)
	assert.Equal(t, "http://expressjs.com/", metadata.Homepage)
}

func TestNpmGetPackageMetadataReturnsAbsentForUnknownPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewNpmRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	metadata, err := client.GetPackageMetadata("ghost-package", context.Background())

	require.NoError(t, err)
	assert.Nil(t, metadata)
}
