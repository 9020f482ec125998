package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	cache "github.com/RobsonDevCode/depwatch/internal/caching"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPypiGetLatestVersionReadsInfoVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flask/json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"info":{"name":"Flask","version":"2.3.0"}}`)
	}))
	defer server.Close()

	client, err := NewPypiRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	version, err := client.GetLatestVersion("flask", context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2.3.0", version)
}

func TestPypiGetLatestVersionReturnsPackageNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewPypiRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	_, err = client.GetLatestVersion("no-such-distribution", context.Background())

	var notFound *scanner.PackageNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "no-such-distribution", notFound.Name)
}

func TestPypiGetLatestVersionReturnsRegistryErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewPypiRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	_, err = client.GetLatestVersion("flask", context.Background())

	var registryErr *scanner.RegistryError
	assert.True(t, errors.As(err, &registryErr))
}

func TestPypiGetPackageMetadataMapsProjectInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info":{
			"name": "Flask",
			"version": "2.3.0",
			"summary": "A simple framework for building complex web applications.",
			"home_page": "https://palletsprojects.com/p/flask",
			"license": "BSD-3-Clause",
			"yanked": false
		}}`)
	}))
	defer server.Close()

	client, err := NewPypiRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	metadata, err := client.GetPackageMetadata("flask", context.Background())

	require.NoError(t, err)
	require.NotNil(t, metadata)
	assert.Equal(t, "Flask", metadata.Name)
	assert.Equal(t, "2.3.0", metadata.LatestVersion)
	assert.Equal(t, "BSD-3-Clause", metadata.License)
	assert.Empty(t, metadata.Deprecated)
}

func TestPypiGetPackageMetadataFlagsYankedReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info":{"name":"broken-dist","version":"0.1.0","yanked":true}}`)
	}))
	defer server.Close()

	client, err := NewPypiRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	metadata, err := client.GetPackageMetadata("broken-dist", context.Background())

	require.NoError(t, err)
	require.NotNil(t, metadata)
	assert.NotEmpty(t, metadata.Deprecated)
}

func TestPypiGetPackageMetadataReturnsAbsentForUnknownPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewPypiRegistryClient(newTestConfig(server.URL), &cache.Cache{}, newTestLogger())
	require.NoError(t, err)

	metadata, err := client.GetPackageMetadata("ghost-distribution", context.Background())

	require.NoError(t, err)
	assert.Nil(t, metadata)
}
