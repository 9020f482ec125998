package npmscanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readManifestSections(t *testing.T, dir string) map[string]map[string]string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)

	var document map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(content, &document))

	sections := make(map[string]map[string]string)
	for _, name := range []string{"dependencies", "devDependencies"} {
		raw, ok := document[name]
		if !ok {
			continue
		}
		section := make(map[string]string)
		require.NoError(t, json.Unmarshal(raw, &section))
		sections[name] = section
	}

	return sections
}

func TestRewriteManifestPreservesCaretOperator(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"dependencies":{"express":"^4.17.1"}}`)

	err := newTestScanner().RewriteManifest([]scannermodels.UpdateCandidate{
		{Name: "express", CurrentVersion: "4.17.1", LatestVersion: "4.18.2", Kind: scannermodels.KindProduction, Distance: scannermodels.DistanceMinor, Safe: true},
	}, dir)

	require.NoError(t, err)
	sections := readManifestSections(t, dir)
	assert.Equal(t, "^4.18.2", sections["dependencies"]["express"])
}

func TestRewriteManifestKeepsBareVersionsBare(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"dependencies":{"lodash":"4.17.20"}}`)

	err := newTestScanner().RewriteManifest([]scannermodels.UpdateCandidate{
		{Name: "lodash", LatestVersion: "4.17.21", Kind: scannermodels.KindProduction},
	}, dir)

	require.NoError(t, err)
	sections := readManifestSections(t, dir)
	assert.Equal(t, "4.17.21", sections["dependencies"]["lodash"])
}

func TestRewriteManifestPreservesUnrelatedContent(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "checkout-web",
		"version": "2.1.0",
		"scripts": {"start": "node server.js"},
		"dependencies": {"express": "^4.17.1", "cors": "~2.8.5"}
	}`)

	err := newTestScanner().RewriteManifest([]scannermodels.UpdateCandidate{
		{Name: "express", LatestVersion: "4.18.2", Kind: scannermodels.KindProduction},
	}, dir)

	require.NoError(t, err)

	content, readErr := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, readErr)

	var document map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(content, &document))
	assert.Contains(t, document, "name")
	assert.Contains(t, document, "scripts")
	assert.JSONEq(t, `{"start": "node server.js"}`, string(document["scripts"]))

	sections := readManifestSections(t, dir)
	assert.Equal(t, "^4.18.2", sections["dependencies"]["express"])
	assert.Equal(t, "~2.8.5", sections["dependencies"]["cors"])
}

func TestRewriteManifestTargetsTheSectionMatchingTheKind(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"dependencies": {"lodash": "4.17.20"},
		"devDependencies": {"lodash": "^4.0.0"}
	}`)

	err := newTestScanner().RewriteManifest([]scannermodels.UpdateCandidate{
		{Name: "lodash", LatestVersion: "4.17.21", Kind: scannermodels.KindDevelopment},
	}, dir)

	require.NoError(t, err)
	sections := readManifestSections(t, dir)
	assert.Equal(t, "^4.17.21", sections["devDependencies"]["lodash"])
	assert.Equal(t, "4.17.20", sections["dependencies"]["lodash"])
}

func TestRewriteManifestWithNoUpdatesTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	original := `{"dependencies":{"express":"^4.17.1"}}`
	writeManifest(t, dir, original)

	require.NoError(t, newTestScanner().RewriteManifest(nil, dir))

	content, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestRewriteManifestKeepsRangeOperatorsReadable(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"dependencies":{"semver":">=7.0.0"}}`)

	err := newTestScanner().RewriteManifest([]scannermodels.UpdateCandidate{
		{Name: "semver", LatestVersion: "7.6.0", Kind: scannermodels.KindProduction},
	}, dir)

	require.NoError(t, err)

	content, readErr := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, readErr)
	assert.True(t, strings.Contains(string(content), ">=7.6.0"), "range operator must not be html escaped: %s", content)
}

func TestRewriteManifestSkipsPackagesMissingFromTheManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"dependencies":{"express":"^4.17.1"}}`)

	err := newTestScanner().RewriteManifest([]scannermodels.UpdateCandidate{
		{Name: "express", LatestVersion: "4.18.2", Kind: scannermodels.KindProduction},
		{Name: "vanished", LatestVersion: "1.0.0", Kind: scannermodels.KindProduction},
	}, dir)

	require.NoError(t, err)
	sections := readManifestSections(t, dir)
	assert.Equal(t, "^4.18.2", sections["dependencies"]["express"])
	assert.NotContains(t, sections["dependencies"], "vanished")
}
