package npmscanner

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
)

var sectionNames = map[scannermodels.DependencyKind]string{
	scannermodels.KindProduction:  "dependencies",
	scannermodels.KindDevelopment: "devDependencies",
}

func (s *NpmScanner) RewriteManifest(updates []scannermodels.UpdateCandidate, root string) error {
	if len(updates) == 0 {
		return nil
	}

	manifestPath := filepath.Join(root, manifestName)
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return &scanner.ManifestWriteError{Path: manifestPath, Err: err}
	}

	//the document is held as raw values so keys we never touch survive the
	//round trip untouched
	var document map[string]json.RawMessage
	if err := json.Unmarshal(content, &document); err != nil {
		return &scanner.ManifestWriteError{Path: manifestPath, Err: err}
	}

	for kind, sectionName := range sectionNames {
		sectionUpdates := filterByKind(updates, kind)
		if len(sectionUpdates) == 0 {
			continue
		}

		raw, ok := document[sectionName]
		if !ok {
			continue
		}

		var section map[string]string
		if err := json.Unmarshal(raw, &section); err != nil {
			return &scanner.ManifestWriteError{Path: manifestPath, Err: err}
		}

		for _, update := range sectionUpdates {
			declared, ok := section[update.Name]
			if !ok {
				continue
			}

			operator, _ := scanner.SplitConstraint(declared)
			section[update.Name] = operator + update.LatestVersion
		}

		patched, err := marshalManifest(section, false)
		if err != nil {
			return &scanner.ManifestWriteError{Path: manifestPath, Err: err}
		}
		document[sectionName] = patched
	}

	updated, err := marshalManifest(document, true)
	if err != nil {
		return &scanner.ManifestWriteError{Path: manifestPath, Err: err}
	}

	if err := scanner.WriteFileAtomic(manifestPath, append(updated, '\n')); err != nil {
		return &scanner.ManifestWriteError{Path: manifestPath, Err: err}
	}

	return nil
}

// marshalManifest keeps html escaping off, a plain json.Marshal would turn
// the ">=" in range constraints into "\u003e=".
func marshalManifest(v interface{}, indent bool) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if indent {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

func filterByKind(updates []scannermodels.UpdateCandidate, kind scannermodels.DependencyKind) []scannermodels.UpdateCandidate {
	var filtered []scannermodels.UpdateCandidate
	for _, update := range updates {
		if update.Kind == kind {
			filtered = append(filtered, update)
		}
	}

	return filtered
}
