package pipscanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
)

var manifestFiles = map[scannermodels.DependencyKind]string{
	scannermodels.KindProduction:  productionManifest,
	scannermodels.KindDevelopment: developmentManifest,
}

func (s *PipScanner) RewriteManifest(updates []scannermodels.UpdateCandidate, root string) error {
	if len(updates) == 0 {
		return nil
	}

	for kind, fileName := range manifestFiles {
		kindUpdates := latestByName(updates, kind)
		if len(kindUpdates) == 0 {
			continue
		}

		if err := s.rewriteFile(filepath.Join(root, fileName), kindUpdates); err != nil {
			return err
		}
	}

	return nil
}

func (s *PipScanner) rewriteFile(path string, updates map[string]string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return &scanner.ManifestWriteError{Path: path, Err: err}
	}

	lines := strings.Split(string(content), "\n")
	changed := false
	for i, line := range lines {
		entry, ok := parseRequirement(line)
		if !ok || entry.versionStart < 0 {
			continue
		}

		latest, ok := updates[entry.name]
		if !ok {
			continue
		}

		//only the version bytes change, operators, extras, markers and
		//comments on the line survive untouched
		lines[i] = line[:entry.versionStart] + latest + line[entry.versionEnd:]
		changed = true
	}

	if !changed {
		return nil
	}

	if err := scanner.WriteFileAtomic(path, []byte(strings.Join(lines, "\n"))); err != nil {
		return &scanner.ManifestWriteError{Path: path, Err: err}
	}

	return nil
}

func latestByName(updates []scannermodels.UpdateCandidate, kind scannermodels.DependencyKind) map[string]string {
	byName := make(map[string]string)
	for _, update := range updates {
		if update.Kind == kind {
			byName[update.Name] = update.LatestVersion
		}
	}

	return byName
}
