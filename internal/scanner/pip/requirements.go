package pipscanner

import (
	"regexp"
	"strings"
)

// Matches "name[extras]<op><version>" with anything after the version left
// alone, so markers and inline comments never confuse the parser.
var requirementPattern = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)(\[[\w\s,.-]*\])?\s*([><=!~]=?)?\s*([\w.*+-]+)?`)

type requirementEntry struct {
	name       string
	constraint string
	//version byte offsets into the original line, -1 when the entry has no
	//pinned version, rewrites splice exactly this span
	versionStart int
	versionEnd   int
}

func parseRequirement(line string) (requirementEntry, bool) {
	working := strings.TrimSpace(line)
	if working == "" || strings.HasPrefix(working, "#") || strings.HasPrefix(working, "-") {
		return requirementEntry{}, false
	}

	//url style requirements point outside the registry, leave them alone
	if strings.Contains(working, "://") || strings.HasPrefix(working, "git+") {
		return requirementEntry{}, false
	}

	matches := requirementPattern.FindStringSubmatchIndex(line)
	if matches == nil {
		return requirementEntry{}, false
	}

	entry := requirementEntry{
		name:         line[matches[2]:matches[3]],
		versionStart: -1,
		versionEnd:   -1,
	}

	hasOperator := matches[6] >= 0
	hasVersion := matches[8] >= 0
	if hasOperator != hasVersion {
		//an operator with nothing behind it is malformed
		return requirementEntry{}, false
	}

	if hasVersion {
		operator := line[matches[6]:matches[7]]
		version := line[matches[8]:matches[9]]
		entry.constraint = operator + version
		entry.versionStart = matches[8]
		entry.versionEnd = matches[9]
	}

	return entry, true
}
