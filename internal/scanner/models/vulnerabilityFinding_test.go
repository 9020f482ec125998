package scannermodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Severity
	}{
		{name: "critical", raw: "critical", expected: SeverityCritical},
		{name: "high", raw: "high", expected: SeverityHigh},
		{name: "moderate", raw: "moderate", expected: SeverityModerate},
		{name: "medium maps to moderate", raw: "medium", expected: SeverityModerate},
		{name: "low", raw: "low", expected: SeverityLow},
		{name: "case varied", raw: "Medium", expected: SeverityModerate},
		{name: "upper case", raw: "CRITICAL", expected: SeverityCritical},
		{name: "surrounding whitespace", raw: " high ", expected: SeverityHigh},
		{name: "unrecognised label defaults to moderate", raw: "important", expected: SeverityModerate},
		{name: "empty defaults to moderate", raw: "", expected: SeverityModerate},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, NormalizeSeverity(test.raw))
		})
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityModerate.Rank())
	assert.Greater(t, SeverityModerate.Rank(), SeverityLow.Rank())
	assert.Greater(t, SeverityLow.Rank(), Severity("").Rank())
}
