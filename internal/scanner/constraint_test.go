package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitConstraint(t *testing.T) {
	tests := []struct {
		name             string
		constraint       string
		expectedOperator string
		expectedVersion  string
	}{
		{name: "caret range", constraint: "^4.17.1", expectedOperator: "^", expectedVersion: "4.17.1"},
		{name: "tilde range", constraint: "~1.2.3", expectedOperator: "~", expectedVersion: "1.2.3"},
		{name: "greater or equal", constraint: ">=2.1.0", expectedOperator: ">=", expectedVersion: "2.1.0"},
		{name: "less or equal", constraint: "<=3.0.0", expectedOperator: "<=", expectedVersion: "3.0.0"},
		{name: "exact pin", constraint: "==1.4.2", expectedOperator: "==", expectedVersion: "1.4.2"},
		{name: "exclusion", constraint: "!=0.9.0", expectedOperator: "!=", expectedVersion: "0.9.0"},
		{name: "compatible release", constraint: "~=2.4", expectedOperator: "~=", expectedVersion: "2.4"},
		{name: "greater than", constraint: ">1.0.0", expectedOperator: ">", expectedVersion: "1.0.0"},
		{name: "less than", constraint: "<3.0.0", expectedOperator: "<", expectedVersion: "3.0.0"},
		{name: "bare version", constraint: "4.17.21", expectedOperator: "", expectedVersion: "4.17.21"},
		{name: "surrounding whitespace", constraint: "  >= 2.1.0 ", expectedOperator: ">=", expectedVersion: "2.1.0"},
		{name: "empty constraint", constraint: "", expectedOperator: "", expectedVersion: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			operator, version := SplitConstraint(test.constraint)

			assert.Equal(t, test.expectedOperator, operator)
			assert.Equal(t, test.expectedVersion, version)
		})
	}
}

func TestSplitConstraintNeverMisreadsRangesAsComparisons(t *testing.T) {
	// ">=" and "<=" share a first character with ">" and "<", the longer
	// operator has to win
	operator, version := SplitConstraint(">=1.0.0")
	assert.Equal(t, ">=", operator)
	assert.Equal(t, "1.0.0", version)

	operator, version = SplitConstraint("<=1.0.0")
	assert.Equal(t, "<=", operator)
	assert.Equal(t, "1.0.0", version)
}
