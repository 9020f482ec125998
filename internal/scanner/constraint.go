package scanner

import "strings"

// Two character operators have to be matched before their one character
// prefixes, ">=1.0.0" is a range, not ">" on "=1.0.0".
var constraintOperators = []string{">=", "<=", "==", "!=", "~=", "^", "~", ">", "<"}

// SplitConstraint separates a declared constraint into its range operator
// and the version it pins. Constraints with no recognised operator come
// back with an empty operator and the trimmed input as the version.
func SplitConstraint(constraint string) (string, string) {
	trimmed := strings.TrimSpace(constraint)
	for _, op := range constraintOperators {
		if strings.HasPrefix(trimmed, op) {
			return op, strings.TrimSpace(strings.TrimPrefix(trimmed, op))
		}
	}

	return "", trimmed
}
