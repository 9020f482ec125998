package extensions

// TruncateString caps s at maxLen bytes including the trailing ellipsis,
// table cells get unreadable past a certain width.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen-3] + "..."
}
