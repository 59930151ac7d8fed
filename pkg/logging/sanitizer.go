package logging

import (
	"regexp"
	"unicode/utf8"
)

const (
	// MaxTextLogLength is the maximum number of runes of issue text to log
	MaxTextLogLength = 80
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match potential passwords in connection strings
	// Matches: password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Pattern to match bearer and token authorization values
	bearerPattern = regexp.MustCompile(`(?i)\b(Bearer|token)\s+[A-Za-z0-9\-_.]{16,}`)

	// Pattern to match GitHub personal access tokens (classic and fine-grained)
	githubTokenPattern = regexp.MustCompile(`\b(ghp|gho|ghs|ghu|github_pat)_[A-Za-z0-9_]{20,}`)

	// Pattern to match OpenAI style secret keys
	secretKeyPattern = regexp.MustCompile(`\bsk-[A-Za-z0-9\-_]{20,}`)

	// Pattern to match potential API keys
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Pattern to match connection string credentials (user:pass@host format)
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)
)

// SanitizeConnectionString removes sensitive data from connection strings
// Use this before logging any connection string
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError sanitizes error messages that might contain credentials.
// Errors from the database driver, the GitHub client and the embedding client
// are all passed through here before being logged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "${1} "+RedactedText)
	sanitized = githubTokenPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = secretKeyPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeText shortens issue titles and bodies for log fields.
func SanitizeText(text string) string {
	return TruncateString(text, MaxTextLogLength)
}

// TruncateString truncates s to maxLen runes and adds an ellipsis if needed.
// Multi-byte characters are never split.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
