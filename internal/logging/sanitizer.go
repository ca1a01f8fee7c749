package logging

import (
	"regexp"
	"strings"
)

// RedactedText is the replacement text for sensitive data
const RedactedText = "[REDACTED]"

var (
	// Matches: password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host URL form (sqlserver://, postgres://, oracle://)
	urlCredentialsPattern = regexp.MustCompile(`://[^:/@]+:[^@]+@`)

	// go-sql-driver/mysql form: user:pass@tcp(host)/db
	mysqlCredentialsPattern = regexp.MustCompile(`^[^:/@\s]+:[^@]+@`)
)

// SanitizeDSN removes credentials from a data source name.
// Use this before logging any DSN.
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(dsn, "${1}="+RedactedText)
	if strings.Contains(sanitized, "://") {
		return urlCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
	}
	return mysqlCredentialsPattern.ReplaceAllString(sanitized, RedactedText+"@")
}

// SanitizeError sanitizes error messages that might echo a DSN back.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	return urlCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
}
