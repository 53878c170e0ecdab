package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// UsernameBase derives a username candidate for an OAuth-created account:
// the display name with whitespace stripped and lower-cased, or the email
// local-part when no display name is available.
func UsernameBase(displayName, email string) string {
	if strings.TrimSpace(displayName) != "" {
		return strings.ToLower(whitespaceRegex.ReplaceAllString(displayName, ""))
	}
	if idx := strings.Index(email, "@"); idx > 0 {
		return strings.ToLower(email[:idx])
	}
	return strings.ToLower(email)
}

// UniqueUsername disambiguates base by appending an incrementing integer
// suffix while exists reports a collision.
func UniqueUsername(base string, exists func(string) bool) string {
	username := base
	counter := 1
	for exists(username) {
		username = base + strconv.Itoa(counter)
		counter++
	}
	return username
}
