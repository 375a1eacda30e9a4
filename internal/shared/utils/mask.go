package utils

import "strings"

// MaskEmail masks an email address for log output, e.g.
// "owner@builder.example" -> "o***@builder.example".
func MaskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return "***"
	}
	if len(local) <= 1 {
		return local + "***@" + domain
	}
	return local[:1] + "***@" + domain
}
