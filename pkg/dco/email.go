package dco

import (
	"regexp"
	"strings"
)

const (
	maxEmailLength  = 254
	maxLocalLength  = 64
	maxDomainLength = 63
)

var emailRegexp = regexp.MustCompile("^[-!#$%&'*+/0-9=?A-Z^_a-z`{|}~](\\.?[-!#$%&'*+/0-9=?A-Z^_a-z`{|}~])*@[a-zA-Z0-9](-*\\.?[a-zA-Z0-9])*\\.[a-zA-Z](-?[a-zA-Z0-9])+$")

// ValidEmail reports whether s is a syntactically valid email
// address. The domain must have a top-level part of at least two
// characters, so addresses like "root@localhost" are rejected.
func ValidEmail(s string) bool {
	if s == "" || len(s) > maxEmailLength {
		return false
	}
	if !emailRegexp.MatchString(s) {
		return false
	}
	parts := strings.Split(s, "@")
	if len(parts) != 2 || len(parts[0]) > maxLocalLength {
		return false
	}
	for _, label := range strings.Split(parts[1], ".") {
		if len(label) > maxDomainLength {
			return false
		}
	}
	return true
}
