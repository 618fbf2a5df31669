// Package validation holds the field rules of the portal's auth forms.
// Everything here is a pure function of its input.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

const NationalIDLength = 8

var (
	nameRe       = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*$`)
	nationalIDRe = regexp.MustCompile(`^[0-9]{8}$`)
)

// DefaultEmailDomains are the suffixes accepted at registration.
var DefaultEmailDomains = []string{"@tbs.u-tunis.tn", "@gmail.com"}

// IsNameValid reports whether name is one or more ASCII letter runs separated
// by single spaces.
func IsNameValid(name string) bool {
	return nameRe.MatchString(name)
}

// FormatName is applied when a name field loses focus: anything that is not a
// letter or whitespace is dropped, whitespace runs collapse to one space, and
// every word is title-cased. Unicode spaces such as U+00A0 count as
// whitespace. FormatName(FormatName(s)) == FormatName(s).
func FormatName(name string) string {
	s := strings.Map(func(r rune) rune {
		if isASCIILetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, name)

	words := strings.Fields(strings.ToLower(s))
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

// FilterNationalID keeps the ASCII digits of raw, at most NationalIDLength of them.
func FilterNationalID(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw) && b.Len() < NationalIDLength; i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func IsNationalIDValid(nic string) bool {
	return nationalIDRe.MatchString(nic)
}

// Rules carries the configurable part of validation.
type Rules struct {
	EmailDomains []string
}

func DefaultRules() Rules {
	return Rules{EmailDomains: DefaultEmailDomains}
}

func (r Rules) IsEmailValid(email string) bool {
	for _, d := range r.EmailDomains {
		if strings.HasSuffix(email, d) {
			return true
		}
	}
	return false
}

// EmailHint is the message shown under an email that fails IsEmailValid.
func (r Rules) EmailHint() string {
	return "Must end with " + strings.Join(r.EmailDomains, " or ")
}

// IsEmailValid checks email against DefaultEmailDomains.
func IsEmailValid(email string) bool {
	return DefaultRules().IsEmailValid(email)
}

func PasswordsMatch(password, confirm string) bool {
	return password == confirm
}
