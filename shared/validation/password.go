package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	// SpecialCharacters is the set a password must draw at least one character from.
	SpecialCharacters = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

// Requirement keys, stable across front ends.
const (
	ReqLength    = "length"
	ReqUppercase = "uppercase"
	ReqLowercase = "lowercase"
	ReqNumber    = "number"
	ReqSpecial   = "special"
)

// PasswordRequirements holds the five independent password checks.
type PasswordRequirements struct {
	Length    bool
	Uppercase bool
	Lowercase bool
	Number    bool
	Special   bool
}

// Requirement is one line of the checklist shown next to the password input.
type Requirement struct {
	Key   string
	Label string
	Met   bool
}

func CheckPassword(password string) PasswordRequirements {
	return PasswordRequirements{
		Length:    utf8.RuneCountInString(password) >= PasswordMinLength,
		Uppercase: strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }),
		Lowercase: strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }),
		Number:    strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }),
		Special:   strings.ContainsAny(password, SpecialCharacters),
	}
}

// Met is the AND of all five checks.
func (p PasswordRequirements) Met() bool {
	return p.Length && p.Uppercase && p.Lowercase && p.Number && p.Special
}

// Items lists the checks in display order.
func (p PasswordRequirements) Items() []Requirement {
	return []Requirement{
		{Key: ReqLength, Label: "At least 8 characters", Met: p.Length},
		{Key: ReqUppercase, Label: "At least 1 uppercase letter", Met: p.Uppercase},
		{Key: ReqLowercase, Label: "At least 1 lowercase letter", Met: p.Lowercase},
		{Key: ReqNumber, Label: "At least 1 number", Met: p.Number},
		{Key: ReqSpecial, Label: "At least 1 special character", Met: p.Special},
	}
}

func IsPasswordValid(password string) bool {
	return CheckPassword(password).Met()
}
