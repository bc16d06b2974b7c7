package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reCollapseSpaces = regexp.MustCompile(`\s+`)
	reWordSeparators = regexp.MustCompile(`[ \-_]+`)
	reValidPhone     = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

	supportedRegions = []string{"IN", "US"}
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseSpaces(s string) string {
	return reCollapseSpaces.ReplaceAllString(s, " ")
}

// SanitizeEmail normalizes an email for lookups; addresses are stored and
// matched lowercase.
func SanitizeEmail(input string) string {
	return trimAndLower(input)
}

// SanitizeName lowercases and collapses whitespace. Academy names, cities
// and addresses are stored lowercase and re-capitalized for display.
func SanitizeName(input string) string {
	p := Pipeline{trimAndLower, collapseSpaces}
	return p.Apply(input)
}

// SanitizeCity is the lookup normalization for city search.
func SanitizeCity(input string) string {
	p := Pipeline{trimAndLower, collapseSpaces}
	return p.Apply(input)
}

// SanitizePhone normalizes a phone to E.164, trying each supported region.
// Returns the input unchanged if it does not look like a phone at all, and
// empty if it looks like one but cannot be parsed.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" || !reValidPhone.MatchString(phone) {
		return phone
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}

// CapitalizeWords turns a stored lowercase name back into display form:
// words split on spaces, hyphens or underscores, each first letter upper.
func CapitalizeWords(input string) string {
	words := reWordSeparators.Split(strings.ToLower(input), -1)

	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
