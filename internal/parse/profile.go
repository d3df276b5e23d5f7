// Package parse extracts profile fields from pasted free-form text. It is a
// best-effort helper: heuristics over a small rule set, no precision
// guarantees.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Fields struct {
	Username  string
	Age       int
	Name      string
	Country   string
	City      string
	Timezone  string
	TzOffset  *int
	Languages string
	Note      string
}

const (
	FieldAge      = "age"
	FieldUsername = "username"
)

var (
	ageRe      = regexp.MustCompile(`\b([8-9][0-9]|[1-7]?[0-9])\b`)
	tzRe       = regexp.MustCompile(`(UTC)?\s*([+-]\d{1,2})`)
	usernameRe = regexp.MustCompile(`@([A-Za-z0-9_]{1,32})`)
	nameRe     = regexp.MustCompile(`\b([А-ЯЁA-Z][а-яёa-z]+)\b`)
	cityRe     = regexp.MustCompile(`[,:]\s*([А-Яа-яЁёA-Za-z\- ]{3,40})`)
)

var knownCountries = []string{"Россия", "Украина", "Казахстан", "Беларусь", "Азербайджан"}

const noteLimit = 400

// ProfileText parses the text and reports which critical fields (age,
// username) are still missing and must be asked for.
func ProfileText(text string) (Fields, []string) {
	var f Fields

	if m := ageRe.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil && age >= 8 && age <= 99 {
			f.Age = age
		}
	}

	if m := tzRe.FindStringSubmatch(text); m != nil {
		if offset, err := strconv.Atoi(m[2]); err == nil {
			f.TzOffset = &offset
			if m[1] != "" {
				f.Timezone = fmt.Sprintf("UTC%+d", offset)
			} else {
				f.Timezone = fmt.Sprintf("%+d к мск", offset)
			}
		}
	}

	if m := usernameRe.FindStringSubmatch(text); m != nil {
		f.Username = m[1]
	}

	if m := nameRe.FindStringSubmatch(text); m != nil {
		f.Name = m[1]
	}

	lower := strings.ToLower(text)
	for _, c := range knownCountries {
		if strings.Contains(lower, strings.ToLower(c)) {
			f.Country = c
			break
		}
	}

	if m := cityRe.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if line := strings.SplitN(candidate, "\n", 2)[0]; len(line) > 2 {
			f.City = strings.TrimSpace(line)
		}
	}

	// comma-separated word list reads as languages
	if parts := splitNonEmpty(text, ","); len(parts) >= 2 {
		if len(parts) > 5 {
			parts = parts[:5]
		}
		f.Languages = strings.Join(parts, ", ")
	}

	runes := []rune(text)
	if len(runes) > noteLimit {
		f.Note = string(runes[:noteLimit])
	} else {
		f.Note = text
	}

	var missing []string
	if f.Age == 0 {
		missing = append(missing, FieldAge)
	}
	if f.Username == "" {
		missing = append(missing, FieldUsername)
	}

	return f, missing
}

// LooksLikeProfile is the implicit flow-start detector: a recognized age or
// username token, or reasonably long text.
func LooksLikeProfile(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	f, _ := ProfileText(text)

	return f.Age != 0 || f.Username != "" || len([]rune(text)) > 80
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
