package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrEmpty     = errors.New("text is empty")
	ErrTooShort  = errors.New("text is too short")
	ErrTooLong   = errors.New("text is too long")
	ErrForbidden = errors.New("forbidden content")
)

var (
	urlRe        = regexp.MustCompile(`https?://[^\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	usernameRe   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

const urlPlaceholder = "[ссылка]"

// ProfileText checks length bounds and the forbidden substring list
// (case-insensitive).
func ProfileText(text string, minLen, maxLen int, forbidden []string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmpty
	}

	if len([]rune(text)) < minLen {
		return fmt.Errorf("%w: minimum %d characters", ErrTooShort, minLen)
	}
	if len([]rune(text)) > maxLen {
		return fmt.Errorf("%w: maximum %d characters", ErrTooLong, maxLen)
	}

	lower := strings.ToLower(text)
	for _, word := range forbidden {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return ErrForbidden
		}
	}

	return nil
}

// SanitizeText collapses whitespace runs and optionally redacts URLs.
func SanitizeText(text string, redactURLs bool) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if redactURLs {
		text = urlRe.ReplaceAllString(text, urlPlaceholder)
	}

	return whitespaceRe.ReplaceAllString(text, " ")
}

// SanitizeNote only trims: internal line breaks in the note field are kept
// verbatim.
func SanitizeNote(text string) string {
	return strings.TrimSpace(text)
}

func Username(username string) error {
	username = strings.TrimPrefix(username, "@")
	if username == "" {
		return ErrEmpty
	}

	if len(username) < 5 || len(username) > 32 {
		return fmt.Errorf("%w: username must be 5-32 characters", ErrTooShort)
	}

	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: only letters, digits and underscore", ErrForbidden)
	}

	return nil
}

func Age(raw string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("age must be a number")
	}

	if age < 10 || age > 120 {
		return 0, fmt.Errorf("age must be between 10 and 120")
	}

	return age, nil
}

// DayCount validates an AFK request duration, inclusive range [1,14].
func DayCount(raw string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("day count must be a number")
	}

	if days < 1 || days > 14 {
		return 0, fmt.Errorf("day count must be between 1 and 14")
	}

	return days, nil
}

// IsSpam flags text whose combined ratio of uppercase letters and
// non-alphanumeric symbols exceeds the threshold. It is an advisory check
// for moderation tooling, not an automatic filter.
func IsSpam(text string, threshold float64) bool {
	runes := []rune(text)
	if len(runes) < 5 {
		return false
	}

	var suspicious int
	for _, r := range runes {
		if unicode.IsUpper(r) {
			suspicious++
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			suspicious++
		}
	}

	return float64(suspicious)/float64(len(runes)) > threshold
}
