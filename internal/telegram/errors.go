package telegram

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrorKind classifies a Telegram API failure for retry decisions.
type ErrorKind int

const (
	// KindTransient failures (timeouts, 5xx) are worth retrying.
	KindTransient ErrorKind = iota
	// KindThrottled means the API asked us to back off for RetryAfter seconds.
	KindThrottled
	// KindPermanent failures (blocked bot, bad chat id) never succeed on retry.
	KindPermanent
)

// Classify inspects an API error and reports how to handle it, plus the
// server-requested pause in seconds for throttled responses.
func Classify(err error) (ErrorKind, int) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			return KindThrottled, apiErr.RetryAfter
		}
		switch {
		case apiErr.Code == 429:
			return KindThrottled, 1
		case apiErr.Code >= 500:
			return KindTransient, 0
		case apiErr.Code >= 400:
			return KindPermanent, 0
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "blocked by the user") ||
		strings.Contains(msg, "chat not found") ||
		strings.Contains(msg, "user is deactivated") {
		return KindPermanent, 0
	}

	return KindTransient, 0
}
