package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const requestWindow = time.Second

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter caps requests per user per second. A zero perSecond disables it.
type Limiter struct {
	store     WindowStore
	perSecond int
}

func NewLimiter(store WindowStore, perSecond int) *Limiter {
	if perSecond < 0 {
		perSecond = 0
	}

	return &Limiter{
		store:     store,
		perSecond: perSecond,
	}
}

// Allow reports whether the user may proceed. When the limit is exceeded it
// returns the number of seconds until the window resets.
func (l *Limiter) Allow(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.perSecond == 0 {
		return 0, true, nil
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, requestKey(userID), requestWindow)
	if err != nil {
		return 0, false, err
	}

	if count > int64(l.perSecond) {
		return ceilSeconds(ttl), false, nil
	}

	return 0, true, nil
}

func requestKey(userID int64) string {
	return "rate:user:" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}

	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec < 1 {
		sec = 1
	}

	return sec
}
