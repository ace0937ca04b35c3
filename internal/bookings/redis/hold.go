package redis

import (
	"context"
	"fmt"
	"time"

	"bus-fleet/internal/logger"

	"github.com/go-redis/redis/v8"
)

const defaultHoldTTL = 30 * time.Second

// releaseScript deletes the hold only if it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SeatHold is a short-lived Redis hold on one seat of one schedule. It keeps
// concurrent booking attempts from racing to the database.
type SeatHold struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewSeatHold(client *redis.Client, ttl time.Duration, log *logger.Logger) *SeatHold {
	if ttl <= 0 {
		ttl = defaultHoldTTL
	}
	return &SeatHold{Client: client, TTL: ttl, Logger: log}
}

func holdKey(scheduleID string, seatNumber int) string {
	return fmt.Sprintf("seat_hold:%s:%d", scheduleID, seatNumber)
}

// LockSeat reports false when another token already holds the seat.
func (h *SeatHold) LockSeat(ctx context.Context, scheduleID string, seatNumber int, token string) (bool, error) {
	ok, err := h.Client.SetNX(ctx, holdKey(scheduleID, seatNumber), token, h.TTL).Result()
	if err != nil {
		return false, err
	}
	if ok && h.Logger != nil {
		h.Logger.Debug("REDIS", fmt.Sprintf("hold %s#%d for %s", scheduleID, seatNumber, h.TTL))
	}
	return ok, nil
}

// UnlockSeat is a no-op when the hold expired or belongs to another token.
func (h *SeatHold) UnlockSeat(ctx context.Context, scheduleID string, seatNumber int, token string) error {
	return releaseScript.Run(ctx, h.Client, []string{holdKey(scheduleID, seatNumber)}, token).Err()
}

// IsHeld reports whether any attempt currently holds the seat.
func (h *SeatHold) IsHeld(ctx context.Context, scheduleID string, seatNumber int) (bool, error) {
	_, err := h.Client.Get(ctx, holdKey(scheduleID, seatNumber)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
