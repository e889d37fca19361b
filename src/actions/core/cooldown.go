package core

import (
	"sync"
	"time"
)

// Cooldown throttles how often one user may run a command.
type Cooldown interface {
	CanUse(userID string) bool
	TimeUntilNext(userID string) time.Duration
}

// RateLimiter is the in-process Cooldown used when redis is not configured.
type RateLimiter struct {
	users map[string]time.Time
	mu    sync.Mutex
	limit time.Duration
	now   func() time.Time
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		users: make(map[string]time.Time),
		limit: limit,
		now:   time.Now,
	}
}

func (rl *RateLimiter) CanUse(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	lastUse, exists := rl.users[userID]
	if !exists || now.Sub(lastUse) >= rl.limit {
		rl.users[userID] = now
		rl.prune(now)
		return true
	}
	return false
}

func (rl *RateLimiter) TimeUntilNext(userID string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lastUse, exists := rl.users[userID]
	if !exists {
		return 0
	}

	elapsed := rl.now().Sub(lastUse)
	if elapsed >= rl.limit {
		return 0
	}
	return rl.limit - elapsed
}

// prune drops expired entries once the map grows; callers hold mu.
func (rl *RateLimiter) prune(now time.Time) {
	if len(rl.users) < 1024 {
		return
	}
	for id, last := range rl.users {
		if now.Sub(last) >= rl.limit {
			delete(rl.users, id)
		}
	}
}
