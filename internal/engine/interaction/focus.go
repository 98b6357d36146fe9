package interaction

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/logger"
)

// FocusTarget is the consumer whose input gets switched off while someone
// else owns the pointer. The camera implements it.
type FocusTarget interface {
	SetInputEnabled(enabled bool)
}

// FocusArbiter hands out pointer focus. Any number of holders may take the
// pointer away from the target; the target gets it back once the last holder
// releases it.
type FocusArbiter struct {
	target  FocusTarget
	holders map[string]struct{}
}

// NewFocusArbiter creates an arbiter and enables the target's input.
func NewFocusArbiter(target FocusTarget) *FocusArbiter {
	a := &FocusArbiter{
		target:  target,
		holders: make(map[string]struct{}),
	}
	if target != nil {
		target.SetInputEnabled(true)
	}
	return a
}

// Acquire takes the pointer for holder. Acquiring twice is a no-op.
func (a *FocusArbiter) Acquire(holder string) {
	if _, ok := a.holders[holder]; ok {
		return
	}
	a.holders[holder] = struct{}{}
	logger.Debug("pointer focus acquired", zap.String("holder", holder), zap.Int("holders", len(a.holders)))
	if len(a.holders) == 1 && a.target != nil {
		a.target.SetInputEnabled(false)
	}
}

// Release gives up holder's claim. Releasing an unknown holder is a no-op.
func (a *FocusArbiter) Release(holder string) {
	if _, ok := a.holders[holder]; !ok {
		return
	}
	delete(a.holders, holder)
	logger.Debug("pointer focus released", zap.String("holder", holder), zap.Int("holders", len(a.holders)))
	if len(a.holders) == 0 && a.target != nil {
		a.target.SetInputEnabled(true)
	}
}

// Held reports whether any holder has the pointer.
func (a *FocusArbiter) Held() bool {
	return len(a.holders) > 0
}

// Holders returns the current holders, sorted.
func (a *FocusArbiter) Holders() []string {
	out := make([]string, 0, len(a.holders))
	for h := range a.holders {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
