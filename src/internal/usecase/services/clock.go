package services

import (
	"sync/atomic"
	"time"
)

// Clock stamps transactions. Every call returns a UTC time at microsecond
// precision strictly after the previous one, even if the wall clock stalls or
// steps backwards. Safe for concurrent use.
type Clock struct {
	last atomic.Int64
	now  func() time.Time
}

func NewClock() *Clock {
	return NewClockFunc(time.Now)
}

// NewClockFunc is NewClock with an injectable time source.
func NewClockFunc(now func() time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	for {
		prev := c.last.Load()
		next := c.now().UnixMicro()
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return time.UnixMicro(next).UTC()
		}
	}
}
