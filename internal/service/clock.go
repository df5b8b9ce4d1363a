package service

import "time"

// Clock supplies the timestamps services stamp on records
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns At
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
