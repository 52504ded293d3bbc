package scheduler

import (
	"fmt"
	"time"
)

// MarketHours is a weekday trading session in a fixed timezone
type MarketHours struct {
	Location *time.Location
	Open     time.Duration // offset from local midnight
	Close    time.Duration
}

// DefaultMarketHours is the US equity session, 09:30-16:00 New York time
func DefaultMarketHours() (MarketHours, error) {
	return NewMarketHours("America/New_York", "09:30", "16:00")
}

// NewMarketHours parses HH:MM open and close times in the named timezone
func NewMarketHours(timezone, open, closing string) (MarketHours, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return MarketHours{}, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	o, err := parseClock(open)
	if err != nil {
		return MarketHours{}, err
	}
	c, err := parseClock(closing)
	if err != nil {
		return MarketHours{}, err
	}
	if c <= o {
		return MarketHours{}, fmt.Errorf("market close %s must be after open %s", closing, open)
	}
	return MarketHours{Location: loc, Open: o, Close: c}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// IsOpen reports whether t falls on a weekday within [Open, Close]
func (m MarketHours) IsOpen(t time.Time) bool {
	if m.Location != nil {
		t = t.In(m.Location)
	}
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	offset := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	return offset >= m.Open && offset <= m.Close
}
