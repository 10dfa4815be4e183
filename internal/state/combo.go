package state

import "time"

// Combo tracks match times inside a trailing window.
type Combo struct {
	Window    time.Duration
	Threshold int
	hits      []time.Time
}

func NewCombo(window time.Duration, threshold int) Combo {
	return Combo{Window: window, Threshold: threshold}
}

// Record adds a match at now and drops matches older than the window. It
// reports true, and clears the tracker, when the window holds Threshold
// matches.
func (c *Combo) Record(now time.Time) bool {
	c.hits = append(c.hits, now)

	cutoff := now.Add(-c.Window)
	i := 0
	for i < len(c.hits) && c.hits[i].Before(cutoff) {
		i++
	}
	c.hits = c.hits[i:]

	if len(c.hits) >= c.Threshold {
		c.hits = nil
		return true
	}
	return false
}

// Len is the number of matches currently counted toward a bonus.
func (c Combo) Len() int {
	return len(c.hits)
}
