package clock

import "time"

// Fake is a manually advanced Clock for tests. Callbacks run synchronously
// inside Advance, in deadline order, with Now set to their deadline.
// It is not safe for concurrent use.
type Fake struct {
	now    time.Time
	seq    int
	timers []*fakeTimer
	err    error
}

type fakeTimer struct {
	f       *Fake
	at      time.Time
	seq     int
	fn      func()
	pending bool
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) (Timer, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	t := &fakeTimer{f: f, at: f.now.Add(d), seq: f.seq, fn: fn, pending: true}
	f.timers = append(f.timers, t)
	return t, nil
}

// FailWith makes every later AfterFunc call return err. A nil err restores
// normal scheduling.
func (f *Fake) FailWith(err error) {
	f.err = err
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (f *Fake) Pending() int {
	return len(f.timers)
}

// Advance moves the clock forward by d, firing every timer that comes due,
// including timers scheduled by callbacks during the advance.
func (f *Fake) Advance(d time.Duration) {
	target := f.now.Add(d)
	for {
		next := f.nextDue(target)
		if next == nil {
			break
		}
		f.remove(next)
		next.pending = false
		f.now = next.at
		next.fn()
	}
	f.now = target
}

func (f *Fake) nextDue(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, t := range f.timers {
		if t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (f *Fake) remove(t *fakeTimer) {
	for i, cur := range f.timers {
		if cur == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}

func (t *fakeTimer) Stop() bool {
	if !t.pending {
		return false
	}
	t.pending = false
	t.f.remove(t)
	return true
}
