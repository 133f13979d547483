package engine

import "time"

// pacer spaces ticks at a fixed interval. A late tick pushes the schedule forward instead of
// queuing catch-up ticks, so at most one tick is ever outstanding.
type pacer struct {
	interval time.Duration
	next     time.Time
	now      func() time.Time
	sleep    func(time.Duration)
}

// wait blocks until the next tick is due and returns the tick's timestamp.
func (p *pacer) wait() time.Time {
	now := p.now()
	if p.next.IsZero() {
		p.next = now
	}
	if now.Before(p.next) {
		p.sleep(p.next.Sub(now))
		now = p.now()
	}

	p.next = p.next.Add(p.interval)
	if !p.next.After(now) {
		p.next = now.Add(p.interval)
	}
	return now
}
