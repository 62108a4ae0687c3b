package button

// Debouncer confirms a button level only after observing it for n
// consecutive samples, filtering contact bounce. One counter per
// button.
type Debouncer struct {
	n      int
	prev   [4]bool
	stable [4]bool
	count  [4]int
}

// NewDebouncer returns a Debouncer requiring n consecutive identical
// samples.
func NewDebouncer(n int) *Debouncer {
	return &Debouncer{n: n}
}

// Feed advances the debouncer with one poll result and reports
// confirmed press edges. A physical press fires exactly once, on the
// sample that confirms the level, no matter how long the button is
// held or how much it bounced on the way down.
func (d *Debouncer) Feed(sample [4]bool) [4]bool {
	var pressed [4]bool
	for i, level := range sample {
		if level == d.prev[i] {
			d.count[i]++
		} else {
			d.count[i] = 1
			d.prev[i] = level
		}
		if d.count[i] == d.n {
			if level && !d.stable[i] {
				pressed[i] = true
			}
			d.stable[i] = level
		}
	}
	return pressed
}
