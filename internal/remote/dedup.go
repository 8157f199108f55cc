package remote

import "sync"

// Dedup drops a code when it equals the previous one passed.
type Dedup struct {
	mu   sync.Mutex
	last string
	set  bool
}

// Pass reports whether code differs from the previous code and records it.
func (d *Dedup) Pass(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.set && d.last == code {
		return false
	}
	d.last, d.set = code, true
	return true
}

// Reset forgets the previous code.
func (d *Dedup) Reset() {
	d.mu.Lock()
	d.last, d.set = "", false
	d.mu.Unlock()
}
