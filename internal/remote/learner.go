// Package remote holds the state shared between the remote-code sources
// (rtl_433, serial) and the controller: learned associations and
// consecutive-duplicate suppression.
package remote

import (
	"sync"
	"time"

	"github.com/baustella/light-control/internal/midi"
)

// Learner associates remote codes with controller signals. The operator
// presses a remote button, then the pad it should trigger; from then on the
// remote code alone reproduces the pad's signal. Nothing is persisted.
type Learner struct {
	mu       sync.Mutex
	last     string
	lastSeen time.Time
	learned  map[string]midi.Signal

	// Expiry drops the last observed code after this long so a stale code
	// is not paired with an unrelated later press. Zero keeps it forever.
	Expiry time.Duration
	now    func() time.Time
}

// NewLearner returns an empty learner.
func NewLearner(expiry time.Duration) *Learner {
	return &Learner{
		learned: make(map[string]midi.Signal),
		Expiry:  expiry,
		now:     time.Now,
	}
}

// Observe records code as the most recent remote code.
func (l *Learner) Observe(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = code
	l.lastSeen = l.now()
}

// Associate links sig to the most recently observed code, unless that code
// is already learned. It reports whether a new association was made.
func (l *Learner) Associate(sig midi.Signal) (code string, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last == "" {
		return "", false
	}
	if l.Expiry > 0 && l.now().Sub(l.lastSeen) > l.Expiry {
		return "", false
	}
	if _, exists := l.learned[l.last]; exists {
		return "", false
	}
	l.learned[l.last] = sig
	return l.last, true
}

// Lookup returns the signal learned for code.
func (l *Learner) Lookup(code string) (midi.Signal, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sig, ok := l.learned[code]
	return sig, ok
}

// Len returns the number of learned codes.
func (l *Learner) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.learned)
}

// Clear forgets everything.
func (l *Learner) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = ""
	l.lastSeen = time.Time{}
	l.learned = make(map[string]midi.Signal)
}
