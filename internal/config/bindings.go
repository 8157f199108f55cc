package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Binding assigns a MIDI note to a remote or serial code.
type Binding struct {
	Code string
	Note uint8
}

// Bindings is an ordered code to note table. It is safe for concurrent use
// and keeps insertion order when written to JSON.
type Bindings struct {
	mu    sync.RWMutex
	order []string
	notes map[string]uint8
}

func NewBindings() *Bindings {
	return &Bindings{notes: make(map[string]uint8)}
}

// Lookup returns the note bound to code.
func (b *Bindings) Lookup(code string) (uint8, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.notes[code]
	return n, ok
}

// Insert binds code to note. An existing code keeps its position.
func (b *Bindings) Insert(code string, note uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.notes[code]; !ok {
		b.order = append(b.order, code)
	}
	b.notes[code] = note
}

// Remove deletes code and reports whether it was bound.
func (b *Bindings) Remove(code string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.notes[code]; !ok {
		return false
	}
	delete(b.notes, code)
	for i, c := range b.order {
		if c == code {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

func (b *Bindings) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// List returns a snapshot in insertion order.
func (b *Bindings) List() []Binding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Binding, 0, len(b.order))
	for _, c := range b.order {
		out = append(out, Binding{Code: c, Note: b.notes[c]})
	}
	return out
}

func (b *Bindings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bd := range b.List() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bd.Code)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", bd.Note)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *Bindings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("bindings must be a JSON object")
	}

	fresh := NewBindings()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code := tok.(string)

		var note int
		if err := dec.Decode(&note); err != nil {
			return fmt.Errorf("binding %q: %w", code, err)
		}
		if note < 0 || note > 0x7F {
			return fmt.Errorf("binding %q: note %d out of range", code, note)
		}
		fresh.Insert(code, uint8(note))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.order, b.notes = fresh.order, fresh.notes
	return nil
}
