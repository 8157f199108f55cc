package config

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindings_InsertKeepsOrder(t *testing.T) {
	b := NewBindings()
	b.Insert("c", 1)
	b.Insert("a", 2)
	b.Insert("b", 3)
	b.Insert("c", 9)

	assert.Equal(t, []Binding{{"c", 9}, {"a", 2}, {"b", 3}}, b.List())

	n, ok := b.Lookup("c")
	assert.True(t, ok)
	assert.Equal(t, uint8(9), n)

	_, ok = b.Lookup("missing")
	assert.False(t, ok)
}

func TestBindings_Remove(t *testing.T) {
	b := NewBindings()
	b.Insert("a", 1)
	b.Insert("b", 2)

	assert.True(t, b.Remove("a"))
	assert.False(t, b.Remove("a"))
	assert.Equal(t, []Binding{{"b", 2}}, b.List())
}

func TestBindings_JSONPreservesOrder(t *testing.T) {
	b := NewBindings()
	b.Insert("zeta", 4)
	b.Insert("alpha", 0)
	b.Insert(`quo"te`, 127)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":4,"alpha":0,"quo\"te":127}`, string(data))
	assert.Equal(t, `{"zeta":4,"alpha":0,"quo\"te":127}`, string(data))

	decoded := NewBindings()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, b.List(), decoded.List())
}

func TestBindings_Concurrent(t *testing.T) {
	b := NewBindings()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := fmt.Sprintf("code%d", i%10)
			b.Insert(code, uint8(i%12))
			b.Lookup(code)
			b.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, b.Len())
}

func TestNoteName(t *testing.T) {
	assert.Equal(t, "129", NoteName(0))
	assert.Equal(t, "140", NoteName(11))
	assert.Equal(t, "60", NoteName(60))

	n, ok := ParseNoteName("135")
	assert.True(t, ok)
	assert.Equal(t, uint8(6), n)

	_, ok = ParseNoteName("C#")
	assert.False(t, ok)
}
