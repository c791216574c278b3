/*
Package charmap assigns a printable character to each distinct color of a
sprite.

Characters are drawn in order from an Alphabet the first time a color is
seen and are never reused. A Map remembers the order colors were added in,
which is also the order used to break ties when looking up the nearest
color.
*/
package charmap

import (
	"errors"
	"fmt"

	"github.com/bodgit/s4c/palette"
)

var (
	// ErrAlphabetExhausted is returned when there are more distinct
	// colors than characters in the alphabet.
	ErrAlphabetExhausted = errors.New("charmap: alphabet exhausted")

	// ErrBadAlphabet is returned by Alphabet.Validate.
	ErrBadAlphabet = errors.New("charmap: invalid alphabet")
)

// Alphabet is the ordered set of characters assigned to colors.
type Alphabet string

// DefaultAlphabet runs from '1' to '~'. Characters that need escaping in a C
// string literal are escaped on output rather than skipped.
var DefaultAlphabet = func() Alphabet {
	b := make([]byte, 0, '~'-'1'+1)
	for c := byte('1'); c <= '~'; c++ {
		b = append(b, c)
	}
	return Alphabet(b)
}()

// Validate checks a is non-empty printable ASCII with no repeats.
func (a Alphabet) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: empty", ErrBadAlphabet)
	}
	var seen [128]bool
	for i := 0; i < len(a); i++ {
		c := a[i]
		if c <= ' ' || c > '~' {
			return fmt.Errorf("%w: %q is not printable", ErrBadAlphabet, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %q repeated", ErrBadAlphabet, c)
		}
		seen[c] = true
	}
	return nil
}

// Map is an insertion-ordered mapping of colors to characters.
type Map struct {
	alphabet Alphabet
	keys     []palette.RGB
	chars    map[palette.RGB]byte
	frozen   bool
}

// New returns an empty Map drawing characters from a.
func New(a Alphabet) *Map {
	return &Map{
		alphabet: a,
		chars:    make(map[palette.RGB]byte),
	}
}

func (m *Map) Len() int {
	return len(m.keys)
}

func (m *Map) Colors() []palette.RGB {
	return append([]palette.RGB{}, m.keys...)
}

func (m *Map) Char(c palette.RGB) (byte, bool) {
	ch, ok := m.chars[c]
	return ch, ok
}

// Freeze stops any further colors being assigned; Resolve falls back to the
// nearest color instead.
func (m *Map) Freeze() {
	m.frozen = true
}

func (m *Map) Frozen() bool {
	return m.frozen
}

// Assign returns the character for c, assigning the next one from the
// alphabet if c has not been seen before.
func (m *Map) Assign(c palette.RGB) (byte, error) {
	if ch, ok := m.chars[c]; ok {
		return ch, nil
	}
	if m.frozen {
		return 0, fmt.Errorf("charmap: cannot assign %s to a frozen map", c)
	}
	if len(m.keys) >= len(m.alphabet) {
		return 0, fmt.Errorf("%w: more than %d colors", ErrAlphabetExhausted, len(m.alphabet))
	}
	ch := m.alphabet[len(m.keys)]
	m.keys = append(m.keys, c)
	m.chars[c] = ch
	return ch, nil
}

// Seed assigns every color of t in index order.
func (m *Map) Seed(t palette.Table) error {
	for _, c := range t {
		if _, err := m.Assign(c); err != nil {
			return err
		}
	}
	return nil
}

// Nearest returns the character of the color closest to c. The earliest
// added color wins a tie. The map is never modified.
func (m *Map) Nearest(c palette.RGB) (byte, bool) {
	if len(m.keys) == 0 {
		return 0, false
	}
	best, bestSum := m.keys[0], c.Distance2(m.keys[0])
	for _, k := range m.keys[1:] {
		if sum := c.Distance2(k); sum < bestSum {
			best, bestSum = k, sum
		}
	}
	return m.chars[best], true
}

// Resolve returns the character for c. Unknown colors are assigned a new
// character unless the map is frozen, in which case the nearest color is
// used.
func (m *Map) Resolve(c palette.RGB) (byte, error) {
	if ch, ok := m.chars[c]; ok {
		return ch, nil
	}
	if !m.frozen {
		return m.Assign(c)
	}
	if ch, ok := m.Nearest(c); ok {
		return ch, nil
	}
	return 0, fmt.Errorf("charmap: no color to match %s", c)
}
