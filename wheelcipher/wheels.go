// Package wheelcipher implements the keyed wheel substitution cipher used for
// INQ messages: five aligned wheels (one alphabet, four code wheels) rotated by
// a shared key map letters to two-character codes and back.
//
// It is a puzzle cipher. Nothing here provides confidentiality.
package wheelcipher

import (
	"fmt"
	"strings"
)

// WheelSize is the number of positions on every wheel.
const WheelSize = 26

// CodeWheels is the number of code wheels in a WheelSet.
const CodeWheels = 4

// KeyLength is the number of normalized key characters consumed by Build.
const KeyLength = 1 + 2*CodeWheels

// Wheel is one ordered wheel of letters or codes.
type Wheel [WheelSize]string

// Index returns the position of v on the wheel, or -1.
func (w Wheel) Index(v string) int {
	for i, entry := range w {
		if entry == v {
			return i
		}
	}
	return -1
}

// Rotate returns the wheel shifted left so that v comes first. Relative order
// is kept with wrap-around. ok is false when v is not on the wheel.
func (w Wheel) Rotate(v string) (rotated Wheel, ok bool) {
	idx := w.Index(v)
	if idx < 0 {
		return w, false
	}
	n := copy(rotated[:], w[idx:])
	copy(rotated[n:], w[:idx])
	return rotated, true
}

func (w Wheel) String() string {
	return strings.Join(w[:], " ")
}

// CanonicalAlphabet returns the unrotated alphabet wheel a..z.
func CanonicalAlphabet() Wheel {
	var w Wheel
	for i := range w {
		w[i] = string(rune('a' + i))
	}
	return w
}

// CanonicalCodeWheel returns code wheel n (0..3) before rotation: 01-26, 27-52,
// 53-78, and 79-99 followed by 00, v1, v2, v3, v4.
func CanonicalCodeWheel(n int) Wheel {
	if n < 0 || n >= CodeWheels {
		panic(fmt.Sprintf("wheelcipher: code wheel %d out of range", n))
	}
	var w Wheel
	if n < CodeWheels-1 {
		for i := range w {
			w[i] = fmt.Sprintf("%02d", n*WheelSize+i+1)
		}
		return w
	}
	i := 0
	for v := 79; v <= 99; v++ {
		w[i] = fmt.Sprintf("%02d", v)
		i++
	}
	for _, extra := range []string{"00", "v1", "v2", "v3", "v4"} {
		w[i] = extra
		i++
	}
	return w
}

// WheelSet holds the alphabet wheel and the four code wheels derived from one
// key. Position i of every code wheel encodes alphabet letter i. A WheelSet is
// never modified after Build and may be shared between goroutines.
type WheelSet struct {
	key      string
	alphabet Wheel
	codes    [CodeWheels]Wheel

	letterIndex map[rune]int
	codeIndex   [CodeWheels]map[string]int
}

// Build derives a WheelSet from a key such as "U 14 48 56 V2". After
// normalization the first character rotates the alphabet and the next four
// two-character slices rotate wheels 1 to 4. Anything after the ninth
// character is ignored.
func Build(key string) (*WheelSet, error) {
	normalized := NormalizeKey(key)
	runes := []rune(normalized)
	if len(runes) < KeyLength {
		return nil, &KeyError{Reason: fmt.Sprintf("need %d characters, have %d", KeyLength, len(runes))}
	}

	letter := string(runes[0])
	if runes[0] < 'a' || runes[0] > 'z' {
		return nil, &KeyError{Slice: letter, Reason: "first character must be a letter"}
	}

	ws := &WheelSet{key: string(runes[:KeyLength])}

	var ok bool
	ws.alphabet, ok = CanonicalAlphabet().Rotate(letter)
	if !ok {
		return nil, &KeyError{Slice: letter, Reason: "letter not on alphabet wheel"}
	}

	for n := 0; n < CodeWheels; n++ {
		slice := string(runes[1+2*n : 3+2*n])
		ws.codes[n], ok = CanonicalCodeWheel(n).Rotate(slice)
		if !ok {
			return nil, &KeyError{Slice: slice, Reason: fmt.Sprintf("not a code on wheel %d", n+1)}
		}
	}

	ws.letterIndex = make(map[rune]int, WheelSize)
	for i, l := range ws.alphabet {
		ws.letterIndex[rune(l[0])] = i
	}
	for n, w := range ws.codes {
		ws.codeIndex[n] = make(map[string]int, WheelSize)
		for i, code := range w {
			ws.codeIndex[n][code] = i
		}
	}

	return ws, nil
}

// Key returns the normalized nine-character key the set was built from.
func (ws *WheelSet) Key() string {
	return ws.key
}

// Alphabet returns a copy of the rotated alphabet wheel.
func (ws *WheelSet) Alphabet() Wheel {
	return ws.alphabet
}

// CodeWheel returns a copy of rotated code wheel n, counting from 1.
func (ws *WheelSet) CodeWheel(n int) Wheel {
	if n < 1 || n > CodeWheels {
		panic(fmt.Sprintf("wheelcipher: code wheel %d out of range", n))
	}
	return ws.codes[n-1]
}

// Codes returns the four codes that stand for letter, one per code wheel.
func (ws *WheelSet) Codes(letter rune) ([CodeWheels]string, bool) {
	var out [CodeWheels]string
	i, ok := ws.letterIndex[letter]
	if !ok {
		return out, false
	}
	for n := range ws.codes {
		out[n] = ws.codes[n][i]
	}
	return out, true
}

// Letter looks a code up on wheels 1 to 4 in order and returns its letter.
func (ws *WheelSet) Letter(code string) (string, bool) {
	for n := range ws.codeIndex {
		if i, ok := ws.codeIndex[n][code]; ok {
			return ws.alphabet[i], true
		}
	}
	return "", false
}
