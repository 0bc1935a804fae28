// Package moneyinput implements the keystroke policy of the formatted amount
// field: which keys are accepted, how the buffer is normalised while typing
// and how it is padded when the field loses focus.
package moneyinput

import (
	"strings"
	"unicode/utf8"

	"expensetracker/internal/core"
)

// Key is a single keystroke. Digits, '.' (or ',') and Backspace are
// meaningful; everything else is ignored.
type Key rune

const Backspace Key = '\b'

// Next returns the buffer that results from pressing key on buf.
// Rejected keys leave the buffer unchanged.
func Next(buf string, key Key, precision int) string {
	switch {
	case key == Backspace:
		if buf == "" {
			return buf
		}
		_, size := utf8.DecodeLastRuneInString(buf)
		return buf[:len(buf)-size]

	case key == '.' || key == ',':
		if precision <= 0 || strings.Contains(buf, ".") {
			return buf
		}
		if buf == "" {
			return "0."
		}
		return buf + "."

	case key >= '0' && key <= '9':
		if i := strings.IndexByte(buf, '.'); i >= 0 && len(buf)-i-1 >= precision {
			return buf
		}
		return trimLeadingZeros(buf + string(key))
	}
	return buf
}

// Blur pads or truncates the fractional part to exactly precision digits.
// Buffers without a decimal point are returned as they are.
func Blur(buf string, precision int) string {
	i := strings.IndexByte(buf, '.')
	if i < 0 {
		return buf
	}
	intPart, frac := buf[:i], buf[i+1:]
	if intPart == "" {
		intPart = "0"
	}
	if precision <= 0 {
		return intPart
	}
	if len(frac) > precision {
		frac = frac[:precision]
	}
	return intPart + "." + frac + strings.Repeat("0", precision-len(frac))
}

// trimLeadingZeros strips zeros from the integer part, keeping one zero when
// nothing else is left of it.
func trimLeadingZeros(buf string) string {
	intPart, rest := buf, ""
	if i := strings.IndexByte(buf, '.'); i >= 0 {
		intPart, rest = buf[:i], buf[i:]
	}
	trimmed := strings.TrimLeft(intPart, "0")
	if trimmed == "" && intPart != "" {
		trimmed = "0"
	}
	return trimmed + rest
}

// Field is a stateful amount field built on Next and Blur.
type Field struct {
	precision int
	text      string
}

func NewField(precision int) *Field {
	if precision < 0 {
		precision = 0
	}
	return &Field{precision: precision}
}

// Press applies every rune of keys in order.
func (f *Field) Press(keys ...Key) {
	for _, k := range keys {
		f.text = Next(f.text, k, f.precision)
	}
}

// Type presses each rune of s.
func (f *Field) Type(s string) {
	for _, r := range s {
		f.Press(Key(r))
	}
}

func (f *Field) Backspace() {
	f.Press(Backspace)
}

func (f *Field) Blur() {
	f.text = Blur(f.text, f.precision)
}

func (f *Field) Text() string {
	return f.text
}

func (f *Field) Reset() {
	f.text = ""
}

// Amount parses the current text. An empty field is an error so the editor
// can refuse to save it.
func (f *Field) Amount() (core.Money, error) {
	return core.ParseAmount(f.text, int32(f.precision))
}
