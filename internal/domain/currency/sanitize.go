package currency

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Amount is a user-typed quantity after sanitization. Text is the cleaned
// input and is what gets echoed back on the side the user typed into.
type Amount struct {
	Text  string
	Value float64
}

// Sanitize keeps digits and the first '.' of raw and parses the result.
// A second '.' ends the number, so "12.34.56" reads as 12.34. Input that
// leaves nothing parseable degrades to zero.
func Sanitize(raw string) Amount {
	var b strings.Builder
	b.Grow(len(raw))

	seenDot := false
scan:
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if seenDot {
				break scan
			}
			seenDot = true
			b.WriteRune(r)
		}
	}

	text := b.String()
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && value > 0 {
			// a digit string too long for float64; keep it finite so it clamps
			return Amount{Text: text, Value: math.MaxFloat64}
		}
		return Amount{Text: "0", Value: 0}
	}

	return Amount{Text: text, Value: value}
}
