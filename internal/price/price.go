package price

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Currency is appended to every rewritten price.
const Currency = "zł"

var ErrNoDigits = errors.New("price has no digits")

// Extract returns the whole-unit amount in a formatted price such as
// "1 234,56 zł". Everything from the first comma on is dropped, then
// every non-digit is stripped.
func Extract(text string) (int, error) {
	whole, _, _ := strings.Cut(text, ",")

	var b strings.Builder
	for _, r := range whole {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoDigits, cleanText(text))
	}

	value, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", cleanText(text), err)
	}
	return value, nil
}

// Format renders an amount the way rewritten listings display it.
func Format(amount int) string {
	return strconv.Itoa(amount) + " " + Currency
}

func cleanText(value string) string {
	return strings.Join(strings.FieldsFunc(value, unicode.IsSpace), " ")
}
