package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Quarter is a fiscal quarter. The canonical string form is "Q<n><yyyy>", e.g. "Q12025".
type Quarter struct {
	Number int
	Year   int
}

// quarterPattern accepts "Q12025", "Q1'25", "Q1'2025", "Q1 2025", "Q1-2025" and "Q1_25".
var quarterPattern = regexp.MustCompile(`^[Qq]([1-4])\s*['’\-_ ]?\s*(\d{2}|\d{4})$`)

// ParseQuarter parses any of the accepted external quarter formats.
// Two-digit years are interpreted as 20yy.
func ParseQuarter(s string) (Quarter, error) {
	m := quarterPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Quarter{}, fmt.Errorf("%w: invalid quarter %q", ErrParse, s)
	}
	num, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		year += 2000
	}
	return Quarter{Number: num, Year: year}, nil
}

// String returns the canonical compact form, e.g. "Q12025".
func (q Quarter) String() string {
	return fmt.Sprintf("Q%d%d", q.Number, q.Year)
}

// Short returns the apostrophe form used in earnings decks, e.g. "Q1'25".
func (q Quarter) Short() string {
	return fmt.Sprintf("Q%d'%02d", q.Number, q.Year%100)
}

// index maps the quarter onto a linear scale so that consecutive quarters differ by one.
// Q1 of year 1 is 4.
func (q Quarter) index() int {
	return q.Year*4 + q.Number - 1
}

// Valid reports whether the quarter number is within 1..4.
func (q Quarter) Valid() bool {
	return q.Number >= 1 && q.Number <= 4 && q.Year > 0
}

// Prev returns the quarter immediately before q.
func (q Quarter) Prev() Quarter {
	if q.Number == 1 {
		return Quarter{Number: 4, Year: q.Year - 1}
	}
	return Quarter{Number: q.Number - 1, Year: q.Year}
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (q Quarter) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler accepting every supported format.
func (q *Quarter) UnmarshalText(b []byte) error {
	parsed, err := ParseQuarter(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// PastQuarters returns count quarters in ascending order, ending with latest.
// The window may not reach back past Q1 of year 1.
func PastQuarters(latest Quarter, count int) ([]Quarter, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: quarter count must be positive, got %d", ErrInvalidArgument, count)
	}
	if !latest.Valid() {
		return nil, fmt.Errorf("%w: invalid quarter %+v", ErrParse, latest)
	}
	if limit := latest.index() - (Quarter{Number: 1, Year: 1}).index() + 1; count > limit {
		return nil, fmt.Errorf("%w: quarter count %d reaches before year 1 (at most %d)", ErrInvalidArgument, count, limit)
	}

	out := make([]Quarter, count)
	q := latest
	for i := count - 1; i >= 0; i-- {
		out[i] = q
		q = q.Prev()
	}
	return out, nil
}

// PastQuarterLabels parses latest and returns the canonical labels of the window ending at it.
func PastQuarterLabels(latest string, count int) ([]string, error) {
	q, err := ParseQuarter(latest)
	if err != nil {
		return nil, err
	}
	window, err := PastQuarters(q, count)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(window))
	for i, w := range window {
		labels[i] = w.String()
	}
	return labels, nil
}
