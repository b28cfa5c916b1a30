package registration

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

var (
	ErrDateRequired = errors.New("birth date is required")
	ErrDateFormat   = errors.New("invalid date format, use DD/MM/YYYY")
	ErrInvalidDate  = errors.New("invalid date")
)

const dayMonthYearLayout = "02/01/2006"

var dayMonthYearPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// DateInput is a birth date as typed into the form. It holds either a
// structured date (a time.Time, or an ISO date on the wire) or the raw text
// the user entered, which must be DD/MM/YYYY.
type DateInput struct {
	text       string
	value      time.Time
	structured bool
}

func DateFromTime(t time.Time) DateInput {
	return DateInput{value: t, structured: true}
}

func DateFromString(s string) DateInput {
	return DateInput{text: strings.TrimSpace(s)}
}

// ParseDateInput classifies a wire string: ISO dates and RFC 3339 timestamps
// are structured, anything else is kept as text for DD/MM/YYYY parsing.
func ParseDateInput(s string) DateInput {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateFromTime(t)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateFromTime(t)
	}
	return DateFromString(s)
}

func (d DateInput) IsZero() bool {
	return !d.structured && d.text == ""
}

// Parse returns the calendar date at midnight UTC.
func (d DateInput) Parse() (time.Time, error) {
	if d.structured {
		y, m, day := d.value.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	}
	if d.text == "" {
		return time.Time{}, ErrDateRequired
	}
	if !dayMonthYearPattern.MatchString(d.text) {
		return time.Time{}, ErrDateFormat
	}
	t, err := time.Parse(dayMonthYearLayout, d.text)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (d DateInput) String() string {
	if d.structured {
		return d.value.Format(time.DateOnly)
	}
	return d.text
}

func (d DateInput) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *DateInput) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DateInput{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = ParseDateInput(s)
	return nil
}

func (d DateInput) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeString,
		Description: "Birth date as DD/MM/YYYY or YYYY-MM-DD",
		Examples:    []any{"19/10/2016"},
	}
}
