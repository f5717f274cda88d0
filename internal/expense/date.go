package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

const DateLayout = "2006-01-02"

// Date is a calendar date exchanged as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		// accept full timestamps and keep only their calendar day
		t, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return err
		}
		parsed = Date{Time: validation.DateOnly(t)}
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}
