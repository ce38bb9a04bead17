package utils

import (
	"testing"
	"time"
)

func TestFiscalYearLabel(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		date time.Time
		want string
	}{
		{day(2025, time.April, 1), "25-26"},
		{day(2025, time.December, 31), "25-26"},
		{day(2026, time.January, 1), "25-26"},
		{day(2026, time.March, 31), "25-26"},
		{day(2026, time.April, 1), "26-27"},
		{day(2000, time.February, 10), "99-00"},
		{day(2100, time.January, 5), "99-00"},
		{day(2009, time.June, 15), "09-10"},
	}
	for _, c := range cases {
		if got := FiscalYearLabel(c.date); got != c.want {
			t.Errorf("FiscalYearLabel(%s) = %q, want %q", c.date.Format("2006-01-02"), got, c.want)
		}
	}
}
