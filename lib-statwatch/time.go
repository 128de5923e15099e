package statwatch

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PageTimeOffset is the difference between the status page's local time and UTC.
//
// The page is written in US Pacific time. This is a fixed approximation, daylight saving time is not considered.
const PageTimeOffset = 8 * time.Hour

var (
	pageTimeFormats []string

	ErrInvalidTime = errors.New("invalid format")
)

func init() {
	dfs := []string{
		"January 2, 2006 ",
		"Jan 2, 2006 ",
	}
	tfs := []string{
		"3:04 PM",
		"15:04",
	}
	for _, df := range dfs {
		for _, tf := range tfs {
			pageTimeFormats = append(pageTimeFormats, df+tf)
		}
	}
}

// ParsePageTime parses a date fragment on the status page like "November 28, 2024 04:47 PM", and converts it to UTC.
func ParsePageTime(s string) (time.Time, error) {
	x := strings.Join(strings.Fields(s), " ")
	for _, f := range pageTimeFormats {
		t, err := time.Parse(f, x)
		if err == nil {
			return t.Add(PageTimeOffset), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}
