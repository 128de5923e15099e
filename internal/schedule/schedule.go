// Package schedule decides when the status page is checked.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
	"github.com/robfig/cron/v3"
)

var (
	DefaultSchedule = Schedule(IntervalSchedule{5 * time.Minute})
)

type Schedule interface {
	cron.Schedule
	fmt.Stringer

	NeedKickWhenStart() bool
}

// Parse parses an interval like "5m" or "5", or a cron spec like "*/5 * * * *".
func Parse(spec string) (Schedule, error) {
	if s, err := ParseInterval(spec); err == nil {
		return s, nil
	}

	s, err := ParseCron(spec)
	if err != nil {
		return nil, swerr.New(api.ErrInvalidConfig, nil, "invalid schedule: %q", spec)
	}
	return s, nil
}

// IntervalSchedule runs in the same interval.
// The interval is always a whole number of minutes.
type IntervalSchedule struct {
	Interval time.Duration
}

// ParseInterval parses an interval like "10m" or "1h".
// A bare number is treated as minutes.
func ParseInterval(spec string) (IntervalSchedule, error) {
	spec = strings.TrimSpace(spec)

	var d time.Duration
	if n, err := strconv.Atoi(spec); err == nil {
		d = time.Duration(n) * time.Minute
	} else if d, err = time.ParseDuration(spec); err != nil {
		return IntervalSchedule{}, err
	}

	if d < time.Minute {
		return IntervalSchedule{}, fmt.Errorf("interval must be 1 minute or longer: %q", spec)
	}

	return IntervalSchedule{d.Truncate(time.Minute)}, nil
}

func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s IntervalSchedule) String() string {
	return s.Interval.String()
}

func (s IntervalSchedule) NeedKickWhenStart() bool {
	return true
}

type CronSchedule struct {
	spec     string
	schedule cron.Schedule
}

func ParseCron(spec string) (CronSchedule, error) {
	switch spec {
	case "@monthly":
		spec = "0 0 1 * ?"
	case "@weekly":
		spec = "0 0 * * 0"
	case "@daily":
		spec = "0 0 * * ?"
	case "@hourly":
		spec = "0 * * * ?"
	default:
		delimiter := regexp.MustCompile("[ \t]+")

		ss := delimiter.Split(strings.TrimSpace(spec), -1)
		if len(ss) == 4 {
			ss = append(ss, "?")
		}
		spec = strings.Join(ss, " ")
	}

	if s, err := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional).Parse(spec); err != nil {
		return CronSchedule{}, err
	} else {
		return CronSchedule{
			spec:     spec,
			schedule: s,
		}, nil
	}
}

func (s CronSchedule) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s CronSchedule) String() string {
	return s.spec
}

func (s CronSchedule) NeedKickWhenStart() bool {
	return false
}
