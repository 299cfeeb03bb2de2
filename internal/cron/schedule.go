package cron

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

var (
	exprParser = cronlib.NewParser(cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow)
	numeric    = regexp.MustCompile(`^\d+$`)
	weekdays   = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
)

// Describe renders a schedule for humans, e.g. "Weekdays at 9:30 AM (New York)".
func Describe(s domain.Schedule) string {
	switch {
	case s.Kind == "cron" && s.Expr != "":
		return describeExpr(s.Expr, s.TZ)
	case s.Kind == "at" && s.AtMs != 0:
		return "Once at " + time.UnixMilli(s.AtMs).In(location(s.TZ)).Format("Jan 2, 2006 3:04 PM MST")
	case s.Kind == "every" && s.EveryMs != 0:
		return "Every " + describeInterval(s.EveryMs)
	}
	return s.Kind
}

func describeExpr(expr, tz string) string {
	parts := strings.Fields(expr)
	if len(parts) < 5 {
		return expr
	}
	minute, hour, dom, mon, dow := parts[0], parts[1], parts[2], parts[3], parts[4]

	label := ""
	if tz != "" {
		city := tz[strings.LastIndex(tz, "/")+1:]
		label = " (" + strings.ReplaceAll(city, "_", " ") + ")"
	}

	everyDay := dom == "*" && mon == "*"
	fixedTime := numeric.MatchString(hour) && numeric.MatchString(minute)

	switch {
	case everyDay && dow == "*" && fixedTime:
		return "Daily at " + clock(hour, minute) + label
	case everyDay && dow == "1-5" && fixedTime:
		return "Weekdays at " + clock(hour, minute) + label
	case everyDay && numeric.MatchString(dow) && fixedTime:
		day := "day " + dow
		if n, _ := strconv.Atoi(dow); n < len(weekdays) {
			day = weekdays[n]
		}
		return day + "s at " + clock(hour, minute) + label
	case everyDay && strings.Contains(hour, ",") && numeric.MatchString(minute):
		var times []string
		for _, h := range strings.Split(hour, ",") {
			times = append(times, clock(h, minute))
		}
		days := "Days " + dow
		switch dow {
		case "*":
			days = "Daily"
		case "1-5":
			days = "Weekdays"
		}
		return days + " at " + strings.Join(times, ", ") + label
	case hour == "*" && everyDay && dow == "*":
		if numeric.MatchString(minute) {
			m, _ := strconv.Atoi(minute)
			return fmt.Sprintf("Hourly at :%02d", m)
		}
		return "Every hour"
	}
	return "Cron: " + expr + label
}

// clock formats hour and minute fields as a 12-hour time.
func clock(hour, minute string) string {
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

func describeInterval(ms int64) string {
	f := float64(ms)
	switch {
	case ms < 60_000:
		return fmt.Sprintf("%.0fs", math.Round(f/1000))
	case ms < 3_600_000:
		return fmt.Sprintf("%.0f minutes", math.Round(f/60_000))
	case ms < 86_400_000:
		return fmt.Sprintf("%.0f hours", math.Round(f/3_600_000))
	}
	return fmt.Sprintf("%.0f days", math.Round(f/86_400_000))
}

// NextRuns returns up to n upcoming fire times after from. One-shot
// schedules in the past yield none.
func NextRuns(s domain.Schedule, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	var runs []time.Time
	switch s.Kind {
	case "cron":
		spec := s.Expr
		if s.TZ != "" {
			spec = "CRON_TZ=" + s.TZ + " " + spec
		}
		sched, err := exprParser.Parse(spec)
		if err != nil {
			return nil, &domain.ValidationError{Field: "schedule.expr", Message: err.Error()}
		}
		t := from
		for range n {
			t = sched.Next(t)
			if t.IsZero() {
				break
			}
			runs = append(runs, t)
		}
	case "at":
		if at := time.UnixMilli(s.AtMs); s.AtMs != 0 && at.After(from) {
			runs = append(runs, at)
		}
	case "every":
		if s.EveryMs <= 0 {
			return nil, &domain.ValidationError{Field: "schedule.everyMs", Message: "must be positive"}
		}
		step := time.Duration(s.EveryMs) * time.Millisecond
		for i := 1; i <= n; i++ {
			runs = append(runs, from.Add(step*time.Duration(i)))
		}
	default:
		return nil, &domain.ValidationError{Field: "schedule.kind", Message: fmt.Sprintf("unknown kind %q", s.Kind)}
	}
	return runs, nil
}

func location(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}
