package calendar

import "time"

// DayRange returns the half-open range [local midnight + offsetDays,
// next midnight) around now in loc.
func DayRange(now time.Time, loc *time.Location, offsetDays int) (time.Time, time.Time) {
	n := now.In(loc)
	start := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, offsetDays)
	return start, start.AddDate(0, 0, 1)
}

// TodayRange covers the current local day.
func TodayRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	return DayRange(now, loc, 0)
}

// TomorrowRange covers the next local day; this is also the digest
// window.
func TomorrowRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	return DayRange(now, loc, 1)
}

// WeekendRange covers Saturday and Sunday of the week containing now
// (weeks running Sunday through Saturday, so on a Sunday the range is
// the upcoming weekend).
func WeekendRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	n := now.In(loc)
	daysUntilSaturday := 6 - int(n.Weekday())
	start, _ := DayRange(now, loc, daysUntilSaturday)
	return start, start.AddDate(0, 0, 2)
}
