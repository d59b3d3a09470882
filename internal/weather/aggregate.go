package weather

import (
	"time"
)

// Daytime window (local hour of the entry's own offset, inclusive) used to pick
// the dominant condition of a day.
const (
	daytimeStartHour = 6
	daytimeEndHour   = 18
)

// Fractional seconds are accepted after any seconds field.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTimestamp parses an ISO-8601 timestamp: "T" or space separated, with
// or without seconds, offsets as "Z", ±hh:mm or ±hhmm, or a bare date.
// Timestamps without an offset are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(ts time.Time) civilDate {
	y, m, d := ts.Date()
	return civilDate{y, m, d}
}

type dayGroup struct {
	date    civilDate
	entries []Record
	times   []time.Time
}

// AggregateDaily groups an ordered hourly sequence into runs of the same
// calendar date and summarizes each run. A date that reappears after a
// different date starts a new group. Entries without a parseable timestamp are
// ignored. At most maxDays summaries are returned.
func AggregateDaily(hourly []Record, maxDays int) []DailySummary {
	if maxDays < 1 || len(hourly) == 0 {
		return nil
	}

	var groups []*dayGroup
	var cur *dayGroup
	for _, h := range hourly {
		ts, ok := ParseTimestamp(h.Timestamp)
		if !ok {
			continue
		}
		d := dateOf(ts)
		if cur == nil || cur.date != d {
			cur = &dayGroup{date: d}
			groups = append(groups, cur)
		}
		cur.entries = append(cur.entries, h)
		cur.times = append(cur.times, ts)
	}

	if len(groups) > maxDays {
		groups = groups[:maxDays]
	}

	out := make([]DailySummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, summarize(g))
	}
	return out
}

func summarize(g *dayGroup) DailySummary {
	var (
		tempMin, tempMax *float64
		precip           float64
		pressure         mean
		humidity         mean
		cloud            mean
		wind             mean
	)

	for _, h := range g.entries {
		if t := h.Temperature; t != nil {
			if tempMin == nil || *t < *tempMin {
				tempMin = Float(*t)
			}
			if tempMax == nil || *t > *tempMax {
				tempMax = Float(*t)
			}
		}
		if h.Precipitation != nil {
			precip += *h.Precipitation
		}
		pressure.add(h.PressureMSL)
		humidity.add(h.RelativeHumidity)
		cloud.add(h.CloudCover)
		wind.add(h.WindSpeed)
	}

	condition, icon := dominantCondition(g)

	return DailySummary{
		Date:             time.Date(g.date.year, g.date.month, g.date.day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly),
		Timestamp:        time.Date(g.date.year, g.date.month, g.date.day, 12, 0, 0, 0, time.UTC),
		TemperatureMin:   tempMin,
		TemperatureMax:   tempMax,
		Precipitation:    precip,
		PressureMSL:      pressure.value(),
		RelativeHumidity: humidity.value(),
		CloudCover:       cloud.value(),
		WindSpeed:        wind.value(),
		Condition:        condition,
		Icon:             icon,
	}
}

// dominantCondition returns the most frequent daytime condition, ties going to
// the value seen first, with the icon derived from it. Without any daytime
// condition it falls back to the first entry's condition and icon as-is.
func dominantCondition(g *dayGroup) (string, string) {
	counts := make(map[string]int)
	var order []string
	for i, h := range g.entries {
		hour := g.times[i].Hour()
		if hour < daytimeStartHour || hour > daytimeEndHour || h.Condition == "" {
			continue
		}
		if _, seen := counts[h.Condition]; !seen {
			order = append(order, h.Condition)
		}
		counts[h.Condition]++
	}

	if len(order) == 0 {
		first := g.entries[0]
		return first.Condition, first.Icon
	}

	best, bestCount := "", 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best, ConditionIcon(best)
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return Float(m.sum / float64(m.n))
}
