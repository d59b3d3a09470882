package weather

import (
	"reflect"
	"testing"
	"time"
)

func hour(ts string, temp *float64) Record {
	return Record{Timestamp: ts, Temperature: temp}
}

func TestAggregateDailyMinMax(t *testing.T) {
	hourly := []Record{
		hour("2024-01-01T10:00:00Z", Float(10)),
		hour("2024-01-01T14:00:00Z", Float(20)),
		hour("2024-01-02T10:00:00Z", Float(5)),
	}

	daily := AggregateDaily(hourly, 7)
	if len(daily) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(daily))
	}
	if *daily[0].TemperatureMin != 10 || *daily[0].TemperatureMax != 20 {
		t.Fatalf("unexpected day 1 %+v", daily[0])
	}
	if *daily[1].TemperatureMin != 5 || *daily[1].TemperatureMax != 5 {
		t.Fatalf("unexpected day 2 %+v", daily[1])
	}
	if daily[0].Date != "2024-01-01" || !daily[0].Timestamp.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day 1 date %s / %s", daily[0].Date, daily[0].Timestamp)
	}
}

func TestAggregateDailySingleEntry(t *testing.T) {
	daily := AggregateDaily([]Record{hour("2024-03-05T09:00:00Z", Float(7))}, 1)
	if len(daily) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(daily))
	}
	if *daily[0].TemperatureMin != 7 || *daily[0].TemperatureMax != 7 {
		t.Fatalf("unexpected summary %+v", daily[0])
	}
}

func TestAggregateDailyPrecipitationTreatsUnknownAsZero(t *testing.T) {
	hourly := []Record{
		{Timestamp: "2024-01-01T01:00:00Z", Precipitation: Float(1)},
		{Timestamp: "2024-01-01T02:00:00Z"},
		{Timestamp: "2024-01-01T03:00:00Z", Precipitation: Float(2)},
	}

	daily := AggregateDaily(hourly, 7)
	if daily[0].Precipitation != 3 {
		t.Fatalf("expected precipitation 3, got %v", daily[0].Precipitation)
	}
}

func TestAggregateDailyMeansIgnoreUnknown(t *testing.T) {
	hourly := []Record{
		{Timestamp: "2024-01-01T01:00:00Z", PressureMSL: Float(1000), WindSpeed: Float(4)},
		{Timestamp: "2024-01-01T02:00:00Z", PressureMSL: Float(1010)},
		{Timestamp: "2024-01-01T03:00:00Z"},
	}

	d := AggregateDaily(hourly, 7)[0]
	if d.PressureMSL == nil || *d.PressureMSL != 1005 {
		t.Fatalf("expected pressure mean 1005, got %v", d.PressureMSL)
	}
	if d.WindSpeed == nil || *d.WindSpeed != 4 {
		t.Fatalf("expected wind mean 4, got %v", d.WindSpeed)
	}
	if d.RelativeHumidity != nil || d.CloudCover != nil {
		t.Fatalf("means without values must be unknown")
	}
	if d.TemperatureMin != nil || d.TemperatureMax != nil {
		t.Fatalf("min/max without temperatures must be unknown")
	}
}

func TestAggregateDailySkipsBadTimestamps(t *testing.T) {
	hourly := []Record{
		hour("bad", Float(100)),
		hour("2024-01-01T10:00:00Z", Float(1)),
		hour("", Float(-100)),
	}

	daily := AggregateDaily(hourly, 7)
	if len(daily) != 1 || daily[0].Date != "2024-01-01" {
		t.Fatalf("expected one summary for 2024-01-01, got %+v", daily)
	}
	if *daily[0].TemperatureMax != 1 || *daily[0].TemperatureMin != 1 {
		t.Fatalf("bad entries leaked into summary %+v", daily[0])
	}
}

func TestAggregateDailyContiguousRuns(t *testing.T) {
	hourly := []Record{
		hour("2024-01-01T10:00:00Z", Float(1)),
		hour("2024-01-02T10:00:00Z", Float(2)),
		hour("2024-01-01T11:00:00Z", Float(3)),
	}

	daily := AggregateDaily(hourly, 7)
	dates := make([]string, 0, len(daily))
	for _, d := range daily {
		dates = append(dates, d.Date)
	}
	want := []string{"2024-01-01", "2024-01-02", "2024-01-01"}
	if !reflect.DeepEqual(dates, want) {
		t.Fatalf("expected %v, got %v", want, dates)
	}
}

func TestAggregateDailyTruncatesToMaxDays(t *testing.T) {
	var hourly []Record
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10*24; i++ {
		hourly = append(hourly, hour(start.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), Float(float64(i))))
	}

	if got := len(AggregateDaily(hourly, 3)); got != 3 {
		t.Fatalf("expected 3 summaries, got %d", got)
	}
	if got := AggregateDaily(hourly, 0); len(got) != 0 {
		t.Fatalf("expected no summaries for maxDays 0, got %d", len(got))
	}
	if got := AggregateDaily(nil, 7); len(got) != 0 {
		t.Fatalf("expected no summaries for empty input, got %d", len(got))
	}
}

func TestAggregateDailyDominantCondition(t *testing.T) {
	hourly := []Record{
		{Timestamp: "2024-01-01T02:00:00Z", Condition: "snow", Icon: "snow"},
		{Timestamp: "2024-01-01T03:00:00Z", Condition: "snow", Icon: "snow"},
		{Timestamp: "2024-01-01T04:00:00Z", Condition: "snow", Icon: "snow"},
		{Timestamp: "2024-01-01T06:00:00Z", Condition: "dry", Icon: "partly-cloudy-day"},
		{Timestamp: "2024-01-01T12:00:00Z", Condition: "rain", Icon: "cloudy"},
		{Timestamp: "2024-01-01T13:00:00Z", Condition: "rain", Icon: "cloudy"},
		{Timestamp: "2024-01-01T14:00:00Z", Condition: "rain", Icon: "cloudy"},
		{Timestamp: "2024-01-01T18:00:00Z", Condition: "dry", Icon: "clear-night"},
		{Timestamp: "2024-01-01T19:00:00Z", Condition: "dry", Icon: "clear-night"},
	}

	d := AggregateDaily(hourly, 1)[0]
	if d.Condition != "rain" {
		t.Fatalf("expected daytime rain to win over night snow, got %q", d.Condition)
	}
	if d.Icon != "rain" {
		t.Fatalf("expected icon derived from condition, got %q", d.Icon)
	}
}

func TestAggregateDailyDominantConditionUsesEntryOffset(t *testing.T) {
	// 05:00 UTC is 07:00 at +02:00 and counts as daytime.
	hourly := []Record{
		{Timestamp: "2024-06-01T07:00:00+02:00", Condition: "fog"},
		{Timestamp: "2024-06-01T21:00:00+02:00", Condition: "thunderstorm"},
		{Timestamp: "2024-06-01T22:00:00+02:00", Condition: "thunderstorm"},
	}

	d := AggregateDaily(hourly, 1)[0]
	if d.Condition != "fog" || d.Icon != "fog" {
		t.Fatalf("expected fog, got %q/%q", d.Condition, d.Icon)
	}
}

func TestAggregateDailyConditionFallback(t *testing.T) {
	hourly := []Record{
		{Timestamp: "2024-01-01T00:00:00Z", Condition: "dry", Icon: "clear-night"},
		{Timestamp: "2024-01-01T01:00:00Z", Condition: "rain", Icon: "rain"},
	}

	d := AggregateDaily(hourly, 1)[0]
	if d.Condition != "dry" || d.Icon != "clear-night" {
		t.Fatalf("expected first entry verbatim, got %q/%q", d.Condition, d.Icon)
	}
}

func TestAggregateDailyDeterministic(t *testing.T) {
	hourly := []Record{
		{Timestamp: "2024-01-01T08:00:00Z", Condition: "sleet", Temperature: Float(1)},
		{Timestamp: "2024-01-01T09:00:00Z", Condition: "hail", Temperature: Float(2)},
		{Timestamp: "2024-01-01T10:00:00Z", Condition: "sleet", Temperature: Float(3)},
		{Timestamp: "2024-01-01T11:00:00Z", Condition: "hail", Temperature: Float(4)},
	}

	first := AggregateDaily(hourly, 1)
	for i := 0; i < 20; i++ {
		if got := AggregateDaily(hourly, 1); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
	if first[0].Condition != "sleet" {
		t.Fatalf("expected sleet, got %q", first[0].Condition)
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2024-01-01T10:00:00Z",
		"2024-01-01T10:00:00+01:00",
		"2024-01-01T10:00:00.5Z",
		"2024-01-01T10:00:00",
		"2024-01-01T10:00",
		"2024-01-01T10:00:00+0100",
		"2024-01-01 10:00:00+00:00",
		"2024-01-01 10:00:00",
		"2024-01-01",
	} {
		if _, ok := ParseTimestamp(s); !ok {
			t.Errorf("expected %q to parse", s)
		}
	}
	for _, s := range []string{"", "bad", "2024-13-01T10:00:00Z"} {
		if _, ok := ParseTimestamp(s); ok {
			t.Errorf("expected %q to be rejected", s)
		}
	}

	ts, _ := ParseTimestamp("2024-01-01T23:30:00-02:00")
	if ts.Day() != 1 || ts.Hour() != 23 {
		t.Fatalf("offset must be preserved, got %s", ts)
	}

	ts, _ = ParseTimestamp("2024-01-01T07:00:00+0200")
	if _, off := ts.Zone(); off != 2*3600 || ts.Hour() != 7 {
		t.Fatalf("compact offset must be preserved, got %s", ts)
	}
}

func TestAggregateDailyAcceptsISOVariants(t *testing.T) {
	hourly := []Record{
		hour("2024-01-01", Float(1)),
		hour("2024-01-01T10:00:00+0100", Float(2)),
		hour("2024-01-01 14:00:00+00:00", Float(3)),
		hour("2024-01-02 10:00:00", Float(4)),
	}

	daily := AggregateDaily(hourly, 7)
	if len(daily) != 2 {
		t.Fatalf("expected 2 summaries, got %+v", daily)
	}
	if *daily[0].TemperatureMin != 1 || *daily[0].TemperatureMax != 3 {
		t.Fatalf("expected all three first-day entries grouped, got %+v", daily[0])
	}
}
