package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Location is the fixed point the coordinator tracks, in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// Record is one weather observation or forecast hour as returned by BrightSky.
// Every field is optional; a nil pointer or empty string means unknown.
//
// The current_weather endpoint reports 10/30/60 minute aggregates
// (wind_speed_10, precipitation_10, sunshine_60, ...) while the hourly
// endpoint reports plain names; both sets are kept as delivered.
type Record struct {
	Timestamp string `json:"timestamp,omitempty"`

	Temperature      *float64 `json:"temperature,omitempty"`
	DewPoint         *float64 `json:"dew_point,omitempty"`
	RelativeHumidity *float64 `json:"relative_humidity,omitempty"`
	PressureMSL      *float64 `json:"pressure_msl,omitempty"`
	CloudCover       *float64 `json:"cloud_cover,omitempty"`
	Visibility       *float64 `json:"visibility,omitempty"`

	WindSpeed       *float64 `json:"wind_speed,omitempty"`
	WindDirection   *float64 `json:"wind_direction,omitempty"`
	WindGustSpeed   *float64 `json:"wind_gust_speed,omitempty"`
	WindSpeed10     *float64 `json:"wind_speed_10,omitempty"`
	WindDirection10 *float64 `json:"wind_direction_10,omitempty"`
	WindGustSpeed10 *float64 `json:"wind_gust_speed_10,omitempty"`

	Precipitation   *float64 `json:"precipitation,omitempty"`
	Precipitation10 *float64 `json:"precipitation_10,omitempty"`
	Sunshine        *float64 `json:"sunshine,omitempty"`
	Sunshine60      *float64 `json:"sunshine_60,omitempty"`

	Condition string `json:"condition,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// UnmarshalJSON decodes a record leniently: a field holding a value of the
// wrong JSON type is left unknown instead of failing the whole payload.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{}
	numbers := map[string]**float64{
		"temperature":        &r.Temperature,
		"dew_point":          &r.DewPoint,
		"relative_humidity":  &r.RelativeHumidity,
		"pressure_msl":       &r.PressureMSL,
		"cloud_cover":        &r.CloudCover,
		"visibility":         &r.Visibility,
		"wind_speed":         &r.WindSpeed,
		"wind_direction":     &r.WindDirection,
		"wind_gust_speed":    &r.WindGustSpeed,
		"wind_speed_10":      &r.WindSpeed10,
		"wind_direction_10":  &r.WindDirection10,
		"wind_gust_speed_10": &r.WindGustSpeed10,
		"precipitation":      &r.Precipitation,
		"precipitation_10":   &r.Precipitation10,
		"sunshine":           &r.Sunshine,
		"sunshine_60":        &r.Sunshine60,
	}
	for key, dst := range numbers {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var f *float64
		if err := json.Unmarshal(v, &f); err == nil {
			*dst = f
		}
	}

	texts := map[string]*string{
		"timestamp": &r.Timestamp,
		"condition": &r.Condition,
		"icon":      &r.Icon,
	}
	for key, dst := range texts {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			*dst = s
		}
	}
	return nil
}

// ForecastPayload is the decoded /weather response.
type ForecastPayload struct {
	Weather []Record `json:"weather"`
}

// UnmarshalJSON keeps every object in the "weather" array and drops elements
// that are not objects. A "weather" value that is not an array yields no
// entries.
func (p *ForecastPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Weather json.RawMessage `json:"weather"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = ForecastPayload{}
	weather := bytes.TrimSpace(raw.Weather)
	if len(weather) == 0 || weather[0] != '[' {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(weather, &elems); err != nil {
		return err
	}
	p.Weather = make([]Record, 0, len(elems))
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) == 0 || e[0] != '{' {
			continue
		}
		var rec Record
		if err := json.Unmarshal(e, &rec); err != nil {
			return err
		}
		p.Weather = append(p.Weather, rec)
	}
	return nil
}

// DailySummary aggregates the hourly entries of one contiguous calendar date.
type DailySummary struct {
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"` // date at 12:00 UTC

	TemperatureMin   *float64 `json:"temperature_min"`
	TemperatureMax   *float64 `json:"temperature_max"`
	Precipitation    float64  `json:"precipitation"`
	PressureMSL      *float64 `json:"pressure_msl"`
	RelativeHumidity *float64 `json:"relative_humidity"`
	CloudCover       *float64 `json:"cloud_cover"`
	WindSpeed        *float64 `json:"wind_speed"`

	Condition string `json:"condition,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// Snapshot is the coordinator state produced by one successful refresh.
// A Snapshot is never mutated after it has been stored.
type Snapshot struct {
	Location  Location  `json:"location"`
	FetchedAt time.Time `json:"fetched_at"`
	Current   *Record   `json:"current"`
	Hourly    []Record  `json:"hourly"`
}

// Float returns a pointer to v. Handy for building records in code.
func Float(v float64) *float64 {
	return &v
}
