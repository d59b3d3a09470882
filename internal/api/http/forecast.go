package httpapi

import (
	"time"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

// Forecast is one forecast entry in the shape home-automation weather
// entities consume.
type Forecast struct {
	Datetime                 string   `json:"datetime"`
	Condition                string   `json:"condition"`
	NativeTemperature        *float64 `json:"native_temperature"`
	NativeTempLow            *float64 `json:"native_templow,omitempty"`
	NativeDewPoint           *float64 `json:"native_dew_point,omitempty"`
	NativePrecipitation      *float64 `json:"native_precipitation"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`
	NativePressure           *float64 `json:"native_pressure"`
	Humidity                 *float64 `json:"humidity"`
	CloudCoverage            *float64 `json:"cloud_coverage"`
	NativeWindSpeed          *float64 `json:"native_wind_speed"`
	NativeWindGustSpeed      *float64 `json:"native_wind_gust_speed"`
	WindBearing              *float64 `json:"wind_bearing"`
}

func hourlyForecast(h weather.Record) Forecast {
	return Forecast{
		Datetime:            forecastTime(h.Timestamp),
		Condition:           weather.MapIcon(h.Icon),
		NativeTemperature:   h.Temperature,
		NativeDewPoint:      h.DewPoint,
		NativePrecipitation: h.Precipitation,
		NativePressure:      h.PressureMSL,
		Humidity:            h.RelativeHumidity,
		CloudCoverage:       h.CloudCover,
		NativeWindSpeed:     h.WindSpeed,
		NativeWindGustSpeed: h.WindGustSpeed,
		WindBearing:         h.WindDirection,
	}
}

// Daily summaries carry no wind bearing or gust.
func dailyForecast(d weather.DailySummary) Forecast {
	return Forecast{
		Datetime:            d.Timestamp.Format(time.RFC3339),
		Condition:           weather.MapIcon(d.Icon),
		NativeTemperature:   d.TemperatureMax,
		NativeTempLow:       d.TemperatureMin,
		NativePrecipitation: weather.Float(d.Precipitation),
		NativePressure:      d.PressureMSL,
		Humidity:            d.RelativeHumidity,
		CloudCoverage:       d.CloudCover,
		NativeWindSpeed:     d.WindSpeed,
	}
}

// forecastTime normalizes a timestamp to RFC3339, passing unparseable values through.
func forecastTime(s string) string {
	if ts, ok := weather.ParseTimestamp(s); ok {
		return ts.Format(time.RFC3339)
	}
	return s
}
