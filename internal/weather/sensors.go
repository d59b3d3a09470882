package weather

import "strconv"

// SensorReading is the value of one current-conditions sensor.
type SensorReading struct {
	Key       string   `json:"key"`
	Name      string   `json:"name"`
	Number    *float64 `json:"value,omitempty"`
	Text      string   `json:"text,omitempty"`
	Available bool     `json:"available"`
}

// State renders the reading as a plain string; unknown is "".
func (s SensorReading) State() string {
	if s.Number != nil {
		return strconv.FormatFloat(*s.Number, 'f', -1, 64)
	}
	return s.Text
}

type sensorDef struct {
	key    string
	name   string
	number func(*Record) *float64
	text   func(*Record) string
}

var sensorDefs = []sensorDef{
	{key: "temperature", name: "Temperature", number: func(r *Record) *float64 { return r.Temperature }},
	{key: "dew_point", name: "Dew Point", number: func(r *Record) *float64 { return r.DewPoint }},
	{key: "relative_humidity", name: "Humidity", number: func(r *Record) *float64 { return r.RelativeHumidity }},
	{key: "pressure_msl", name: "Pressure", number: func(r *Record) *float64 { return r.PressureMSL }},
	{key: "wind_speed_10", name: "Wind Speed", number: func(r *Record) *float64 { return r.WindSpeed10 }},
	{key: "wind_direction_10", name: "Wind Direction", number: func(r *Record) *float64 { return r.WindDirection10 }},
	{key: "wind_gust_speed_10", name: "Wind Gust Speed", number: func(r *Record) *float64 { return r.WindGustSpeed10 }},
	{key: "cloud_cover", name: "Cloud Cover", number: func(r *Record) *float64 { return r.CloudCover }},
	{key: "visibility", name: "Visibility", number: func(r *Record) *float64 { return r.Visibility }},
	{key: "precipitation_10", name: "Precipitation", number: func(r *Record) *float64 { return r.Precipitation10 }},
	{key: "sunshine_60", name: "Sunshine Duration", number: func(r *Record) *float64 { return r.Sunshine60 }},
	{key: "condition", name: "Weather Condition", text: func(r *Record) string { return r.Condition }},
}

// Sensors reads every current-conditions sensor from r. All sensors are
// unavailable when r is nil.
func Sensors(r *Record) []SensorReading {
	out := make([]SensorReading, 0, len(sensorDefs))
	for _, d := range sensorDefs {
		s := SensorReading{Key: d.key, Name: d.name, Available: r != nil}
		if r != nil {
			if d.number != nil {
				s.Number = d.number(r)
			} else {
				s.Text = d.text(r)
			}
		}
		out = append(out, s)
	}
	return out
}
