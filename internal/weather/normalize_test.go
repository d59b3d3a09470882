package weather

import (
	"encoding/json"
	"testing"
)

func decodeCurrent(t *testing.T, body string) CurrentPayload {
	t.Helper()
	var p CurrentPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return p
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		shape     Shape
		wantTemp  *float64
		wantEmpty bool
	}{
		{name: "object", body: `{"weather":{"temperature":12.5,"icon":"cloudy"}}`, shape: ShapeObject, wantTemp: Float(12.5)},
		{name: "single element array", body: `{"weather":[{"temperature":3}]}`, shape: ShapeArray, wantTemp: Float(3)},
		{name: "first element wins", body: `{"weather":[{"temperature":1},{"temperature":2}]}`, shape: ShapeArray, wantTemp: Float(1)},
		{name: "empty array", body: `{"weather":[]}`, shape: ShapeArray, wantEmpty: true},
		{name: "empty object", body: `{"weather":{}}`, shape: ShapeObject, wantEmpty: true},
		{name: "array of empty object", body: `{"weather":[{}]}`, shape: ShapeArray, wantEmpty: true},
		{name: "array of scalar", body: `{"weather":[42]}`, shape: ShapeArray, wantEmpty: true},
		{name: "string", body: `{"weather":"sunny"}`, shape: ShapeOther, wantEmpty: true},
		{name: "number", body: `{"weather":7}`, shape: ShapeOther, wantEmpty: true},
		{name: "null", body: `{"weather":null}`, shape: ShapeMissing, wantEmpty: true},
		{name: "missing", body: `{"sources":[]}`, shape: ShapeMissing, wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decodeCurrent(t, tt.body)
			if p.Weather.Shape != tt.shape {
				t.Fatalf("expected shape %s, got %s", tt.shape, p.Weather.Shape)
			}

			rec := Normalize(p)
			if tt.wantEmpty {
				if rec != nil {
					t.Fatalf("expected no record, got %+v", rec)
				}
				return
			}
			if rec == nil || rec.Temperature == nil || *rec.Temperature != *tt.wantTemp {
				t.Fatalf("expected temperature %v, got %+v", *tt.wantTemp, rec)
			}
		})
	}
}

func TestNormalizePassesValuesThrough(t *testing.T) {
	p := decodeCurrent(t, `{"weather":{"timestamp":"2024-01-01T10:00:00+01:00","temperature":-2.4,"wind_speed_10":11,"sunshine_60":null,"condition":"snow","icon":"snow"}}`)

	rec := Normalize(p)
	if rec == nil {
		t.Fatalf("expected record")
	}
	if rec.Timestamp != "2024-01-01T10:00:00+01:00" || rec.Condition != "snow" || rec.Icon != "snow" {
		t.Fatalf("unexpected text fields %+v", rec)
	}
	if *rec.Temperature != -2.4 || *rec.WindSpeed10 != 11 {
		t.Fatalf("unexpected numeric fields %+v", rec)
	}
	if rec.Sunshine60 != nil {
		t.Fatalf("null must stay unknown")
	}
}

func TestRecordDecodingIsLenient(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"temperature":"warm","dew_point":1.5,"icon":5,"condition":"dry"}`), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Temperature != nil {
		t.Fatalf("wrongly typed temperature must be unknown, got %v", *rec.Temperature)
	}
	if rec.DewPoint == nil || *rec.DewPoint != 1.5 {
		t.Fatalf("expected dew point 1.5")
	}
	if rec.Icon != "" || rec.Condition != "dry" {
		t.Fatalf("unexpected text fields %+v", rec)
	}
}

func TestForecastPayloadSkipsNonObjects(t *testing.T) {
	var p ForecastPayload
	body := `{"weather":[{"timestamp":"2024-01-01T10:00:00Z","temperature":1},5,null,"x",{"timestamp":"2024-01-01T11:00:00Z","temperature":2}]}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Weather) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(p.Weather))
	}
	if *p.Weather[0].Temperature != 1 || *p.Weather[1].Temperature != 2 {
		t.Fatalf("unexpected entries %+v", p.Weather)
	}

	for _, body := range []string{`{"weather":null}`, `{"weather":{}}`, `{}`} {
		var p ForecastPayload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("%s: unexpected error: %v", body, err)
		}
		if len(p.Weather) != 0 {
			t.Fatalf("%s: expected no entries, got %d", body, len(p.Weather))
		}
	}
}
