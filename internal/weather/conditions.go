package weather

// Presentation conditions understood by home-automation frontends.
const (
	PresentSunny       = "sunny"
	PresentClearNight  = "clear-night"
	PresentPartlyCloud = "partlycloudy"
	PresentCloudy      = "cloudy"
	PresentFog         = "fog"
	PresentWindy       = "windy"
	PresentRainy       = "rainy"
	PresentSnowyRainy  = "snowy-rainy"
	PresentSnowy       = "snowy"
	PresentHail        = "hail"
	PresentLightning   = "lightning"
)

var conditionPresentation = map[string]string{
	"dry":          PresentSunny,
	"fog":          PresentFog,
	"rain":         PresentRainy,
	"sleet":        PresentSnowyRainy,
	"snow":         PresentSnowy,
	"hail":         PresentHail,
	"thunderstorm": PresentLightning,
}

var iconPresentation = map[string]string{
	"clear-day":           PresentSunny,
	"clear-night":         PresentClearNight,
	"partly-cloudy-day":   PresentPartlyCloud,
	"partly-cloudy-night": PresentPartlyCloud,
	"cloudy":              PresentCloudy,
	"fog":                 PresentFog,
	"wind":                PresentWindy,
	"rain":                PresentRainy,
	"sleet":               PresentSnowyRainy,
	"snow":                PresentSnowy,
	"hail":                PresentHail,
	"thunderstorm":        PresentLightning,
}

var conditionIcons = map[string]string{
	"dry":          "clear-day",
	"fog":          "fog",
	"rain":         "rain",
	"sleet":        "sleet",
	"snow":         "snow",
	"hail":         "hail",
	"thunderstorm": "thunderstorm",
}

// MapCondition translates a BrightSky condition code; unknown codes are sunny.
func MapCondition(condition string) string {
	if p, ok := conditionPresentation[condition]; ok {
		return p
	}
	return PresentSunny
}

// MapIcon translates a BrightSky icon code; unknown codes are sunny.
func MapIcon(icon string) string {
	if p, ok := iconPresentation[icon]; ok {
		return p
	}
	return PresentSunny
}

// ConditionIcon derives an icon code from a condition code.
func ConditionIcon(condition string) string {
	if icon, ok := conditionIcons[condition]; ok {
		return icon
	}
	return "clear-day"
}

// PresentCondition returns the overall presentation condition of a record.
// The icon wins over the condition. ok is false when neither is present, in
// which case the result is sunny.
func PresentCondition(r *Record) (condition string, ok bool) {
	if r == nil {
		return PresentSunny, false
	}
	if r.Icon != "" {
		return MapIcon(r.Icon), true
	}
	if r.Condition != "" {
		return MapCondition(r.Condition), true
	}
	return PresentSunny, false
}
