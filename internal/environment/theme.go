package environment

// Theme is the dashboard background chosen for the current weather.
type Theme struct {
	Name          string `json:"name"`
	BackgroundURL string `json:"backgroundUrl"`
}

var themes = map[string]string{
	"sun":     "https://images.unsplash.com/photo-1559628376-f3fe5f782a2e?ixlib=rb-4.0.3&auto=format&fit=crop&w=862&q=80",
	"covered": "https://images.unsplash.com/photo-1500740516770-92bd004b996e?ixlib=rb-4.0.3&auto=format&fit=crop&w=1472&q=80",
	"rain":    "https://images.unsplash.com/photo-1620385019253-b051a26048ce?ixlib=rb-4.0.3&auto=format&fit=crop&w=687&q=80",
	"snow":    "https://images.unsplash.com/photo-1511131341194-24e2eeeebb09?ixlib=rb-4.0.3&auto=format&fit=crop&w=1470&q=80",
}

// ThemeFor maps a condition onto one of the four backgrounds.
func ThemeFor(c Condition) Theme {
	name := "covered"
	switch c {
	case ConditionClear:
		name = "sun"
	case ConditionRain, ConditionStorm:
		name = "rain"
	case ConditionSnow:
		name = "snow"
	}
	return Theme{Name: name, BackgroundURL: themes[name]}
}
