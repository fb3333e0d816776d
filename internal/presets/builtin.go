package presets

// builtin maps preset names to their tables. Opposite pairs use negative ratios.
var builtin = map[string]Preset{
	"basic": {
		Name:        "basic",
		Description: "Three pairs of opposite core feelings",
		Links: []Link{
			{"Joy", "Sadness", -1},
			{"Sadness", "Joy", -1},
			{"Trust", "Disgust", -1},
			{"Disgust", "Trust", -1},
			{"Fear", "Anger", -1},
			{"Anger", "Fear", -1},
		},
	},
	"social": {
		Name:        "social",
		Description: "Social stimuli fanning out to core feelings",
		Links: []Link{
			{"Insulted", "Anger", 0.8},
			{"Insulted", "Shame", 0.3},
			{"Insulted", "Trust", -0.6},
			{"Insulted", "Joy", -0.4},
			{"Praised", "Joy", 0.7},
			{"Praised", "Trust", 0.4},
			{"Praised", "Shame", -0.3},
			{"Threatened", "Fear", 0.9},
			{"Threatened", "Anger", 0.4},
			{"Threatened", "Trust", -0.8},
			{"Helped", "Trust", 0.6},
			{"Helped", "Joy", 0.3},
			{"Betrayed", "Trust", -2},
			{"Betrayed", "Anger", 1},
			{"Betrayed", "Sadness", 0.5},
			{"Joy", "Sadness", -1},
			{"Sadness", "Joy", -1},
			{"Anger", "Fear", -0.5},
			{"Fear", "Anger", -0.5},
			{"Shame", "Joy", -0.3},
		},
	},
	"companion": {
		Name:        "companion",
		Description: "Affection-driven map for companion characters",
		Links: []Link{
			{"Affection", "Joy", 0.5},
			{"Affection", "Loneliness", -0.7},
			{"Loneliness", "Sadness", 0.6},
			{"Loneliness", "Affection", 0.2},
			{"Jealousy", "Anger", 0.5},
			{"Jealousy", "Affection", -0.2},
			{"Joy", "Sadness", -1},
			{"Sadness", "Joy", -1},
			{"Anger", "Affection", -0.3},
		},
	},
}
