package energy

import "github.com/danielpatrickdp/dailycard/go-controller/internal/label"

// #region vocabularies
// vocabulary maps each category to the normalized label names that feed it.
var vocabulary = [NumCategories]map[string]bool{
	Classic: set("classic", "elegant", "timeless", "refined", "polished", "tailored", "structured",
		"grounded", "traditional", "sophisticated", "understated", "neutral", "crisp", "poised", "introspective"),
	Playful: set("playful", "fun", "whimsical", "bright", "cheerful", "quirky", "lively", "curious",
		"spontaneous", "light", "bubbly", "colorful", "adventurous", "youthful", "quick"),
	Romantic: set("romantic", "soft", "dreamy", "gentle", "tender", "flowing", "delicate", "sensual",
		"lush", "warm", "graceful", "feminine", "harmonious", "lovely"),
	Utility: set("practical", "functional", "comfortable", "utility", "sturdy", "efficient", "durable",
		"layered", "weatherproof", "protective", "cozy", "relaxed", "simple", "pragmatic", "slow"),
	Drama: set("dramatic", "bold", "striking", "intense", "powerful", "glamorous", "radiant", "magnetic",
		"passionate", "theatrical", "luxurious", "commanding", "vivid", "fiery"),
	Edge: set("edgy", "rebellious", "dark", "sharp", "unconventional", "avant_garde", "electric", "daring",
		"raw", "gritty", "provocative", "disruptive", "angular", "independent"),
}

// #endregion vocabularies

// #region affinities
// affineLabelCategories earn the category bonus when a label's own category matches.
var affineLabelCategories = [NumCategories]map[label.Category]bool{
	Classic:  {label.CategoryStructure: true, label.CategoryTexture: true},
	Playful:  {label.CategoryMood: true, label.CategoryExpression: true},
	Romantic: {label.CategoryColorQuality: true, label.CategoryMood: true},
	Utility:  {label.CategoryStructure: true, label.CategoryWeather: true},
	Drama:    {label.CategoryExpression: true, label.CategoryColor: true},
	Edge:     {label.CategoryTexture: true, label.CategoryElement: true},
}

var affinePlanets = [NumCategories]map[string]bool{
	Classic:  set("saturn"),
	Playful:  set("mercury", "jupiter"),
	Romantic: set("venus", "moon", "neptune"),
	Utility:  set("saturn", "mercury", "ceres"),
	Drama:    set("sun", "pluto", "mars"),
	Edge:     set("uranus", "mars", "pluto"),
}

var affineSigns = [NumCategories]map[string]bool{
	Classic:  set("capricorn", "virgo", "taurus"),
	Playful:  set("gemini", "sagittarius", "leo"),
	Romantic: set("libra", "pisces", "taurus", "cancer"),
	Utility:  set("virgo", "capricorn", "taurus"),
	Drama:    set("leo", "scorpio", "aries"),
	Edge:     set("aquarius", "scorpio", "aries"),
}

// #endregion affinities

// #region personality
// personalities scales raw scores per personality key, columns in canonical order.
var personalities = map[string][NumCategories]float64{
	"classic":    {1.30, 0.90, 1.00, 1.10, 0.90, 0.80},
	"romantic":   {1.00, 0.90, 1.35, 0.90, 1.00, 0.80},
	"bohemian":   {0.80, 1.20, 1.20, 0.90, 0.90, 1.10},
	"minimalist": {1.25, 0.80, 0.90, 1.30, 0.80, 0.90},
	"dramatic":   {0.90, 1.00, 1.00, 0.80, 1.40, 1.10},
	"edgy":       {0.80, 1.00, 0.80, 0.90, 1.10, 1.40},
	"sporty":     {0.90, 1.10, 0.80, 1.40, 0.90, 1.00},
	"playful":    {0.90, 1.40, 1.00, 0.90, 1.00, 1.00},
}

var neutralMultipliers = [NumCategories]float64{1, 1, 1, 1, 1, 1}

// Multipliers returns the personality row for key, all 1.0 when unknown.
func Multipliers(key string) [NumCategories]float64 {
	if row, ok := personalities[label.Normalize(key)]; ok {
		return row
	}
	return neutralMultipliers
}

// KnownPersonality reports whether key has a dedicated row.
func KnownPersonality(key string) bool {
	_, ok := personalities[label.Normalize(key)]
	return ok
}

// #endregion personality

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
