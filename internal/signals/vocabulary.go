package signals

// #region drivers
var (
	actionStrongPlanets    = set("mars", "sun", "jupiter")
	actionSecondaryPlanets = set("uranus", "pluto")
	actionSecondarySigns   = set("aries")
	structurePlanets       = set("saturn", "mercury")
	prominencePlanets      = set("sun", "jupiter")
	prominenceHouses       = map[int]bool{1: true, 10: true}
	introversionHouses     = map[int]bool{4: true, 8: true, 12: true}
)

// #endregion drivers

// #region keywords
// Keyword lists match at token starts of the normalized label name.
var (
	actionWords       = []string{"bold", "dynamic", "fierce", "energetic", "assertive", "driven", "fiery", "active", "power", "daring", "brave", "urgent"}
	restraintWords    = []string{"calm", "passive", "gentle", "still", "languid", "idle"}
	fastWords         = []string{"quick", "fast", "swift", "restless", "electric", "spontaneous", "lively", "sudden", "rapid"}
	slowWords         = []string{"slow", "steady", "patient", "lingering", "dreamy", "calm", "languid"}
	disciplineWords   = []string{"disciplined", "structured", "methodical", "focused", "strategic", "practical", "grounded", "precise", "patient", "tailored", "orderly"}
	chaosWords        = []string{"chaotic", "scattered", "impulsive", "spontaneous", "wild", "messy"}
	visibilityWords   = []string{"visible", "radiant", "expressive", "bold", "public", "magnetic", "dramatic", "confident", "vibrant", "glamorous", "striking"}
	introversionWords = []string{"introspective", "private", "quiet", "reserved", "subtle", "hidden", "reflective", "withdrawn", "solitary", "understated"}
)

// #endregion keywords

// #region phases
// phaseIllumination maps phase-origin label names to a [0,1] intensity.
var phaseIllumination = map[string]float64{
	"new_moon":        0.0,
	"waxing_crescent": 0.25,
	"first_quarter":   0.5,
	"waxing_gibbous":  0.75,
	"full_moon":       1.0,
	"waning_gibbous":  0.75,
	"last_quarter":    0.5,
	"third_quarter":   0.5,
	"waning_crescent": 0.25,
}

// #endregion phases

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
