package advisor

import "sort"

// Profile defines the tunable parameters for a RuleBrain.
type Profile struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Greed      float64 `json:"greed"`      // 0.0–1.0: willingness to reroll a scoring hand for a bigger one
	Randomness float64 `json:"randomness"` // 0.0–1.0: decision noise
}

var profiles = map[string]Profile{
	"cautious": {ID: "cautious", Name: "Cautious", Greed: 0.2, Randomness: 0.05},
	"balanced": {ID: "balanced", Name: "Balanced", Greed: 0.5, Randomness: 0.1},
	"greedy":   {ID: "greedy", Name: "Greedy", Greed: 0.9, Randomness: 0.1},
}

// DefaultProfileID is used when a caller asks for an unknown profile.
const DefaultProfileID = "balanced"

// LookupProfile returns the named profile, falling back to the default.
func LookupProfile(id string) Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return profiles[DefaultProfileID]
}

// ProfileIDs lists the registered profiles, sorted.
func ProfileIDs() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
