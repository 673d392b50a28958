package suggest

import "github.com/rushteam/recipekit/core"

// Stats 是画像的只读汇总。
type Stats struct {
	SuggestionsReceived int64
	Interactions        int64
	LikedCount          int
	DislikedCount       int
	// Weights 覆盖全部餐型，未见过的餐型为 0
	Weights map[core.MealType]float64
}

// GetStats 汇总画像，不修改画像。
func GetStats(p *core.UserProfile) Stats {
	s := Stats{Weights: make(map[core.MealType]float64, len(core.MealTypes()))}
	for _, m := range core.MealTypes() {
		s.Weights[m] = 0
	}
	if p == nil {
		return s
	}
	s.SuggestionsReceived = p.TotalSuggestionsReceived
	s.Interactions = p.TotalInteractions
	s.LikedCount = len(p.Preferences.LikedRecipes)
	s.DislikedCount = len(p.Preferences.DislikedRecipes)
	for m, w := range p.Preferences.MealTypePreferences {
		s.Weights[m] = w
	}
	return s
}

// Stats 见 GetStats。
func (e *Engine) Stats(p *core.UserProfile) Stats { return GetStats(p) }
