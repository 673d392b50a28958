package classify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/recipekit/core"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	c := NewKeywordClassifier()
	tests := []struct {
		text string
		want core.MealType
	}{
		{text: "Quick morning meal", want: core.MealBreakfast},
		{text: "Something sweet", want: core.MealDessert},
		{text: "a light SOUP for lunch", want: core.MealLunch},
		{text: "hors d'oeuvre for the party", want: core.MealAppetizer},
		{text: "Hors d’oeuvre", want: core.MealAppetizer},
		{text: "hearty main course", want: core.MealDinner},
		{text: "cookies and cakes", want: core.MealDessert},
		{text: "sandwiches", want: core.MealLunch},
		{text: "", want: core.MealDinner},
		{text: "!!!", want: core.MealDinner},
		{text: "something nice", want: core.MealDinner},
		{text: "main", want: core.MealDinner},
		// 平票按优先级
		{text: "snack or salad", want: core.MealLunch},
		{text: "sweet snack", want: core.MealAppetizer},
		{text: "dinner dessert", want: core.MealDessert},
		// 命中更多者胜出
		{text: "supper dish with pie", want: core.MealDinner},
		// 引号与所有格
		{text: "I want 'breakfast'", want: core.MealBreakfast},
		{text: "the dessert's sweetness", want: core.MealDessert},
		{text: "mom’s lunch", want: core.MealLunch},
		{text: "' '' '", want: core.MealDinner},
		// 子串不算命中
		{text: "pineapple", want: core.MealDinner},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestKeywordClassifier_CustomTable(t *testing.T) {
	c := NewKeywordClassifierWith(map[core.MealType][]string{
		core.MealDessert: {"gelato", ""},
		"brunch":         {"eggs"},
	})
	assert.Equal(t, core.MealDessert, c.Classify("gelato please"))
	assert.Equal(t, core.MealDinner, c.Classify("eggs"))
}

func TestKeywordClassifier_Concurrent(t *testing.T) {
	c := NewKeywordClassifier()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, core.MealBreakfast, c.Classify("brunch"))
			}
		}()
	}
	wg.Wait()
}
