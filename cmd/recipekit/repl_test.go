package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/recipekit/catalog"
	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/service"
	"github.com/rushteam/recipekit/store"
)

func TestRunREPL(t *testing.T) {
	rating := 4.2
	cat, err := catalog.New([]*core.Recipe{
		{ID: "1", Name: "Pancakes", MealType: core.MealBreakfast, AggregatedRating: &rating, TotalTime: "PT20M"},
		{ID: "2", Name: "Cheesecake", MealType: core.MealDessert},
	})
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC) }
	kv := store.NewMemoryStore()
	profiles := store.NewProfileStore(kv, store.WithClock(now))
	r, err := service.New(cat, profiles, service.WithClock(now))
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		"",
		"Tony",
		"something for the morning",
		"y",
		"something sweet",
		"n",
		"lunch",
		"stats",
		"quit",
	}, "\n") + "\n")
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), r, in, &out))

	text := out.String()
	assert.Contains(t, text, "Welcome, tony!")
	assert.Contains(t, text, "Suggested breakfast recipes:")
	assert.Contains(t, text, "1. Pancakes (rating 4.2, PT20M)")
	assert.Contains(t, text, "Suggested dessert recipes:")
	assert.Contains(t, text, "No lunch recipes to suggest right now.")
	assert.Contains(t, text, "Liked: 1, disliked: 1")
	assert.Contains(t, text, "breakfast  1.00")
	assert.Contains(t, text, "Goodbye!")

	p, err := profiles.Load(context.Background(), "tony")
	require.NoError(t, err)
	assert.True(t, p.IsLiked("1"))
	assert.True(t, p.IsDisliked("2"))
	assert.Equal(t, int64(3), p.TotalInteractions)
	assert.NotContains(t, text, "Known users:")

	out.Reset()
	require.NoError(t, runREPL(context.Background(), r, strings.NewReader("alice\nquit\n"), &out))
	assert.Contains(t, out.String(), "Known users: tony\n")
}

func TestRunREPL_EOF(t *testing.T) {
	cat, err := catalog.New(nil)
	require.NoError(t, err)
	r, err := service.New(cat, store.NewProfileStore(store.NewMemoryStore()))
	require.NoError(t, err)

	var out bytes.Buffer
	assert.NoError(t, runREPL(context.Background(), r, strings.NewReader("tony\n"), &out))
	assert.Contains(t, out.String(), "Welcome, tony!")
}

// zeroRand 让已喜欢的菜谱总是重新入选
type zeroRand struct{}

func (zeroRand) Float64() float64 { return 0 }

func TestRunREPL_MarksLikedRecipes(t *testing.T) {
	rating := 4.2
	cat, err := catalog.New([]*core.Recipe{
		{ID: "1", Name: "Pancakes", MealType: core.MealBreakfast, AggregatedRating: &rating},
	})
	require.NoError(t, err)
	r, err := service.New(cat, store.NewProfileStore(store.NewMemoryStore()), service.WithRand(zeroRand{}))
	require.NoError(t, err)

	in := strings.NewReader("tony\nbreakfast\ny\nbreakfast\n\nquit\n")
	var out bytes.Buffer
	require.NoError(t, runREPL(context.Background(), r, in, &out))

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "1. Pancakes (rating 4.2)\n"))
	assert.Equal(t, 1, strings.Count(text, "1. Pancakes (rating 4.2) *\n"))
}
