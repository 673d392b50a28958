package preference

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/recipekit/core"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "zero max weight", mutate: func(c *Config) { c.MaxWeight = 0 }, wantErr: true},
		{name: "decay factor above one", mutate: func(c *Config) { c.DecayFactor = 1.5 }, wantErr: true},
		{name: "decay factor zero", mutate: func(c *Config) { c.DecayFactor = 0 }, wantErr: true},
		{name: "interval zero", mutate: func(c *Config) { c.DecayIntervalDays = 0 }, wantErr: true},
		{name: "negative increment", mutate: func(c *Config) { c.Increment = -1 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateWeight_Increments(t *testing.T) {
	e := newEngine(t)
	p := core.NewUserProfile("tony", t0)

	assert.Equal(t, 1.0, e.UpdateWeight(p, core.MealDinner, t0))
	assert.Equal(t, 2.0, e.UpdateWeight(p, core.MealDinner, t0))
	assert.Equal(t, 2.0, p.MealTypeWeight(core.MealDinner))
	assert.Equal(t, 0.0, p.MealTypeWeight(core.MealLunch))
}

func TestUpdateWeight_CapsAtMaxWeight(t *testing.T) {
	e := newEngine(t)
	p := core.NewUserProfile("tony", t0)

	for i := 0; i < 10; i++ {
		w := e.UpdateWeight(p, core.MealDinner, t0)
		assert.LessOrEqual(t, w, core.MaxWeight)
	}
	assert.Equal(t, core.MaxWeight, p.MealTypeWeight(core.MealDinner))
}

func TestUpdateWeight_BoundsHoldForRandomSequences(t *testing.T) {
	e := newEngine(t)
	rng := rand.New(rand.NewSource(7))
	p := core.NewUserProfile("tony", t0)
	types := core.MealTypes()
	now := t0

	for i := 0; i < 2000; i++ {
		now = now.Add(time.Duration(rng.Intn(72)) * time.Hour)
		e.UpdateWeight(p, types[rng.Intn(len(types))], now)
		for _, m := range types {
			w := p.MealTypeWeight(m)
			require.GreaterOrEqual(t, w, 0.0)
			require.LessOrEqual(t, w, core.MaxWeight)
		}
		require.False(t, p.LastDecayDate.After(now))
	}
}

func TestUpdateWeight_DecaysBeforeIncrement(t *testing.T) {
	e := newEngine(t)
	p := core.NewUserProfile("tony", t0)
	p.SetMealTypeWeight(core.MealDinner, 5.0)
	p.SetMealTypeWeight(core.MealLunch, 2.0)

	now := t0.Add(31 * 24 * time.Hour)
	w := e.UpdateWeight(p, core.MealDinner, now)

	assert.InDelta(t, 5.0, w, 1e-9) // 5*0.9+1 = 5.5 → 截断为 5
	assert.InDelta(t, 1.8, p.MealTypeWeight(core.MealLunch), 1e-9)
	assert.True(t, p.LastDecayDate.Equal(now))

	p.SetMealTypeWeight(core.MealDinner, 2.0)
	later := now.Add(30 * 24 * time.Hour)
	assert.InDelta(t, 2.8, e.UpdateWeight(p, core.MealDinner, later), 1e-9)
}

func TestApplyDecay_WithinWindowIsNoop(t *testing.T) {
	e := newEngine(t)
	p := core.NewUserProfile("tony", t0)
	p.SetMealTypeWeight(core.MealDessert, 3.0)

	now := t0.Add(29*24*time.Hour + 23*time.Hour)
	assert.False(t, e.ApplyDecay(p, now))
	assert.Equal(t, 3.0, p.MealTypeWeight(core.MealDessert))
	assert.True(t, p.LastDecayDate.Equal(t0))

	assert.Equal(t, 4.0, e.UpdateWeight(p, core.MealDessert, now))
}

func TestApplyDecay_Idempotent(t *testing.T) {
	e := newEngine(t)
	p := core.NewUserProfile("tony", t0)
	p.SetMealTypeWeight(core.MealBreakfast, 4.0)

	now := t0.Add(45 * 24 * time.Hour)
	assert.True(t, e.ApplyDecay(p, now))
	assert.False(t, e.ApplyDecay(p, now))
	assert.False(t, e.ApplyDecay(p, now.Add(time.Hour)))

	assert.InDelta(t, 3.6, p.MealTypeWeight(core.MealBreakfast), 1e-9)
	assert.True(t, p.LastDecayDate.Equal(now))
}

func TestApplyDecay_FutureDecayDateIsClamped(t *testing.T) {
	e := newEngine(t)
	p := core.NewUserProfile("tony", t0.Add(48*time.Hour))
	p.SetMealTypeWeight(core.MealLunch, 2.0)

	assert.False(t, e.ApplyDecay(p, t0))
	assert.True(t, p.LastDecayDate.Equal(t0))
	assert.Equal(t, 2.0, p.MealTypeWeight(core.MealLunch))
}

func TestApplyDecay_RepeatedCyclesFromMax(t *testing.T) {
	e := newEngine(t)
	p := core.NewUserProfile("tony", t0)
	p.SetMealTypeWeight(core.MealDinner, 5.0)

	now := t0
	want := 5.0
	for cycle := 0; cycle < 12; cycle++ {
		now = now.Add(30 * 24 * time.Hour)
		require.True(t, e.ApplyDecay(p, now))
		want *= 0.9
		assert.InDelta(t, want, p.MealTypeWeight(core.MealDinner), 1e-9)
	}
}
