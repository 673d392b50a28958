package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/recipekit/catalog"
	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/preference"
	"github.com/rushteam/recipekit/store"
)

var t0 = time.Date(2026, 2, 14, 18, 0, 0, 0, time.UTC)

// recordingStore 记录 Save 次数，可模拟失败
type recordingStore struct {
	saves int
	err   error
}

func (s *recordingStore) Load(_ context.Context, id string) (*core.UserProfile, error) {
	return core.NewUserProfile(id, t0), nil
}

func (s *recordingStore) Save(_ context.Context, _ *core.UserProfile) error {
	s.saves++
	return s.err
}

func newProcessor(t *testing.T, ps core.ProfileStore) *Processor {
	t.Helper()
	c, err := catalog.New([]*core.Recipe{
		{ID: "7", Name: "Shakshuka", MealType: core.MealBreakfast},
		{ID: "8", Name: "Lasagna", MealType: core.MealDinner},
	})
	require.NoError(t, err)
	pref, err := preference.NewEngine(preference.DefaultConfig())
	require.NoError(t, err)
	p, err := NewProcessor(c, pref, ps, WithClock(func() time.Time { return t0 }))
	require.NoError(t, err)
	return p
}

func TestRecord_DoubleLike(t *testing.T) {
	ps := &recordingStore{}
	proc := newProcessor(t, ps)
	profile := core.NewUserProfile("tony", t0)

	for i := 0; i < 2; i++ {
		_, err := proc.Record(context.Background(), profile, "7", "Shakshuka", "", true)
		require.NoError(t, err)
	}

	assert.Len(t, profile.Preferences.LikedRecipes, 1)
	assert.Equal(t, core.RecipeRef{RecipeID: "7", RecipeName: "Shakshuka"}, profile.Preferences.LikedRecipes[0])
	assert.Equal(t, 2.5, profile.RecipeRating("7"))
	assert.Equal(t, 2.0, profile.MealTypeWeight(core.MealBreakfast))
	assert.Equal(t, 2, ps.saves)
}

func TestRecord_Dislike(t *testing.T) {
	proc := newProcessor(t, &recordingStore{})
	profile := core.NewUserProfile("tony", t0)

	_, err := proc.Record(context.Background(), profile, "8", "Lasagna", "", false)
	require.NoError(t, err)
	assert.True(t, profile.IsDisliked("8"))
	assert.Equal(t, 0.5, profile.RecipeRatings["8"])
	assert.Equal(t, 0.0, profile.MealTypeWeight(core.MealDinner))

	// 不喜欢不要求菜谱在目录中
	_, err = proc.Record(context.Background(), profile, "999", "Mystery", "", false)
	require.NoError(t, err)
	assert.True(t, profile.IsDisliked("999"))
}

func TestRecord_LikeAfterDislikeMovesEntry(t *testing.T) {
	proc := newProcessor(t, nil)
	profile := core.NewUserProfile("tony", t0)

	_, err := proc.Record(context.Background(), profile, "8", "Lasagna", "", false)
	require.NoError(t, err)
	_, err = proc.Record(context.Background(), profile, "8", "", "", true)
	require.NoError(t, err)

	assert.False(t, profile.IsDisliked("8"))
	assert.True(t, profile.IsLiked("8"))
	assert.Equal(t, "Lasagna", profile.Preferences.LikedRecipes[0].RecipeName)
	assert.Equal(t, 1.5, profile.RecipeRating("8"))
}

func TestRecord_UnknownRecipeLeavesProfileUntouched(t *testing.T) {
	ps := &recordingStore{}
	proc := newProcessor(t, ps)
	profile := core.NewUserProfile("tony", t0.AddDate(0, -2, 0))
	profile.SetMealTypeWeight(core.MealDinner, 3)
	before := profile.Clone()

	_, err := proc.Record(context.Background(), profile, "404", "Ghost", "", true)
	require.Error(t, err)
	assert.True(t, core.IsRecipeNotFound(err))
	assert.Equal(t, before, profile)
	assert.Zero(t, ps.saves)
}

func TestRecord_SaveFailureKeepsMutation(t *testing.T) {
	boom := errors.New("read-only filesystem")
	proc := newProcessor(t, &recordingStore{err: boom})
	profile := core.NewUserProfile("tony", t0)

	got, err := proc.Record(context.Background(), profile, "7", "Shakshuka", "", true)
	require.Error(t, err)
	assert.True(t, core.IsStoreIO(err))
	assert.ErrorIs(t, err, boom)
	assert.Same(t, profile, got)
	assert.True(t, profile.IsLiked("7"))
}

func TestRecord_LikeCreditsSuggestedMealType(t *testing.T) {
	c, err := catalog.New([]*core.Recipe{
		{ID: "42", Name: "Chicken Salad", MealType: core.MealLunch},
		{ID: "42", Name: "Chicken Salad", MealType: core.MealDinner},
		{ID: "9", Name: "Soup", MealType: core.MealLunch},
	})
	require.NoError(t, err)
	pref, err := preference.NewEngine(preference.DefaultConfig())
	require.NoError(t, err)
	proc, err := NewProcessor(c, pref, nil, WithClock(func() time.Time { return t0 }))
	require.NoError(t, err)

	profile := core.NewUserProfile("tony", t0)
	_, err = proc.Record(context.Background(), profile, "42", "", core.MealDinner, true)
	require.NoError(t, err)
	assert.Equal(t, map[core.MealType]float64{core.MealDinner: 1}, profile.Preferences.MealTypePreferences)

	// 未给餐型时回退到目录中的第一条记录
	_, err = proc.Record(context.Background(), profile, "42", "", "", true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, profile.MealTypeWeight(core.MealLunch))

	// 指定餐型下不存在的菜谱视为未找到
	before := profile.Clone()
	_, err = proc.Record(context.Background(), profile, "9", "", core.MealDinner, true)
	assert.True(t, core.IsRecipeNotFound(err))
	assert.Equal(t, before, profile)

	_, err = proc.Record(context.Background(), profile, "42", "", "brunch", true)
	assert.True(t, core.IsInvalidInput(err))
}

func TestRecord_InvalidInput(t *testing.T) {
	proc := newProcessor(t, nil)
	_, err := proc.Record(context.Background(), nil, "7", "", "", true)
	assert.True(t, core.IsInvalidInput(err))
	_, err = proc.Record(context.Background(), core.NewUserProfile("tony", t0), "", "", "", false)
	assert.True(t, core.IsInvalidInput(err))
}

func TestRecord_PersistsThroughProfileStore(t *testing.T) {
	ps := store.NewProfileStore(store.NewMemoryStore(), store.WithClock(func() time.Time { return t0 }))
	proc := newProcessor(t, ps)

	profile, err := ps.Load(context.Background(), "tony")
	require.NoError(t, err)
	_, err = proc.Record(context.Background(), profile, "7", "Shakshuka", "", true)
	require.NoError(t, err)

	reloaded, err := ps.Load(context.Background(), "tony")
	require.NoError(t, err)
	assert.True(t, reloaded.IsLiked("7"))
	assert.Equal(t, 1.0, reloaded.MealTypeWeight(core.MealBreakfast))
	assert.Equal(t, 1.5, reloaded.RecipeRating("7"))
}
