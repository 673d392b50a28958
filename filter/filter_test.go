package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/recipekit/core"
)

// seqRand 依次返回预设值
type seqRand struct {
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		rating := 4.0
		out = append(out, core.NewItem(&core.Recipe{
			ID: id, Name: "r" + id, MealType: core.MealLunch, AggregatedRating: &rating,
		}))
	}
	return out
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func newRctx(p float64) *core.RecommendContext {
	user := core.NewUserProfile("tony", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	user.AddLiked(core.RecipeRef{RecipeID: "1", RecipeName: "r1"})
	user.AddDisliked(core.RecipeRef{RecipeID: "2", RecipeName: "r2"})
	return &core.RecommendContext{
		UserID:                  user.UserID,
		MealType:                core.MealLunch,
		User:                    user,
		IncludeLikedProbability: p,
	}
}

func TestDislikedFilter(t *testing.T) {
	n := NewFilterNode(NewDislikedFilter())
	out, err := n.Process(context.Background(), newRctx(1), items("1", "2", "3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(out))
}

func TestFilters_UseRequestIDSets(t *testing.T) {
	rctx := newRctx(0)
	n := NewFilterNode(NewDislikedFilter(), NewLikedFilter(&seqRand{vals: []float64{0}}))
	_, err := n.Process(context.Background(), rctx, items("1", "2", "3"))
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"1": {}}, rctx.LikedIDs)
	assert.Equal(t, map[string]struct{}{"2": {}}, rctx.DislikedIDs)

	// 已构建的集合优先于画像列表
	rctx = newRctx(0)
	rctx.LikedIDs = map[string]struct{}{}
	rctx.DislikedIDs = map[string]struct{}{"3": {}}
	out, err := n.Process(context.Background(), rctx, items("1", "2", "3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(out))
}

func TestLikedFilter_Probability(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		rand []float64
		want []string
	}{
		{name: "never", p: 0, rand: []float64{0}, want: []string{"2", "3"}},
		{name: "always", p: 1, rand: []float64{0.999}, want: []string{"1", "2", "3"}},
		{name: "draw below p keeps", p: 0.2, rand: []float64{0.19}, want: []string{"1", "2", "3"}},
		{name: "draw at p drops", p: 0.2, rand: []float64{0.2}, want: []string{"2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewFilterNode(NewLikedFilter(&seqRand{vals: tt.rand}))
			out, err := n.Process(context.Background(), newRctx(tt.p), items("1", "2", "3"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(out))
		})
	}
}

func TestLikedFilter_DrawsOncePerLikedCandidate(t *testing.T) {
	r := &seqRand{vals: []float64{0.5}}
	n := NewFilterNode(NewLikedFilter(r))
	_, err := n.Process(context.Background(), newRctx(0.3), items("1", "2", "3", "4"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.i)
}

func TestFilterNode_Combined(t *testing.T) {
	n := NewFilterNode(NewDislikedFilter(), NewLikedFilter(&seqRand{vals: []float64{0.9}}), NewBlacklistFilter([]string{"4"}))
	in := items("1", "2", "3", "4", "5")
	out, err := n.Process(context.Background(), newRctx(0.2), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "5"}, ids(out))
	assert.Equal(t, "filter.disliked", in[1].Labels["filtered"].Source)
	assert.Equal(t, "filter.blacklist", in[3].Labels["filtered"].Source)
}

type errFilter struct{}

func (errFilter) Name() string { return "filter.err" }
func (errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("boom")
}

func TestFilterNode_ErrorKeepsItem(t *testing.T) {
	n := NewFilterNode(errFilter{})
	out, err := n.Process(context.Background(), newRctx(0), items("1", "3"))
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestFilterNode_NoFilters(t *testing.T) {
	in := items("1")
	out, err := NewFilterNode().Process(context.Background(), newRctx(0), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExprFilter(t *testing.T) {
	low := 1.5
	in := items("1", "3")
	in[1].Recipe.AggregatedRating = &low

	f, err := NewExprFilter(`recipe.has_rating && recipe.rating < 2.0`, false)
	require.NoError(t, err)
	out, err := NewFilterNode(f).Process(context.Background(), newRctx(1), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(out))

	keep, err := NewExprFilter(`rctx.meal_type == "lunch" && recipe.id == "3"`, true)
	require.NoError(t, err)
	out, err = NewFilterNode(keep).Process(context.Background(), newRctx(1), items("1", "3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(out))
	assert.Contains(t, keep.Expr(), "recipe.id")
}

func TestExprFilter_Invalid(t *testing.T) {
	_, err := NewExprFilter("", false)
	assert.Error(t, err)
	_, err = NewExprFilter("recipe.rating <", false)
	assert.Error(t, err)
}

func TestBlacklistFilter(t *testing.T) {
	f := NewBlacklistFilter([]string{"a", "b", "a"})
	assert.Equal(t, 2, f.Len())
	ok, err := f.ShouldFilter(context.Background(), nil, &core.Item{ID: "b"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = f.ShouldFilter(context.Background(), nil, &core.Item{ID: "c"})
	assert.False(t, ok)
}
