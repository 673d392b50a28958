// Package feedback 把用户对某个菜谱的喜欢/不喜欢写回画像并持久化。
package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/metrics"
	"github.com/rushteam/recipekit/pkg/logger"
	"github.com/rushteam/recipekit/preference"
)

// Processor 分三步处理一次反馈：
//
//  1. 校验：喜欢时菜谱必须在目录中，否则返回 ErrRecipeNotFound，画像不变也不保存
//  2. 修改：更新 liked/disliked 列表、菜谱评分，喜欢时增加对应餐型的权重
//  3. 保存：失败返回 ErrStoreIO，内存中的修改保留
type Processor struct {
	catalog core.RecipeLookup
	pref    *preference.Engine
	store   core.ProfileStore

	now    func() time.Time
	logger zerolog.Logger
}

// Option 配置 Processor。
type Option func(*Processor)

// WithClock 注入时钟。
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithLogger 注入 logger。
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger.Component(l, "feedback")
	}
}

// NewProcessor 创建反馈处理器。store 为 nil 时只修改内存中的画像。
func NewProcessor(catalog core.RecipeLookup, pref *preference.Engine, store core.ProfileStore, opts ...Option) (*Processor, error) {
	if catalog == nil {
		return nil, fmt.Errorf("feedback: nil catalog")
	}
	if pref == nil {
		return nil, fmt.Errorf("feedback: nil preference engine")
	}
	p := &Processor{
		catalog: catalog,
		pref:    pref,
		store:   store,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Record 记录一次反馈并返回（已修改的）同一个画像。
//
// mealType 是推荐该菜谱时使用的餐型，喜欢时增加的是这个餐型的权重；
// 为空时回退到目录中该 ID 的第一条记录。
func (p *Processor) Record(
	ctx context.Context,
	profile *core.UserProfile,
	recipeID, recipeName string,
	mealType core.MealType,
	liked bool,
) (*core.UserProfile, error) {
	if profile == nil {
		return nil, core.ErrInvalidInput.Wrap(nil, "nil profile")
	}
	if recipeID == "" {
		return profile, core.ErrInvalidInput.Wrap(nil, "empty recipe id")
	}
	if mealType != "" && !mealType.Valid() {
		return profile, core.ErrInvalidInput.Wrap(nil, "meal type %q", mealType)
	}

	var recipe *core.Recipe
	if liked {
		r, ok := p.lookup(mealType, recipeID)
		if !ok {
			metrics.FeedbackTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
			p.logger.Warn().
				Str("user_id", profile.UserID).
				Str("recipe_id", recipeID).
				Str("meal_type", string(mealType)).
				Msg("feedback for unknown recipe")
			return profile, core.ErrRecipeNotFound.Wrap(nil, "%s", recipeID)
		}
		recipe = r
	}

	if recipeName == "" && recipe != nil {
		recipeName = recipe.Name
	}
	ref := core.RecipeRef{RecipeID: recipeID, RecipeName: recipeName}
	now := p.now()

	outcome := metrics.OutcomeDisliked
	if liked {
		outcome = metrics.OutcomeLiked
		profile.AddLiked(ref)
		p.pref.UpdateWeight(profile, recipe.MealType, now)
		profile.AddRecipeRating(recipeID, core.LikedRatingIncrement)
	} else {
		profile.AddDisliked(ref)
		profile.AddRecipeRating(recipeID, 0)
	}
	metrics.FeedbackTotal.WithLabelValues(outcome).Inc()

	p.logger.Info().
		Str("user_id", profile.UserID).
		Str("recipe_id", recipeID).
		Bool("liked", liked).
		Float64("rating", profile.RecipeRating(recipeID)).
		Msg("feedback recorded")

	if p.store == nil {
		return profile, nil
	}
	if err := p.store.Save(ctx, profile); err != nil {
		if core.IsStoreIO(err) {
			return profile, err
		}
		return profile, core.ErrStoreIO.Wrap(err, "save after feedback")
	}
	return profile, nil
}

func (p *Processor) lookup(mealType core.MealType, id string) (*core.Recipe, bool) {
	if mealType == "" {
		return p.catalog.Get(id)
	}
	return p.catalog.Lookup(mealType, id)
}
