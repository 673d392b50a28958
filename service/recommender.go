// Package service 是一次用户会话的门面：加载画像 → 分类 → 推荐 → 保存 → 反馈 → 统计。
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/catalog"
	"github.com/rushteam/recipekit/classify"
	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/feedback"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/logger"
	"github.com/rushteam/recipekit/preference"
	"github.com/rushteam/recipekit/suggest"
)

// Recommender 组合目录、分类器、偏好、推荐、反馈与画像存储。
//
// Recommender 可被多个会话共享；同一用户的操作需串行化，
// 宿主可用 Lock(userID) 获得按用户的互斥。
type Recommender struct {
	catalog    *catalog.Catalog
	classifier core.Classifier
	profiles   core.ProfileStore
	pref       *preference.Engine
	suggest    *suggest.Engine
	feedback   *feedback.Processor

	now    func() time.Time
	logger zerolog.Logger
	locks  keyedMutex
	closer func() error
}

type options struct {
	prefCfg    preference.Config
	suggestCfg suggest.Config
	extra      []pipeline.Node
	classifier core.Classifier
	rand       core.RandSource
	now        func() time.Time
	logger     zerolog.Logger
	closer     func() error
}

// Option 配置 Recommender。
type Option func(*options)

func WithPreferenceConfig(cfg preference.Config) Option {
	return func(o *options) { o.prefCfg = cfg }
}

func WithSuggestConfig(cfg suggest.Config) Option {
	return func(o *options) { o.suggestCfg = cfg }
}

// WithExtraNodes 追加配置驱动的 Pipeline 节点。
func WithExtraNodes(nodes ...pipeline.Node) Option {
	return func(o *options) { o.extra = append(o.extra, nodes...) }
}

// WithClassifier 替换默认的关键词分类器。
func WithClassifier(c core.Classifier) Option {
	return func(o *options) { o.classifier = c }
}

func WithRand(r core.RandSource) Option {
	return func(o *options) { o.rand = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// withCloser 在 Close 时释放存储后端。
func withCloser(fn func() error) Option {
	return func(o *options) { o.closer = fn }
}

// New 组装 Recommender。
func New(cat *catalog.Catalog, profiles core.ProfileStore, opts ...Option) (*Recommender, error) {
	if cat == nil {
		return nil, fmt.Errorf("service: nil catalog")
	}
	if profiles == nil {
		return nil, fmt.Errorf("service: nil profile store")
	}
	o := options{
		prefCfg:    preference.DefaultConfig(),
		suggestCfg: suggest.DefaultConfig(),
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.classifier == nil {
		o.classifier = classify.NewKeywordClassifier()
	}

	pref, err := preference.NewEngine(o.prefCfg, preference.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	suggestOpts := []suggest.EngineOption{
		suggest.WithClock(o.now),
		suggest.WithLogger(o.logger),
		suggest.WithExtraNodes(o.extra...),
	}
	if o.rand != nil {
		suggestOpts = append(suggestOpts, suggest.WithRand(o.rand))
	}
	se, err := suggest.NewEngine(cat, pref, o.suggestCfg, suggestOpts...)
	if err != nil {
		return nil, err
	}

	fp, err := feedback.NewProcessor(cat, pref, profiles,
		feedback.WithClock(o.now),
		feedback.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Recommender{
		catalog:    cat,
		classifier: o.classifier,
		profiles:   profiles,
		pref:       pref,
		suggest:    se,
		feedback:   fp,
		now:        o.now,
		logger:     logger.Component(o.logger, "service"),
		closer:     o.closer,
	}, nil
}

// Catalog 返回菜谱目录。
func (r *Recommender) Catalog() *catalog.Catalog { return r.catalog }

// Pipeline 返回推荐 Pipeline 的节点名。
func (r *Recommender) Pipeline() []string { return r.suggest.Nodes() }

// Lock 获取 userID 的互斥，返回解锁函数（可重复调用）。
func (r *Recommender) Lock(userID string) func() {
	return r.locks.lock(core.NormalizeUserID(userID))
}

// Open 加载（或新建）画像并刷新 LastLogin。
// 保存失败时仍返回画像，会话可以继续。
func (r *Recommender) Open(ctx context.Context, userID string) (*core.UserProfile, error) {
	p, err := r.profiles.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.LastLogin = r.now().UTC()
	if err := r.profiles.Save(ctx, p); err != nil {
		r.logger.Error().Err(err).Str("user_id", p.UserID).Msg("save after login failed")
		return p, err
	}
	r.logger.Info().
		Str("user_id", p.UserID).
		Int("liked", len(p.Preferences.LikedRecipes)).
		Msg("session opened")
	return p, nil
}

// Classify 把描述文本映射为餐型。
func (r *Recommender) Classify(text string) core.MealType {
	return r.classifier.Classify(text)
}

// Suggest 分类后推荐并保存画像（计数器需要持久化）。
// 保存失败时推荐结果照常返回，同时返回 ErrStoreIO。
func (r *Recommender) Suggest(ctx context.Context, p *core.UserProfile, text string, opts ...suggest.Option) (core.MealType, []*core.Recipe, error) {
	mealType := r.Classify(text)
	recipes, err := r.SuggestMeal(ctx, p, mealType, opts...)
	return mealType, recipes, err
}

// SuggestMeal 直接按餐型推荐并保存画像。
func (r *Recommender) SuggestMeal(ctx context.Context, p *core.UserProfile, mealType core.MealType, opts ...suggest.Option) ([]*core.Recipe, error) {
	recipes, err := r.suggest.Suggest(ctx, p, mealType, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.profiles.Save(ctx, p); err != nil {
		r.logger.Error().Err(err).Str("user_id", p.UserID).Msg("save after suggest failed")
		return recipes, err
	}
	return recipes, nil
}

// Feedback 记录喜欢/不喜欢并保存。mealType 传推荐时的餐型，未知时传空串。
func (r *Recommender) Feedback(ctx context.Context, p *core.UserProfile, recipeID, recipeName string, mealType core.MealType, liked bool) (*core.UserProfile, error) {
	return r.feedback.Record(ctx, p, recipeID, recipeName, mealType, liked)
}

// Stats 汇总画像。
func (r *Recommender) Stats(p *core.UserProfile) suggest.Stats {
	return r.suggest.Stats(p)
}

// userLister 由能列出已有用户的画像存储实现（store.ProfileStore）
type userLister interface {
	Users(ctx context.Context) ([]string, error)
}

// Users 列出已持久化的用户；存储不支持列举时返回空。
func (r *Recommender) Users(ctx context.Context) ([]string, error) {
	l, ok := r.profiles.(userLister)
	if !ok {
		return nil, nil
	}
	return l.Users(ctx)
}

// Close 释放存储后端。
func (r *Recommender) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
