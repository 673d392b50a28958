// Package suggest 为用户生成某个餐型的菜谱推荐。
//
// 一次 Suggest 调用依次执行：惰性衰减 → 按餐型召回 → 剔除不喜欢的 →
// 按概率放回已喜欢的 → 可配置的额外节点 → 偏好打分排序 → Top-N，最后累加计数器。
// 目录数据只读，每次调用都构建新的候选切片。
package suggest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/filter"
	"github.com/rushteam/recipekit/metrics"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/logger"
	"github.com/rushteam/recipekit/preference"
	"github.com/rushteam/recipekit/rank"
	"github.com/rushteam/recipekit/recall"
	"github.com/rushteam/recipekit/rerank"
)

// Config 是推荐参数。
type Config struct {
	NumSuggestions          int     `yaml:"num_suggestions" json:"num_suggestions"`
	IncludeLikedProbability float64 `yaml:"include_liked_probability" json:"include_liked_probability"`
	// Seed 为 0 时随机源以当前时间播种
	Seed int64 `yaml:"seed" json:"seed"`
}

// DefaultConfig 返回默认参数：每次 3 条，已喜欢菜谱 20% 概率重新入选。
func DefaultConfig() Config {
	return Config{
		NumSuggestions:          3,
		IncludeLikedProbability: 0.2,
	}
}

// Validate 校验参数范围。
func (c Config) Validate() error {
	if c.NumSuggestions <= 0 {
		return fmt.Errorf("num_suggestions must be positive, got %d", c.NumSuggestions)
	}
	p := c.IncludeLikedProbability
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("include_liked_probability must be in [0, 1], got %v", p)
	}
	return nil
}

// Engine 组装推荐 Pipeline。自身不持有用户状态，可被多个会话共享；
// 同一 UserProfile 上的调用需要由调用方串行化。
type Engine struct {
	cfg      Config
	pref     *preference.Engine
	pipeline *pipeline.Pipeline

	rand   core.RandSource
	now    func() time.Time
	logger zerolog.Logger
	extra  []pipeline.Node
}

// EngineOption 配置 Engine。
type EngineOption func(*Engine)

// WithRand 注入随机源，优先于 Config.Seed。
func WithRand(r core.RandSource) EngineOption {
	return func(e *Engine) { e.rand = r }
}

// WithClock 注入时钟，衰减判断以它为准。
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithLogger 注入 logger。
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger.Component(l, "suggest")
	}
}

// WithExtraNodes 插入额外节点（如配置的表达式过滤、黑名单）。
// rerank 类型的节点放在打分之后，其余放在内置过滤与打分之间。
func WithExtraNodes(nodes ...pipeline.Node) EngineOption {
	return func(e *Engine) { e.extra = append(e.extra, nodes...) }
}

// NewEngine 创建推荐引擎。pref 为 nil 时使用默认偏好参数。
func NewEngine(catalog recall.MealTypeIndex, pref *preference.Engine, cfg Config, opts ...EngineOption) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("suggest: nil catalog")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suggest config: %w", err)
	}
	if pref == nil {
		var err error
		if pref, err = preference.NewEngine(preference.DefaultConfig()); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		cfg:    cfg,
		pref:   pref,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rand == nil {
		e.rand = NewRand(cfg.Seed)
	}

	filters := filter.NewFilterNode(filter.NewDislikedFilter(), filter.NewLikedFilter(e.rand))
	filters.Logger = e.logger

	// 额外节点中 rerank 类型放在打分之后，其余放在打分之前
	var preRank, postRank []pipeline.Node
	for _, n := range e.extra {
		if n.Kind() == pipeline.KindReRank {
			postRank = append(postRank, n)
		} else {
			preRank = append(preRank, n)
		}
	}
	nodes := []pipeline.Node{&recall.CatalogRecall{Catalog: catalog}, filters}
	nodes = append(nodes, preRank...)
	nodes = append(nodes, rank.NewPreferenceNode())
	nodes = append(nodes, postRank...)
	nodes = append(nodes, &rerank.TopNNode{N: cfg.NumSuggestions, Param: rerank.ParamNumSuggestions})
	e.pipeline = &pipeline.Pipeline{Nodes: nodes, Logger: e.logger}
	return e, nil
}

// Config 返回当前参数。
func (e *Engine) Config() Config { return e.cfg }

// Nodes 返回 Pipeline 的节点名，便于启动时打印。
func (e *Engine) Nodes() []string {
	out := make([]string, 0, len(e.pipeline.Nodes))
	for _, n := range e.pipeline.Nodes {
		out = append(out, n.Name())
	}
	return out
}

// Option 是单次请求的参数。
type Option func(*request)

type request struct {
	n      int
	prob   float64
	params map[string]any
}

// WithNumSuggestions 覆盖本次返回条数；n <= 0 时使用默认值。
func WithNumSuggestions(n int) Option {
	return func(r *request) { r.n = n }
}

// WithIncludeLikedProbability 覆盖本次已喜欢菜谱的入选概率，越界值被截断到 [0, 1]。
func WithIncludeLikedProbability(p float64) Option {
	return func(r *request) { r.prob = p }
}

// WithParams 透传请求参数给表达式过滤器（rctx.params）。
func WithParams(params map[string]any) Option {
	return func(r *request) {
		for k, v := range params {
			r.params[k] = v
		}
	}
}

func (e *Engine) newRequest(opts []Option) request {
	r := request{
		n:      e.cfg.NumSuggestions,
		prob:   e.cfg.IncludeLikedProbability,
		params: make(map[string]any),
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.n <= 0 {
		r.n = e.cfg.NumSuggestions
	}
	switch {
	case math.IsNaN(r.prob):
		r.prob = e.cfg.IncludeLikedProbability
	case r.prob < 0:
		r.prob = 0
	case r.prob > 1:
		r.prob = 1
	}
	r.params[rerank.ParamNumSuggestions] = r.n
	return r
}

// Suggest 返回 mealType 下按分数降序的至多 N 个菜谱。
//
// 会修改 p：先做惰性衰减，再累加 TotalSuggestionsReceived（返回条数）与
// TotalInteractions（+1，空结果也算）。不负责持久化。
func (e *Engine) Suggest(ctx context.Context, p *core.UserProfile, mealType core.MealType, opts ...Option) ([]*core.Recipe, error) {
	if p == nil {
		return nil, core.ErrInvalidInput.Wrap(nil, "nil profile")
	}
	if !mealType.Valid() {
		return nil, core.ErrInvalidInput.Wrap(nil, "meal type %q", mealType)
	}
	req := e.newRequest(opts)
	now := e.now().UTC()

	e.pref.ApplyDecay(p, now)

	rctx := &core.RecommendContext{
		UserID:                  p.UserID,
		MealType:                mealType,
		User:                    p,
		IncludeLikedProbability: req.prob,
		LikedIDs:                p.LikedIDs(),
		DislikedIDs:             p.DislikedIDs(),
		Params:                  req.params,
	}
	items, err := e.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", mealType, err)
	}
	result := core.Recipes(items)

	p.TotalSuggestionsReceived += int64(len(result))
	p.TotalInteractions++
	metrics.RecordSuggest(string(mealType), len(result))

	e.logger.Debug().
		Str("user_id", p.UserID).
		Str("meal_type", string(mealType)).
		Int("requested", req.n).
		Int("returned", len(result)).
		Msg("suggestions generated")
	return result, nil
}
