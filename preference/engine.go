// Package preference 维护用户画像中的餐型偏好权重：加权、上限与按时间衰减。
//
// 衰减是惰性的：没有后台定时器，每次读写权重前调用 ApplyDecay，
// 距上次衰减满一个周期才生效，同一周期内重复调用是幂等的。
package preference

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/metrics"
	"github.com/rushteam/recipekit/pkg/logger"
)

// Config 是偏好权重参数。
type Config struct {
	MaxWeight         float64 `yaml:"max_weight" json:"max_weight"`
	DecayFactor       float64 `yaml:"decay_factor" json:"decay_factor"`
	DecayIntervalDays int     `yaml:"decay_interval_days" json:"decay_interval_days"`
	Increment         float64 `yaml:"increment" json:"increment"`
}

// DefaultConfig 返回默认参数：上限 5.0，每 30 天乘 0.9，每次喜欢 +1.0。
func DefaultConfig() Config {
	return Config{
		MaxWeight:         core.MaxWeight,
		DecayFactor:       core.DecayFactor,
		DecayIntervalDays: core.DecayIntervalDays,
		Increment:         core.WeightIncrement,
	}
}

// Validate 校验参数范围。
func (c Config) Validate() error {
	if c.MaxWeight <= 0 {
		return fmt.Errorf("max_weight must be positive, got %v", c.MaxWeight)
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		return fmt.Errorf("decay_factor must be in (0, 1], got %v", c.DecayFactor)
	}
	if c.DecayIntervalDays <= 0 {
		return fmt.Errorf("decay_interval_days must be positive, got %d", c.DecayIntervalDays)
	}
	if c.Increment <= 0 {
		return fmt.Errorf("increment must be positive, got %v", c.Increment)
	}
	return nil
}

// Engine 是唯一修改 MealTypePreferences 的组件。无内部状态，可并发使用，
// 但同一个 UserProfile 上的调用需要由调用方串行化。
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// Option 配置 Engine。
type Option func(*Engine)

// WithLogger 注入 logger。
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.Component(l, "preference")
	}
}

// NewEngine 创建偏好引擎。
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preference config: %w", err)
	}
	e := &Engine{cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config 返回当前参数。
func (e *Engine) Config() Config { return e.cfg }

// ApplyDecay 若距 LastDecayDate 已满 DecayIntervalDays 个整天，所有权重乘以 DecayFactor，
// 并把 LastDecayDate 设为 now。返回是否发生衰减。
//
// LastDecayDate 晚于 now（时钟回拨）时被拉回 now，不衰减。
func (e *Engine) ApplyDecay(p *core.UserProfile, now time.Time) bool {
	if p == nil {
		return false
	}
	now = now.UTC()

	if p.LastDecayDate.After(now) {
		p.LastDecayDate = now
		return false
	}

	days := int(now.Sub(p.LastDecayDate) / (24 * time.Hour))
	if days < e.cfg.DecayIntervalDays {
		return false
	}

	for m, w := range p.Preferences.MealTypePreferences {
		p.Preferences.MealTypePreferences[m] = e.clamp(w * e.cfg.DecayFactor)
	}
	p.LastDecayDate = now
	metrics.DecayApplied.Inc()

	e.logger.Info().
		Str("user_id", p.UserID).
		Int("days", days).
		Float64("factor", e.cfg.DecayFactor).
		Msg("applied preference decay")
	return true
}

// UpdateWeight 先衰减，再把 mealType 的权重加上 Increment 并截断到 MaxWeight。
// 返回更新后的权重。这是权重唯一的增加路径。
func (e *Engine) UpdateWeight(p *core.UserProfile, mealType core.MealType, now time.Time) float64 {
	e.ApplyDecay(p, now)

	w := e.clamp(p.MealTypeWeight(mealType) + e.cfg.Increment)
	p.SetMealTypeWeight(mealType, w)

	e.logger.Debug().
		Str("user_id", p.UserID).
		Str("meal_type", string(mealType)).
		Float64("weight", w).
		Msg("updated meal type weight")
	return w
}

// clamp 把权重限制在 [0, MaxWeight]，NaN 视为 0。
func (e *Engine) clamp(w float64) float64 {
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return math.Min(w, e.cfg.MaxWeight)
}
