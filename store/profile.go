package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/metrics"
	"github.com/rushteam/recipekit/pkg/logger"
)

// ProfileStore 把 core.UserProfile 以 JSON 形式存进任意 core.Store，key 为规范化后的用户 ID。
//
//   - Load：key 不存在 → 新建零值画像（不是错误）；读取失败 → ErrStoreIO；
//     无法解码或结构无效 → ErrMalformedProfile（不会用默认值掩盖坏数据）
//   - Save：编码并写入，失败 → ErrStoreIO
type ProfileStore struct {
	kv        core.Store
	now       func() time.Time
	logger    zerolog.Logger
	maxWeight float64
	indent    bool
}

var _ core.ProfileStore = (*ProfileStore)(nil)

// ProfileOption 配置 ProfileStore。
type ProfileOption func(*ProfileStore)

// WithClock 注入时钟（新建画像的时间戳）。
func WithClock(now func() time.Time) ProfileOption {
	return func(s *ProfileStore) { s.now = now }
}

// WithLogger 注入 logger。
func WithLogger(l zerolog.Logger) ProfileOption {
	return func(s *ProfileStore) {
		s.logger = logger.Component(l, "profile_store")
	}
}

// WithMaxWeight 设置校验用的权重上限，需与 preference.Config.MaxWeight 一致。
func WithMaxWeight(w float64) ProfileOption {
	return func(s *ProfileStore) { s.maxWeight = w }
}

// WithIndent 以缩进格式写入，便于人工查看磁盘文件。
func WithIndent(indent bool) ProfileOption {
	return func(s *ProfileStore) { s.indent = indent }
}

// NewProfileStore 基于 KV 后端创建画像存储。
func NewProfileStore(kv core.Store, opts ...ProfileOption) *ProfileStore {
	s := &ProfileStore{
		kv:        kv,
		now:       time.Now,
		logger:    zerolog.Nop(),
		maxWeight: core.MaxWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend 返回 KV 后端名称。
func (s *ProfileStore) Backend() string { return s.kv.Name() }

func (s *ProfileStore) Load(ctx context.Context, userID string) (*core.UserProfile, error) {
	id := core.NormalizeUserID(userID)
	if id == "" {
		return nil, core.ErrInvalidInput.Wrap(nil, "empty user id")
	}

	data, err := s.kv.Get(ctx, id)
	if core.IsStoreNotFound(err) {
		metrics.RecordStoreOp(s.kv.Name(), "load", "")
		s.logger.Info().Str("user_id", id).Msg("creating new profile")
		return core.NewUserProfile(id, s.now()), nil
	}
	if err != nil {
		metrics.RecordStoreOp(s.kv.Name(), "load", "io")
		s.logger.Error().Err(err).Str("user_id", id).Msg("profile load failed")
		return nil, core.ErrStoreIO.Wrap(err, "load %s", id)
	}

	p, err := DecodeProfile(data)
	if err == nil {
		err = ValidateProfile(p, id, s.maxWeight)
	}
	if err != nil {
		metrics.RecordStoreOp(s.kv.Name(), "load", "malformed")
		s.logger.Error().Err(err).Str("user_id", id).Msg("stored profile is malformed")
		return nil, err
	}

	metrics.RecordStoreOp(s.kv.Name(), "load", "")
	return p, nil
}

func (s *ProfileStore) Save(ctx context.Context, p *core.UserProfile) error {
	if p == nil || core.NormalizeUserID(p.UserID) == "" {
		return core.ErrInvalidInput.Wrap(nil, "profile without user id")
	}
	id := core.NormalizeUserID(p.UserID)

	data, err := EncodeProfile(p, s.indent)
	if err != nil {
		metrics.RecordStoreOp(s.kv.Name(), "save", "encode")
		return core.ErrStoreIO.Wrap(err, "encode %s", id)
	}
	if err := s.kv.Set(ctx, id, data); err != nil {
		metrics.RecordStoreOp(s.kv.Name(), "save", "io")
		s.logger.Error().Err(err).Str("user_id", id).Msg("profile save failed")
		return core.ErrStoreIO.Wrap(err, "save %s", id)
	}

	metrics.RecordStoreOp(s.kv.Name(), "save", "")
	s.logger.Debug().Str("user_id", id).Int("bytes", len(data)).Msg("profile saved")
	return nil
}

// Users 列出已持久化的用户 ID。
func (s *ProfileStore) Users(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, core.ErrStoreIO.Wrap(err, "list users")
	}
	return keys, nil
}

// EncodeProfile 序列化画像。
func EncodeProfile(p *core.UserProfile, indent bool) ([]byte, error) {
	c := p.Clone()
	c.EnsureInit()
	if indent {
		return json.MarshalIndent(c, "", "  ")
	}
	return json.Marshal(c)
}

// profileWire 与 core.UserProfile 字段一致；必需字段用指针区分缺失与零值，时间戳先按字符串读入再宽松解析
type profileWire struct {
	UserID                   string             `json:"user_id"`
	Preferences              *preferencesWire   `json:"preferences"`
	RecipeRatings            map[string]float64 `json:"recipe_ratings"`
	LastLogin                *string            `json:"last_login"`
	LastDecayDate            *string            `json:"last_decay_date"`
	TotalSuggestionsReceived *int64             `json:"total_suggestions_received"`
	TotalInteractions        *int64             `json:"total_interactions"`
}

type preferencesWire struct {
	LikedRecipes        *[]core.RecipeRef         `json:"liked_recipes"`
	DislikedRecipes     *[]core.RecipeRef         `json:"disliked_recipes"`
	DietaryRestrictions core.StringSet            `json:"dietary_restrictions"`
	FavoriteCuisines    core.StringSet            `json:"favorite_cuisines"`
	MealTypePreferences map[core.MealType]float64 `json:"meal_type_preferences"`
}

// missingFields 列出缺失的必需字段
func (w *profileWire) missingFields() []string {
	var missing []string
	if w.Preferences == nil {
		missing = append(missing, "preferences")
	} else {
		if w.Preferences.LikedRecipes == nil {
			missing = append(missing, "preferences.liked_recipes")
		}
		if w.Preferences.DislikedRecipes == nil {
			missing = append(missing, "preferences.disliked_recipes")
		}
		if w.Preferences.MealTypePreferences == nil {
			missing = append(missing, "preferences.meal_type_preferences")
		}
	}
	if w.RecipeRatings == nil {
		missing = append(missing, "recipe_ratings")
	}
	if w.LastLogin == nil || *w.LastLogin == "" {
		missing = append(missing, "last_login")
	}
	if w.LastDecayDate == nil || *w.LastDecayDate == "" {
		missing = append(missing, "last_decay_date")
	}
	if w.TotalSuggestionsReceived == nil {
		missing = append(missing, "total_suggestions_received")
	}
	if w.TotalInteractions == nil {
		missing = append(missing, "total_interactions")
	}
	return missing
}

// isoLayouts 兼容带时区的 RFC3339 与不带时区的 ISO-8601（视为 UTC）
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseISO(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// DecodeProfile 反序列化画像；缺少必需字段或任何结构错误都返回 ErrMalformedProfile，不补默认值。
func DecodeProfile(data []byte) (*core.UserProfile, error) {
	var wire profileWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, core.ErrMalformedProfile.Wrap(err, "decode")
	}
	if missing := wire.missingFields(); len(missing) > 0 {
		return nil, core.ErrMalformedProfile.Wrap(nil, "missing %s", strings.Join(missing, ", "))
	}

	p := core.UserProfile{
		UserID: wire.UserID,
		Preferences: core.Preferences{
			LikedRecipes:        *wire.Preferences.LikedRecipes,
			DislikedRecipes:     *wire.Preferences.DislikedRecipes,
			DietaryRestrictions: wire.Preferences.DietaryRestrictions,
			FavoriteCuisines:    wire.Preferences.FavoriteCuisines,
			MealTypePreferences: wire.Preferences.MealTypePreferences,
		},
		RecipeRatings:            wire.RecipeRatings,
		TotalSuggestionsReceived: *wire.TotalSuggestionsReceived,
		TotalInteractions:        *wire.TotalInteractions,
	}
	lastLogin, err := parseISO(*wire.LastLogin)
	if err != nil {
		return nil, core.ErrMalformedProfile.Wrap(err, "last_login")
	}
	p.LastLogin = lastLogin
	lastDecay, err := parseISO(*wire.LastDecayDate)
	if err != nil {
		return nil, core.ErrMalformedProfile.Wrap(err, "last_decay_date")
	}
	p.LastDecayDate = lastDecay

	p.EnsureInit()
	return &p, nil
}

// ValidateProfile 检查已解码画像的结构不变量。
func ValidateProfile(p *core.UserProfile, wantID string, maxWeight float64) error {
	var problems []string

	id := core.NormalizeUserID(p.UserID)
	switch {
	case id == "":
		problems = append(problems, "missing user_id")
	case wantID != "" && id != core.NormalizeUserID(wantID):
		problems = append(problems, fmt.Sprintf("user_id %q does not match %q", p.UserID, wantID))
	}

	for m, w := range p.Preferences.MealTypePreferences {
		if !m.Valid() {
			problems = append(problems, fmt.Sprintf("unknown meal type %q", m))
			continue
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 || w > maxWeight {
			problems = append(problems, fmt.Sprintf("weight %s=%v out of [0, %v]", m, w, maxWeight))
		}
	}
	for rid, r := range p.RecipeRatings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			problems = append(problems, fmt.Sprintf("rating %s is not finite", rid))
		}
	}
	for _, refs := range [][]core.RecipeRef{p.Preferences.LikedRecipes, p.Preferences.DislikedRecipes} {
		for _, ref := range refs {
			if ref.RecipeID == "" {
				problems = append(problems, "recipe reference without recipe_id")
			}
		}
	}
	if p.TotalSuggestionsReceived < 0 || p.TotalInteractions < 0 {
		problems = append(problems, "negative counters")
	}

	if len(problems) > 0 {
		return core.ErrMalformedProfile.Wrap(errors.New(strings.Join(problems, "; ")), "validate")
	}
	p.UserID = id
	return nil
}
