package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/catalog"
	"github.com/rushteam/recipekit/config"
	_ "github.com/rushteam/recipekit/config/builders"
	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/store"
)

// OpenStore 按配置创建 KV 后端。
func OpenStore(ctx context.Context, cfg config.StoreConfig) (core.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendFile:
		return store.NewFileStore(cfg.Dir), nil
	case config.BackendRedis:
		return store.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// FromConfig 按进程配置加载目录、打开存储、构建附加节点并组装 Recommender。
// 返回的 Recommender 需要 Close 以释放存储后端。
func FromConfig(ctx context.Context, cfg *config.App, logger zerolog.Logger, opts ...Option) (*Recommender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	files, err := cfg.Catalog.MealFiles()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.LoadDir(ctx, cfg.Catalog.Dir, files, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	nodes, err := config.BuildPipelineNodes(&cfg.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("build pipeline %q: %w", cfg.Pipeline.Name, err)
	}

	kv, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, core.ErrStoreIO.Wrap(err, "open %s store", cfg.Store.Backend)
	}

	// 画像存储与推荐共用同一个时钟
	probe := options{now: time.Now}
	for _, opt := range opts {
		opt(&probe)
	}
	profiles := store.NewProfileStore(kv,
		store.WithLogger(logger),
		store.WithClock(probe.now),
		store.WithMaxWeight(cfg.Preference.MaxWeight),
		store.WithIndent(cfg.Store.Backend == config.BackendFile),
	)

	all := []Option{
		WithPreferenceConfig(cfg.Preference),
		WithSuggestConfig(cfg.Suggest),
		WithExtraNodes(nodes...),
		WithLogger(logger),
		withCloser(kv.Close),
	}
	r, err := New(cat, profiles, append(all, opts...)...)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	logger.Info().
		Int("recipes", cat.Len()).
		Str("store", kv.Name()).
		Strs("pipeline", r.Pipeline()).
		Msg("recommender ready")
	return r, nil
}
