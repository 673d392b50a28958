// Package config 定义进程级配置（YAML/JSON）与 Node 构建器注册表。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/logger"
	"github.com/rushteam/recipekit/preference"
	"github.com/rushteam/recipekit/suggest"
)

// EnvConfigPath 指定配置文件路径的环境变量。
const EnvConfigPath = "RECIPEKIT_CONFIG"

// 存储后端
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// App 是完整的进程配置。
type App struct {
	Log        logger.Config     `yaml:"log" json:"log"`
	Catalog    CatalogConfig     `yaml:"catalog" json:"catalog"`
	Store      StoreConfig       `yaml:"store" json:"store"`
	Preference preference.Config `yaml:"preference" json:"preference"`
	Suggest    suggest.Config    `yaml:"suggest" json:"suggest"`
	Pipeline   pipeline.Config   `yaml:"pipeline" json:"pipeline"`

	// PipelineFile 非空时从该文件（YAML 或 JSON，相对配置文件所在目录）读取 Pipeline，覆盖内联配置
	PipelineFile string `yaml:"pipeline_file" json:"pipeline_file"`
}

// CatalogConfig 描述菜谱 CSV 的位置，Files 的 key 为餐型。
type CatalogConfig struct {
	Dir   string            `yaml:"dir" json:"dir"`
	Files map[string]string `yaml:"files" json:"files"`
}

// StoreConfig 选择画像存储后端。
type StoreConfig struct {
	Backend string      `yaml:"backend" json:"backend"` // memory / file / redis
	Dir     string      `yaml:"dir" json:"dir"`         // file 后端目录
	Redis   RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig 是 redis 后端参数。
type RedisConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	DB        int    `yaml:"db" json:"db"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

// Default 返回默认配置：dataset/min 下的 CSV，users 目录下的 JSON 画像。
func Default() *App {
	files := make(map[string]string)
	for _, m := range core.MealTypes() {
		files[string(m)] = string(m) + ".csv"
	}
	return &App{
		Log: logger.Config{Level: "info", Pretty: true},
		Catalog: CatalogConfig{
			Dir:   filepath.Join("dataset", "min"),
			Files: files,
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     "users",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "recipekit:profile",
			},
		},
		Preference: preference.DefaultConfig(),
		Suggest:    suggest.DefaultConfig(),
		Pipeline:   pipeline.Config{Name: "default"},
	}
}

// Load 读取配置文件，.json 按 JSON 解析，其余按 YAML。未出现的字段保留默认值。
func Load(path string) (*App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, configError(err, "parse %s", path)
	}
	if cfg.PipelineFile != "" {
		pc, err := loadPipeline(cfg.PipelineFile, filepath.Dir(path))
		if err != nil {
			return nil, configError(err, "pipeline_file %s", cfg.PipelineFile)
		}
		cfg.Pipeline = *pc
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadPipeline(path, base string) (*pipeline.Config, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return pipeline.LoadFromJSON(path)
	}
	return pipeline.LoadFromYAML(path)
}

// Resolve 依次使用 path、环境变量 RECIPEKIT_CONFIG，都为空时返回默认配置。
func Resolve(path string) (*App, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// MealFiles 把 Files 转为按餐型索引的文件表。
func (c CatalogConfig) MealFiles() (map[core.MealType]string, error) {
	out := make(map[core.MealType]string, len(c.Files))
	for k, v := range c.Files {
		m, err := core.ParseMealType(k)
		if err != nil {
			return nil, err
		}
		out[m] = v
	}
	return out, nil
}

// Validate 校验全部配置项，返回合并后的错误。
func (a *App) Validate() error {
	var errs []error

	if a.Catalog.Dir == "" {
		errs = append(errs, errors.New("catalog.dir is empty"))
	}
	if _, err := a.Catalog.MealFiles(); err != nil {
		errs = append(errs, fmt.Errorf("catalog.files: %w", err))
	}

	switch a.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if a.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is empty"))
		}
	case BackendRedis:
		if a.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q (want memory, file or redis)", a.Store.Backend))
	}

	if err := a.Preference.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("preference: %w", err))
	}
	if err := a.Suggest.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("suggest: %w", err))
	}
	if err := ValidatePipelineConfig(&a.Pipeline); err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	}

	if len(errs) > 0 {
		return configError(errors.Join(errs...), "invalid config")
	}
	return nil
}

func configError(err error, format string, args ...any) error {
	return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config").Wrap(err, format, args...)
}
