package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/metrics"
	"github.com/rushteam/recipekit/pkg/logger"
)

// 数据源列名（food.com 数据集）
const (
	ColRecipeID     = "RecipeId"
	ColName         = "Name"
	ColRating       = "AggregatedRating"
	ColReviewCount  = "ReviewCount"
	ColPrepTime     = "PrepTime"
	ColTotalTime    = "TotalTime"
	ColInstructions = "RecipeInstructions"
)

// DefaultFiles 返回每个餐型默认的文件名：<meal>.csv。
func DefaultFiles() map[core.MealType]string {
	files := make(map[core.MealType]string)
	for _, m := range core.MealTypes() {
		files[m] = string(m) + ".csv"
	}
	return files
}

// LoadDir 并发加载 dir 下每个餐型的 CSV，餐型由文件身份决定而不是内容推断。
// 文件不存在时记录警告并跳过；缺少必需列时返回错误。
func LoadDir(ctx context.Context, dir string, files map[core.MealType]string, l zerolog.Logger) (*Catalog, error) {
	if len(files) == 0 {
		files = DefaultFiles()
	}
	log := logger.Component(l, "catalog")

	var (
		mu      sync.Mutex
		perMeal = make(map[core.MealType][]*core.Recipe, len(files))
	)
	eg, egCtx := errgroup.WithContext(ctx)

	for m := range files {
		if !m.Valid() {
			return nil, core.ErrInvalidInput.Wrap(nil, "unknown meal type %q in catalog files", m)
		}
	}

	for m, name := range files {
		mealType, fileName := m, name
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, fileName)
			f, err := os.Open(path)
			if errors.Is(err, os.ErrNotExist) {
				log.Warn().Str("meal_type", string(mealType)).Str("path", path).Msg("catalog file not found, skipping")
				return nil
			}
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			recipes, skipped, err := ReadCSV(ctxReader{ctx: egCtx, r: f}, mealType)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if skipped > 0 {
				log.Warn().Str("meal_type", string(mealType)).Int("skipped", skipped).Msg("skipped rows without id or name")
			}
			log.Info().Str("meal_type", string(mealType)).Int("recipes", len(recipes)).Msg("catalog file loaded")

			mu.Lock()
			perMeal[mealType] = recipes
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 合并顺序固定为餐型枚举顺序，保证目录顺序与并发调度无关
	var all []*core.Recipe
	for _, m := range core.MealTypes() {
		all = append(all, perMeal[m]...)
	}
	c, err := New(all)
	if err != nil {
		return nil, err
	}
	for _, m := range core.MealTypes() {
		metrics.CatalogRecipes.WithLabelValues(string(m)).Set(float64(c.Count(m)))
	}
	return c, nil
}

// ctxReader 在每次读取前检查 ctx，取消后读取立即失败
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ReadCSV 读取单个餐型的 CSV。返回菜谱、被跳过的行数。
// 同一文件内重复的 ID 只保留第一行并计入跳过数。
func ReadCSV(r io.Reader, mealType core.MealType) ([]*core.Recipe, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{ColRecipeID, ColName} {
		if _, ok := cols[required]; !ok {
			return nil, 0, core.ErrInvalidInput.Wrap(nil, "missing required column %s", required)
		}
	}

	get := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		recipes []*core.Recipe
		skipped int
		seen    = make(map[string]struct{})
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		id := normalizeID(get(row, ColRecipeID))
		name := get(row, ColName)
		if id == "" || name == "" {
			skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			skipped++
			continue
		}
		seen[id] = struct{}{}

		recipe := &core.Recipe{
			ID:           id,
			Name:         name,
			MealType:     mealType,
			PrepTime:     get(row, ColPrepTime),
			TotalTime:    get(row, ColTotalTime),
			Instructions: get(row, ColInstructions),
		}
		if v, err := strconv.ParseFloat(get(row, ColRating), 64); err == nil && v >= 0 && v <= 5 {
			recipe.AggregatedRating = &v
		}
		if v, err := strconv.ParseFloat(get(row, ColReviewCount), 64); err == nil && v >= 0 {
			n := int(v)
			recipe.ReviewCount = &n
		}
		recipes = append(recipes, recipe)
	}
	return recipes, skipped, nil
}

// normalizeID 数据集导出时整数 ID 可能带 ".0" 后缀
func normalizeID(s string) string {
	if strings.HasSuffix(s, ".0") {
		if _, err := strconv.ParseInt(strings.TrimSuffix(s, ".0"), 10, 64); err == nil {
			return strings.TrimSuffix(s, ".0")
		}
	}
	return s
}
