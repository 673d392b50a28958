package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/utils"
)

// MealTypeIndex 按餐型列出菜谱，catalog.Catalog 实现此接口。
type MealTypeIndex interface {
	ByMealType(m core.MealType) []*core.Recipe
}

// CatalogRecall 从菜谱目录中取出 rctx.MealType 下的全部菜谱，保持目录顺序。
// 它同时实现了 Source 和 Node 接口，通常作为 Pipeline 的第一个节点。
type CatalogRecall struct {
	Catalog MealTypeIndex
}

var (
	_ Source        = (*CatalogRecall)(nil)
	_ pipeline.Node = (*CatalogRecall)(nil)
)

func (r *CatalogRecall) Name() string        { return "recall.catalog" }
func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，忽略上游 items，直接调用 Recall
func (r *CatalogRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *CatalogRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil {
		return nil, fmt.Errorf("recall.catalog: nil catalog")
	}
	if rctx == nil || !rctx.MealType.Valid() {
		return nil, core.ErrInvalidInput.Wrap(nil, "recall meal type")
	}

	recipes := r.Catalog.ByMealType(rctx.MealType)
	out := make([]*core.Item, 0, len(recipes))
	for _, rec := range recipes {
		it := core.NewItem(rec)
		it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: utils.SourceRecall})
		out = append(out, it)
	}
	return out, nil
}
