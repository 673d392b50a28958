package recall

import (
	"context"

	"github.com/rushteam/recipekit/core"
)

// Source 是召回源的抽象接口，从某个数据源取出候选菜谱。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
