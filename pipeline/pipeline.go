package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：Recall → Filter → Rank → ReRank。
// 每个 Node 返回新的 items 切片，上游切片与目录数据都不会被原地修改。
type Pipeline struct {
	Nodes []Node

	// Logger 为空值时不输出
	Logger zerolog.Logger
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		before := len(cur)
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		p.Logger.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", before).
			Int("out", len(next)).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}
