package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述过滤规则，表达式为 true 时剔除。
//
// 例如 `recipe.has_rating && recipe.rating < 2.0` 去掉低分菜谱。
// Invert 为 true 时语义反转：表达式为 true 时保留（白名单式规则）。
type ExprFilter struct {
	expr   *dsl.Expr
	Invert bool
}

// NewExprFilter 编译表达式并创建过滤器。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("filter.expr: %w", err)
	}
	return &ExprFilter{expr: e, Invert: invert}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回表达式原文。
func (f *ExprFilter) Expr() string { return f.expr.String() }

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	ok, err := f.expr.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	if f.Invert {
		return !ok, nil
	}
	return ok, nil
}
