package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/recipekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境，定义四个顶层变量
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("recipe", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译好的菜谱规则表达式，使用 CEL (Common Expression Language)。
// 编译一次，可在多个 goroutine 中反复 Eval。
//
// 可用变量：
//   - recipe.id / recipe.name / recipe.meal_type / recipe.prep_time / recipe.total_time
//   - recipe.rating（无评分时为 0.0）/ recipe.has_rating / recipe.review_count
//   - item.id / item.score
//   - label.<key>（Label.Value）
//   - rctx.user_id / rctx.meal_type / rctx.weight / rctx.liked_count / rctx.params
//
// 示例：
//   - `recipe.review_count < 3`
//   - `recipe.has_rating && recipe.rating < 2.5`
//   - `recipe.name.contains("Spinach")`
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式；空表达式与语法错误都会返回错误。
func Compile(expr string) (*Expr, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{src: expr, prg: prg}, nil
}

func (e *Expr) String() string { return e.src }

// Eval 对单个 item 求值，表达式必须返回 bool。
func (e *Expr) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 会报错，label 应使用 `"k" in label` 检查存在性
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	itemMap := map[string]any{}
	recipeMap := map[string]any{}

	if item != nil {
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		itemMap["id"] = item.ID
		itemMap["score"] = item.Score

		if r := item.Recipe; r != nil {
			rating := 0.0
			if r.AggregatedRating != nil {
				rating = *r.AggregatedRating
			}
			recipeMap["id"] = r.ID
			recipeMap["name"] = r.Name
			recipeMap["meal_type"] = string(r.MealType)
			recipeMap["rating"] = rating
			recipeMap["has_rating"] = r.AggregatedRating != nil
			recipeMap["review_count"] = int64(r.Reviews())
			recipeMap["prep_time"] = r.PrepTime
			recipeMap["total_time"] = r.TotalTime
		}
	}

	rctxMap := map[string]any{}
	if rctx != nil {
		params := rctx.Params
		if params == nil {
			params = map[string]any{}
		}
		rctxMap["user_id"] = rctx.UserID
		rctxMap["meal_type"] = string(rctx.MealType)
		rctxMap["params"] = params
		if rctx.User != nil {
			rctxMap["weight"] = rctx.User.MealTypeWeight(rctx.MealType)
			rctxMap["liked_count"] = int64(len(rctx.User.Preferences.LikedRecipes))
		} else {
			rctxMap["weight"] = 0.0
			rctxMap["liked_count"] = int64(0)
		}
	}

	return map[string]any{
		"item":   itemMap,
		"recipe": recipeMap,
		"label":  labels,
		"rctx":   rctxMap,
	}
}
