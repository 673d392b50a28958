// Package classify 把用户的自由文本描述映射为餐型。
package classify

import (
	"strings"
	"unicode"

	"github.com/rushteam/recipekit/core"
)

// DefaultKeywords 返回默认关键词表，与菜谱数据集按餐型切分时使用的关键词一致。
func DefaultKeywords() map[core.MealType][]string {
	return map[core.MealType][]string{
		core.MealBreakfast: {"breakfast", "brunch", "morning"},
		core.MealLunch:     {"lunch", "sandwich", "salad", "soup"},
		core.MealAppetizer: {"appetizer", "starter", "hors d'oeuvre", "snack"},
		core.MealDessert:   {"dessert", "sweet", "cake", "pie", "cookie", "pastry"},
		core.MealDinner:    {"dinner", "supper", "main course", "entree", "meal", "dish"},
	}
}

// priority 是平票时的优先级，dinner 最低（同时也是兜底）
var priority = []core.MealType{
	core.MealBreakfast,
	core.MealLunch,
	core.MealAppetizer,
	core.MealDessert,
	core.MealDinner,
}

// KeywordClassifier 统计每个餐型的关键词命中数，命中最多者胜出；
// 平票按 breakfast > lunch > appetizer > dessert > dinner，无命中返回 dinner。
// 构建后只读，可并发使用。
type KeywordClassifier struct {
	keywords map[core.MealType][][]string
}

var _ core.Classifier = (*KeywordClassifier)(nil)

// NewKeywordClassifier 使用默认关键词表。
func NewKeywordClassifier() *KeywordClassifier {
	return NewKeywordClassifierWith(DefaultKeywords())
}

// NewKeywordClassifierWith 使用自定义关键词表，未知餐型与空关键词被忽略。
func NewKeywordClassifierWith(table map[core.MealType][]string) *KeywordClassifier {
	c := &KeywordClassifier{keywords: make(map[core.MealType][][]string, len(table))}
	for m, words := range table {
		if !m.Valid() {
			continue
		}
		for _, w := range words {
			if toks := tokenize(w); len(toks) > 0 {
				c.keywords[m] = append(c.keywords[m], toks)
			}
		}
	}
	return c
}

func (c *KeywordClassifier) Classify(text string) core.MealType {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return core.MealDinner
	}

	best, bestCount := core.MealDinner, 0
	for _, m := range priority {
		n := 0
		for _, kw := range c.keywords[m] {
			n += countPhrase(tokens, kw)
		}
		// 严格大于：先出现的高优先级餐型保留平票
		if n > bestCount {
			best, bestCount = m, n
		}
	}
	return best
}

// tokenize 小写后按非字母数字切分，保留词内撇号（d'oeuvre），
// 去掉引号用的首尾撇号与所有格 's（'breakfast'、dessert's）。
func tokenize(s string) []string {
	s = strings.ToLower(strings.ReplaceAll(s, "’", "'"))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		f = strings.TrimSuffix(f, "'s")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// countPhrase 统计 phrase 作为连续 token 出现的次数。
func countPhrase(tokens, phrase []string) int {
	n := 0
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		ok := true
		for j, p := range phrase {
			if !wordMatch(tokens[i+j], p) {
				ok = false
				break
			}
		}
		if ok {
			n++
		}
	}
	return n
}

// wordMatch 允许简单复数：cake / cakes, sandwich / sandwiches。
func wordMatch(tok, kw string) bool {
	return tok == kw || tok == kw+"s" || tok == kw+"es"
}
