// Package metrics 定义推荐链路的 Prometheus 指标。
// 指标注册在默认 Registry 上，由宿主进程决定是否暴露 /metrics。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SuggestRequests 按餐型统计 suggest 调用次数（= total_interactions 的增量）
	SuggestRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipekit_suggest_requests_total",
			Help: "Total number of suggestion requests",
		},
		[]string{"meal_type"},
	)

	// SuggestionsServed 按餐型统计返回的菜谱数（= total_suggestions_received 的增量）
	SuggestionsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipekit_suggestions_served_total",
			Help: "Total number of recipes returned by suggestion requests",
		},
		[]string{"meal_type"},
	)

	// EmptySuggestions 统计过滤后无候选的请求
	EmptySuggestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipekit_suggest_empty_total",
			Help: "Total number of suggestion requests that returned no recipes",
		},
		[]string{"meal_type"},
	)

	// FeedbackTotal 按结果统计反馈：liked / disliked / not_found
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipekit_feedback_total",
			Help: "Total number of feedback events by outcome",
		},
		[]string{"outcome"},
	)

	// DecayApplied 统计实际发生的权重衰减次数
	DecayApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipekit_preference_decay_total",
			Help: "Total number of preference decays applied",
		},
	)

	// StoreOps 按后端与操作统计画像读写
	StoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipekit_profile_store_ops_total",
			Help: "Total number of profile store operations",
		},
		[]string{"backend", "op"},
	)

	// StoreErrors 按后端、操作与错误类型统计画像读写失败
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipekit_profile_store_errors_total",
			Help: "Total number of profile store errors",
		},
		[]string{"backend", "op", "error_type"},
	)

	// CatalogRecipes 按餐型记录目录中的菜谱数
	CatalogRecipes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipekit_catalog_recipes",
			Help: "Number of recipes loaded per meal type",
		},
		[]string{"meal_type"},
	)
)

// 反馈结果标签
const (
	OutcomeLiked    = "liked"
	OutcomeDisliked = "disliked"
	OutcomeNotFound = "not_found"
)

// RecordSuggest 记录一次 suggest 调用。
func RecordSuggest(mealType string, returned int) {
	SuggestRequests.WithLabelValues(mealType).Inc()
	SuggestionsServed.WithLabelValues(mealType).Add(float64(returned))
	if returned == 0 {
		EmptySuggestions.WithLabelValues(mealType).Inc()
	}
}

// RecordStoreOp 记录一次画像存储操作；errType 为空表示成功。
func RecordStoreOp(backend, op, errType string) {
	StoreOps.WithLabelValues(backend, op).Inc()
	if errType != "" {
		StoreErrors.WithLabelValues(backend, op, errType).Inc()
	}
}
