// Package recipekit 是一个按用户偏好加权的菜谱推荐工具包。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，便于解释为何推荐某道菜
// - 画像即状态: 餐型权重、菜谱评分与计数器都在 core.UserProfile 中，由 store 持久化
//
// 一次会话的入口见 service.Recommender，命令行见 cmd/recipekit。
package recipekit

import (
	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pipeline"
)

// 轻量 facade：便于用户直接 import "recipekit" 使用核心抽象。
type (
	Pipeline    = pipeline.Pipeline
	Node        = pipeline.Node
	Kind        = pipeline.Kind
	Recipe      = core.Recipe
	MealType    = core.MealType
	UserProfile = core.UserProfile
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
