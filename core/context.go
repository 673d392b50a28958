package core

// RecommendContext 承载用户/餐型/请求参数，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID   string
	MealType MealType

	// User 是当前会话的用户画像，Node 只读
	User *UserProfile

	// IncludeLikedProbability 是已喜欢菜谱重新入选的概率
	IncludeLikedProbability float64

	// LikedIDs / DislikedIDs 是本次请求的 ID 集合，每个请求只从画像构建一次
	LikedIDs    map[string]struct{}
	DislikedIDs map[string]struct{}

	// Params 请求级参数，会透传给表达式过滤器（rctx.params）
	Params map[string]any
}

// IsLiked 判断菜谱是否已被喜欢。集合未构建时从 User 构建并缓存。
func (rctx *RecommendContext) IsLiked(recipeID string) bool {
	if rctx.LikedIDs == nil {
		if rctx.User == nil {
			return false
		}
		rctx.LikedIDs = rctx.User.LikedIDs()
	}
	_, ok := rctx.LikedIDs[recipeID]
	return ok
}

// IsDisliked 判断菜谱是否已被明确不喜欢。
func (rctx *RecommendContext) IsDisliked(recipeID string) bool {
	if rctx.DislikedIDs == nil {
		if rctx.User == nil {
			return false
		}
		rctx.DislikedIDs = rctx.User.DislikedIDs()
	}
	_, ok := rctx.DislikedIDs[recipeID]
	return ok
}
