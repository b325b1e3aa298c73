package model

// BoundaryLevelInfo 边界等级的固定元数据，等级 1-5 课程级不可配置
// swagger:model BoundaryLevelInfo
type BoundaryLevelInfo struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// 五级边界：每升一级要求更精细的数感区分
var boundaryLevels = [...]BoundaryLevelInfo{
	{Level: 1, Name: "category", Description: "类别边界：干扰项来自完全不同的类别"},
	{Level: 2, Name: "magnitude", Description: "数量级边界：干扰项数量级明显偏离"},
	{Level: 3, Name: "operation", Description: "运算边界：干扰项是混淆运算的结果"},
	{Level: 4, Name: "related-fact", Description: "相关事实边界：干扰项来自同表相邻事实"},
	{Level: 5, Name: "near-miss", Description: "近似边界：干扰项与正确答案仅差极小量"},
}

// BoundaryLevelDescription 返回指定等级的元数据，等级越界时 ok 为 false
func BoundaryLevelDescription(level int) (BoundaryLevelInfo, bool) {
	if !ValidBoundaryLevel(level) {
		return BoundaryLevelInfo{}, false
	}
	return boundaryLevels[level-1], true
}

// AllBoundaryLevels 返回全部五级元数据
func AllBoundaryLevels() []BoundaryLevelInfo {
	out := make([]BoundaryLevelInfo, len(boundaryLevels))
	copy(out, boundaryLevels[:])
	return out
}
