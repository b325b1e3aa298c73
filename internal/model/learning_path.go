package model

const (
	PathStatusActive    = "active"    // 正在练习
	PathStatusPreparing = "preparing" // 后台备稿
)

const (
	MinPathDifficulty = 1
	MaxPathDifficulty = 5
)

// LearningPath 学习路径（tube）。每个学习者固定三条，难度彼此独立，
// 轮换时只切换状态，路径本身随学习者存续、永不销毁。
// swagger:model LearningPath
type LearningPath struct {
	UUIDBase
	LearnerID     uint    `gorm:"index:idx_learner_paths;not null" json:"learnerId"`
	Name          string  `gorm:"size:100;not null" json:"name"`
	Difficulty    int     `gorm:"default:1" json:"difficulty"` // 1-5
	Status        string  `gorm:"type:varchar(16);default:'preparing'" json:"status"`
	CurrentUnitID *string `gorm:"type:varchar(36)" json:"currentUnitId"`
	NextUnitID    *string `gorm:"type:varchar(36)" json:"nextUnitId"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

// ValidDifficulty 检查路径难度是否在 1..5 范围内
func ValidDifficulty(d int) bool {
	return d >= MinPathDifficulty && d <= MaxPathDifficulty
}
