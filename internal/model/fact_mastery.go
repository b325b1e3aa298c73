package model

import "time"

const (
	MinBoundaryLevel = 1
	MaxBoundaryLevel = 5
)

// FactMastery 学习者对单个事实的边界等级状态，首次评估时惰性创建
// swagger:model FactMastery
type FactMastery struct {
	LearnerID            uint      `gorm:"primaryKey;autoIncrement:false" json:"learnerId"`
	FactID               string    `gorm:"primaryKey;type:varchar(64)" json:"factId"`
	BoundaryLevel        int       `gorm:"default:1" json:"boundaryLevel"` // 1-5
	MasteryScore         float64   `gorm:"default:0" json:"masteryScore"`
	ConsecutiveCorrect   int       `gorm:"default:0" json:"consecutiveCorrect"`
	ConsecutiveIncorrect int       `gorm:"default:0" json:"consecutiveIncorrect"`
	LastSeenAt           time.Time `json:"lastSeenAt"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (FactMastery) TableName() string {
	return "fact_masteries"
}

// ValidBoundaryLevel 检查边界等级是否在 1..5 范围内
func ValidBoundaryLevel(level int) bool {
	return level >= MinBoundaryLevel && level <= MaxBoundaryLevel
}
