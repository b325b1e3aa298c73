package model

import "time"

// UnitProgress 学习者对单个内容单元的累计完成记录。首次曝光时创建，
// 每完成一轮更新一次，永不删除。
// swagger:model UnitProgress
type UnitProgress struct {
	LearnerID       uint      `gorm:"primaryKey;autoIncrement:false" json:"learnerId"`
	UnitID          string    `gorm:"primaryKey;type:varchar(36)" json:"unitId"`
	CompletionCount int       `gorm:"default:0" json:"completionCount"`
	CorrectCount    int       `gorm:"default:0" json:"correctCount"`
	TotalCount      int       `gorm:"default:0" json:"totalCount"`
	MasteryScore    float64   `gorm:"default:0" json:"masteryScore"`
	LastCompletedAt time.Time `json:"lastCompletedAt"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (UnitProgress) TableName() string {
	return "unit_progresses"
}
