package model

import "time"

type Role string

const (
	RoleLearner Role = "learner"
	RoleAdmin   Role = "admin"
)

// Learner 学习者档案。身份认证由外部身份服务负责，这里只保留
// 调度状态归属所需的最小记录。
// swagger:model Learner
type Learner struct {
	BaseModel
	DisplayName string    `gorm:"size:100" json:"displayName"`
	Role        Role      `gorm:"type:varchar(16);default:'learner'" json:"role"`
	OnboardedAt time.Time `json:"onboardedAt"`
}

func (Learner) TableName() string {
	return "learners"
}
