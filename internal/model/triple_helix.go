package model

import "time"

// TripleHelixState 三螺旋轮换状态：一条路径在台前演出，两条在后台备稿。
// 三个槽位显式建模，"恰好一条 active" 由结构本身保证。
// Version 用于乐观并发控制：写操作必须携带读到的版本号。
// swagger:model TripleHelixState
type TripleHelixState struct {
	LearnerID           uint       `gorm:"primaryKey;autoIncrement:false" json:"learnerId"`
	ActivePathID        string     `gorm:"type:varchar(36);not null" json:"activePathId"`
	PreparingFrontID    string     `gorm:"type:varchar(36);not null" json:"preparingFrontId"`
	PreparingBackID     string     `gorm:"type:varchar(36);not null" json:"preparingBackId"`
	RotationCount       int        `gorm:"default:0" json:"rotationCount"`
	RoundsSinceRotation int        `gorm:"default:0" json:"roundsSinceRotation"`
	LastRotationAt      *time.Time `json:"lastRotationAt"`
	Version             int64      `gorm:"default:1" json:"version"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (TripleHelixState) TableName() string {
	return "triple_helix_states"
}

// PathIDs 按 active、preparing-front、preparing-back 顺序返回三个槽位
func (s *TripleHelixState) PathIDs() [3]string {
	return [3]string{s.ActivePathID, s.PreparingFrontID, s.PreparingBackID}
}

// Owns 判断路径是否属于该学习者的三螺旋
func (s *TripleHelixState) Owns(pathID string) bool {
	return pathID == s.ActivePathID || pathID == s.PreparingFrontID || pathID == s.PreparingBackID
}
