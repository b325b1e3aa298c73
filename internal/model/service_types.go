package model

import "time"

// RoundPerformance 一轮练习完成后的成绩摘要。轮次大小不固定，
// 参考课程为 20 题，但 TotalCount 只要求为正。
type RoundPerformance struct {
	CorrectCount          int     `json:"correctCount"`
	TotalCount            int     `json:"totalCount"`
	AverageResponseTimeMs float64 `json:"averageResponseTimeMs"`
}

// Perfect 判断是否为完美轮次
func (p RoundPerformance) Perfect() bool {
	return p.CorrectCount == p.TotalCount
}

// Valid 全量前置校验：任何字段不合法时不允许产生任何状态变更
func (p RoundPerformance) Valid() bool {
	return p.TotalCount > 0 &&
		p.CorrectCount >= 0 &&
		p.CorrectCount <= p.TotalCount &&
		p.AverageResponseTimeMs >= 0
}

// FactPerformance 单个事实在一轮中的表现
type FactPerformance struct {
	CorrectFirstAttempt bool    `json:"correctFirstAttempt"`
	ResponseTimeMs      float64 `json:"responseTimeMs"`
	ConsecutiveCorrect  int     `json:"consecutiveCorrect"`
}

// Valid 校验事实表现数据
func (p FactPerformance) Valid() bool {
	return p.ResponseTimeMs >= 0 && p.ConsecutiveCorrect >= 0
}

// RepositionResult 间隔重排结果
type RepositionResult struct {
	UnitID           string `json:"unitId"`
	PathID           string `json:"pathId"`
	PreviousPosition int    `json:"previousPosition"`
	NewPosition      int    `json:"newPosition"`
	SkipNumber       int    `json:"skipNumber"`
}

// MasteryUpdateResult 单个事实的掌握状态变化
type MasteryUpdateResult struct {
	FactID        string  `json:"factId"`
	PreviousLevel int     `json:"previousLevel"`
	NewLevel      int     `json:"newLevel"`
	LevelChanged  bool    `json:"levelChanged"`
	MasteryScore  float64 `json:"masteryScore"`
}

// RotationResult 一次轮换的结果
type RotationResult struct {
	PreviousActivePathID string    `json:"previousActivePathId"`
	ActivePathID         string    `json:"activePathId"`
	RotationCount        int       `json:"rotationCount"`
	RotatedAt            time.Time `json:"rotatedAt"`
}

// RoundResult completeRound 的聚合结果：重排、各事实掌握更新、可选轮换
type RoundResult struct {
	LearnerID      uint                  `json:"learnerId"`
	Reposition     *RepositionResult     `json:"reposition"`
	MasteryUpdates []MasteryUpdateResult `json:"masteryUpdates"`
	Rotation       *RotationResult       `json:"rotation,omitempty"`
	Version        int64                 `json:"version"` // 提交后的新版本号
	CompletedAt    time.Time             `json:"completedAt"`
}

// SchedulerState 学习者调度状态速览：三螺旋、三条路径、单元进度与
// 事实掌握，课堂端同步与排障共用
type SchedulerState struct {
	LearnerID uint             `json:"learnerId"`
	Learner   *Learner         `json:"learner,omitempty"`
	Helix     TripleHelixState `json:"helix"`
	Paths     []LearningPath   `json:"paths"`
	Progress  []UnitProgress   `json:"progress"`
	Mastery   []FactMastery    `json:"mastery"`
}

// NextUnitResult getNextUnit 的返回：单元本体加本轮应采用的边界等级
type NextUnitResult struct {
	Unit          *ContentUnit `json:"unit"`
	PathID        string       `json:"pathId"`
	BoundaryLevel int          `json:"boundaryLevel"`
}
