package util

// 分析事件流相关常量
const (
	AnalyticsStreamRounds = "scheduler:rounds"
)
