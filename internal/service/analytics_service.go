package service

import (
	"context"
	"encoding/json"
	"time"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/util"
	"math_edu_backend/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisAnalyticsSink 把轮次事件追加到 Redis Stream，供分析端消费。
// 发送是尽力而为：Redis 不可用时只记日志，绝不反压到调度主流程。
type RedisAnalyticsSink struct {
	Client *redis.Client
	Stream string
}

func NewRedisAnalyticsSink(client *redis.Client, stream string) *RedisAnalyticsSink {
	if stream == "" {
		stream = util.AnalyticsStreamRounds
	}
	return &RedisAnalyticsSink{Client: client, Stream: stream}
}

func (s *RedisAnalyticsSink) PublishRound(learnerID uint, result *model.RoundResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		logger.Log.Warn("轮次事件序列化失败", zap.Error(err))
		return
	}
	s.publish(map[string]interface{}{
		"event":     "round_completed",
		"learnerId": learnerID,
		"payload":   string(payload),
	})
}

func (s *RedisAnalyticsSink) PublishRejection(learnerID uint, code string) {
	s.publish(map[string]interface{}{
		"event":     "round_rejected",
		"learnerId": learnerID,
		"code":      code,
	})
}

func (s *RedisAnalyticsSink) publish(values map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.Stream,
		Values: values,
	}).Err()
	if err != nil {
		logger.Log.Warn("分析事件发送失败", zap.String("stream", s.Stream), zap.Error(err))
	}
}

// NoopAnalyticsSink 未启用分析时的占位实现
type NoopAnalyticsSink struct{}

func (NoopAnalyticsSink) PublishRound(uint, *model.RoundResult) {}

func (NoopAnalyticsSink) PublishRejection(uint, string) {}
