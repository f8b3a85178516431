package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

// historyTTL bounds how long a user's recent questions survive between
// sessions. The list itself is capped at historyCap entries.
const (
	historyTTL = 7 * 24 * time.Hour
	historyCap = 20
)

// NewRedisClient creates a Redis client and verifies connectivity
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RedisQuestionHistory keeps each user's recent questions in a capped Redis
// list, newest first.
type RedisQuestionHistory struct {
	client *redis.Client
}

// NewRedisQuestionHistory creates a Redis-backed question history
func NewRedisQuestionHistory(client *redis.Client) *RedisQuestionHistory {
	return &RedisQuestionHistory{client: client}
}

func historyKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:questions", userID.String())
}

// Recent returns up to limit of the user's most recent questions, newest first
func (h *RedisQuestionHistory) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	questions, err := h.client.LRange(ctx, historyKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read question history: %w", err)
	}
	return questions, nil
}

// Record prepends a question to the user's history and trims it to the cap
func (h *RedisQuestionHistory) Record(ctx context.Context, userID uuid.UUID, question string) error {
	key := historyKey(userID)
	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, key, question)
	pipe.LTrim(ctx, key, 0, historyCap-1)
	pipe.Expire(ctx, key, historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record question: %w", err)
	}
	return nil
}
