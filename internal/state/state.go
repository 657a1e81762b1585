package state

import (
	"trendyol/parser/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrJobNotFound = errors.New("job not found")

// StateManager stores the status of parse jobs
type StateManager interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	SaveJob(ctx context.Context, job *domain.Job) error
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisStateManager(redisClient *redis.Client, ttl time.Duration) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   "trendyol:job:",
		ttl:         ttl,
	}
}

func (s *redisStateManager) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+jobID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}

	var job domain.Job
	if err := json.Unmarshal(val, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}

	return &job, nil
}

func (s *redisStateManager) SaveJob(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	if err := s.redisClient.Set(ctx, s.keyPrefix+job.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}
