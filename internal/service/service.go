package service

import (
	"trendyol/parser/internal/domain"
	"trendyol/parser/internal/domain/task"
	"trendyol/parser/internal/queue"
	"trendyol/parser/internal/repository"
	"trendyol/parser/internal/state"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ProductParser is the part of Parser the job workers need
type ProductParser interface {
	Parse(ctx context.Context, url string) (*domain.ParserResponse, error)
	ParseSingle(ctx context.Context, url string) (*domain.ParserResponse, error)
}

// Service runs parse jobs asynchronously over the Redis task stream
type Service struct {
	parser       ProductParser
	queue        queue.Queue
	stateManager state.StateManager
	repository   repository.ResultRepository
	siteBaseURL  string
	groupName    string
	minIdleTime  time.Duration
	now          func() time.Time
}

func NewService(
	parser ProductParser,
	queue queue.Queue,
	stateManager state.StateManager,
	repository repository.ResultRepository,
	siteBaseURL string,
	groupName string,
	minIdleTime int,
) *Service {
	if minIdleTime <= 0 {
		minIdleTime = 120
	}

	return &Service{
		parser:       parser,
		queue:        queue,
		stateManager: stateManager,
		repository:   repository,
		siteBaseURL:  siteBaseURL,
		groupName:    groupName,
		minIdleTime:  time.Duration(minIdleTime) * time.Second,
		now:          time.Now,
	}
}

// Enqueue registers a pending job and publishes it for the workers
func (s *Service) Enqueue(ctx context.Context, url string, single bool) (*domain.Job, error) {
	if err := CheckProductURL(url, s.siteBaseURL); err != nil {
		return nil, err
	}

	now := s.now()
	job := &domain.Job{
		ID:        uuid.NewString(),
		URL:       url,
		Single:    single,
		Status:    domain.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.stateManager.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	if _, err := s.queue.AddTask(ctx, &task.ParseTask{JobID: job.ID, URL: url, Single: single}); err != nil {
		// No worker will ever see this job
		if stateErr := s.setStatus(ctx, job, domain.JobStatusFailed, err.Error()); stateErr != nil {
			log.Errorf("❌ Failed to mark job %s as failed: %v", job.ID, stateErr)
		}
		return nil, fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	log.Infof("📥 Enqueued job %s for %s", job.ID, url)
	return job, nil
}

// Job returns the job status and, once it is done, its stored result
func (s *Service) Job(ctx context.Context, jobID string) (*domain.Job, *domain.ParserResponse, error) {
	job, err := s.stateManager.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	if job.Status != domain.JobStatusDone {
		return job, nil, nil
	}

	result, err := s.repository.GetResult(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	return job, result, nil
}

func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	streamName := queue.StreamName(task.ParseTaskType)

	// Auto-claimer picks up messages left pending by crashed consumers
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.minIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				consumer := fmt.Sprintf("autoclaimer-%d", time.Now().UnixNano())
				claimedMessages, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
					continue
				}
				if len(claimedMessages) > 0 {
					log.Infof("🔄 Auto-claimed %d messages from %s", len(claimedMessages), streamName)
					for _, msg := range claimedMessages {
						if err := s.processMessage(ctx, &msg); err != nil {
							log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("parse-worker-%d", workerID)
			log.Infof("🚀 Starting worker %d as consumer %s", workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 Worker %d stopping", workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}

	wg.Wait()
	return nil
}

// processMessage runs one parse task. Parse failures are recorded on the job
// and the message is acked; only bookkeeping failures leave it pending.
func (s *Service) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	if taskType != task.ParseTaskType {
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	parseTask, err := task.UnmarshalTask[*task.ParseTask]([]byte(taskData))
	if err != nil {
		return fmt.Errorf("failed to unmarshal parse task data: %w", err)
	}

	if err := s.runJob(ctx, parseTask); err != nil {
		return err
	}

	if err := s.queue.AckTask(ctx, queue.StreamName(taskType), s.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

func (s *Service) runJob(ctx context.Context, parseTask *task.ParseTask) error {
	job, err := s.stateManager.GetJob(ctx, parseTask.JobID)
	if err != nil {
		if !errors.Is(err, state.ErrJobNotFound) {
			return err
		}
		// Status expired or was never written; track the job from here on
		job = &domain.Job{
			ID:        parseTask.JobID,
			URL:       parseTask.URL,
			Single:    parseTask.Single,
			CreatedAt: s.now(),
		}
	}

	if err := s.setStatus(ctx, job, domain.JobStatusRunning, ""); err != nil {
		return err
	}

	var resp *domain.ParserResponse
	if parseTask.Single {
		resp, err = s.parser.ParseSingle(ctx, parseTask.URL)
	} else {
		resp, err = s.parser.Parse(ctx, parseTask.URL)
	}
	if err != nil {
		log.Warnf("⚠️ Job %s failed: %v", job.ID, err)
		return s.setStatus(ctx, job, domain.JobStatusFailed, err.Error())
	}

	if err := s.repository.SaveResult(ctx, job.ID, parseTask.URL, resp); err != nil {
		log.Errorf("❌ Failed to save result for job %s: %v", job.ID, err)
		return s.setStatus(ctx, job, domain.JobStatusFailed, err.Error())
	}

	log.Infof("✅ Job %s done: %d products", job.ID, len(resp.Products))
	return s.setStatus(ctx, job, domain.JobStatusDone, "")
}

func (s *Service) setStatus(ctx context.Context, job *domain.Job, status domain.JobStatus, errText string) error {
	job.Status = status
	job.Error = errText
	job.UpdatedAt = s.now()
	return s.stateManager.SaveJob(ctx, job)
}
