package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
	"github.com/notesmith/smart-notes/internal/queue"
	"github.com/notesmith/smart-notes/internal/services/ai"
	"go.uber.org/zap"
)

// NoteStore is the note persistence the summarizer needs. Lookups are by ID
// only since jobs carry no user context.
type NoteStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
}

// Summarizer processes summary-refresh jobs
type Summarizer struct {
	text     ai.TextService
	notes    NoteStore
	jobQueue queue.JobQueue // For re-enqueueing jobs with delays
	logger   *zap.Logger
}

// NewSummarizer creates a new summarizer
func NewSummarizer(text ai.TextService, notes NoteStore, jobQueue queue.JobQueue, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		text:     text,
		notes:    notes,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessSummaryRefreshJob regenerates the summary for the note named in the
// job. A note that was deleted or emptied since the job was enqueued is
// skipped without error.
func (s *Summarizer) ProcessSummaryRefreshJob(ctx context.Context, job *queue.Job) error {
	note, err := s.notes.GetByID(ctx, job.NoteID)
	if err != nil {
		if apperr.IsNotFound(err) {
			s.logger.Info("summary_refresh_note_gone",
				zap.String("note_id", job.NoteID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to get note: %w", err)
	}

	if strings.TrimSpace(note.Content) == "" {
		s.logger.Info("summary_refresh_note_empty",
			zap.String("note_id", note.ID.String()),
		)
		return nil
	}

	summary, err := s.text.Summarize(ctx, note.Content)
	if err != nil {
		return fmt.Errorf("failed to summarize note: %w", err)
	}

	note.Summary = &summary
	if err := s.notes.Update(ctx, note); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	s.logger.Info("summary_refreshed",
		zap.String("note_id", note.ID.String()),
		zap.Int("summary_length", len(summary)),
	)
	return nil
}

// ProcessJob processes a job based on its type
func (s *Summarizer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if !job.ShouldProcess() {
		if job.IsExpired() {
			s.logger.Info("job_expired",
				zap.String("job_id", job.ID.String()),
			)
			if ackErr := msg.Ack(); ackErr != nil {
				return fmt.Errorf("failed to ack expired job: %w", ackErr)
			}
			return nil
		}
		// Not ready yet, requeue for later
		if nackErr := msg.Nack(true); nackErr != nil {
			return fmt.Errorf("failed to requeue early job: %w", nackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeSummaryRefresh:
		if err := s.ProcessSummaryRefreshJob(ctx, job); err != nil {
			return s.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		// Unknown job type, send to DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			s.logger.Error("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError applies retry policy based on the error class. Quota and
// rate-limit failures are re-enqueued with a delay, other failures retry
// immediately until the retry budget runs out, then go to the DLQ.
func (s *Summarizer) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if ai.IsQuotaError(err) || ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && s.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := &queue.Job{
				ID:         job.ID,
				Type:       job.Type,
				NoteID:     job.NoteID,
				NotBefore:  &notBefore,
				NotAfter:   job.NotAfter,
				CreatedAt:  job.CreatedAt,
				RetryCount: job.RetryCount + 1,
				MaxRetries: job.MaxRetries,
			}

			if ackErr := msg.Ack(); ackErr != nil {
				s.logger.Error("failed_to_ack_before_reenqueue", zap.Error(ackErr))
			}

			if enqueueErr := s.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("throttled, failed to re-enqueue: %w", enqueueErr)
			}

			s.logger.Warn("job_throttled_reenqueued",
				zap.String("job_id", job.ID.String()),
				zap.Duration("retry_delay", retryDelay),
				zap.Int("retry_count", job.RetryCount+1),
			)
			return nil
		}

		// Throttled with no retries left, send to DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			s.logger.Error("failed_to_nack_throttled_job", zap.Error(nackErr))
		}
		return fmt.Errorf("throttled (job %s): %w", job.ID, err)
	}

	if job.CanRetry() {
		job.IncrementRetry()
		s.logger.Warn("job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			s.logger.Error("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	s.logger.Error("job_failed_sending_to_dlq",
		zap.String("job_id", job.ID.String()),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		s.logger.Error("failed_to_nack_job_to_dlq", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
