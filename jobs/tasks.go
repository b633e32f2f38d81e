package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge drops expired login session records from postgres.
	TaskSessionPurge = "session:purge"
)

// SessionPurger is implemented by the auth service.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type sessionPurgePayload struct {
	Reason string `json:"reason"`
}

// NewSessionPurgeTask constructs an Asynq task for session cleanup.
func NewSessionPurgeTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(sessionPurgePayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data), nil
}

// SessionPurgeJob wires the purge task to the auth service.
type SessionPurgeJob struct {
	purger SessionPurger
	logger *slog.Logger
}

// NewSessionPurgeJob constructs the job handler.
func NewSessionPurgeJob(purger SessionPurger, logger *slog.Logger) *SessionPurgeJob {
	return &SessionPurgeJob{purger: purger, logger: logger}
}

// Handle processes TaskSessionPurge tasks.
func (j *SessionPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload sessionPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	purged, err := j.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("purged expired sessions",
			slog.Int64("count", purged), slog.String("reason", payload.Reason))
	}
	return nil
}
