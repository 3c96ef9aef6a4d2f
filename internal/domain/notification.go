package domain

import (
	"time"
)

type JobKind string

const (
	JobKindOnboarding    JobKind = "onboarding"
	JobKindEnrollment    JobKind = "enrollment"
	JobKindPasswordReset JobKind = "password_reset"
)

func (k JobKind) IsValid() bool {
	switch k {
	case JobKindOnboarding, JobKindEnrollment, JobKindPasswordReset:
		return true
	default:
		return false
	}
}

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusDead       JobStatus = "dead"
)

// NotificationJob 是通知队列中的一条任务记录，
// 任务的状态只能由队列仓库的原子操作来变更
type NotificationJob struct {
	ID          int64     `json:"id"`
	Kind        JobKind   `json:"kind"`
	Payload     []byte    `json:"payload"` // MailPayload 的 JSON 序列化结果
	Status      JobStatus `json:"status"`
	Attempts    int32     `json:"attempts"`
	MaxAttempts int32     `json:"maxAttempts"`
	NextRunAt   time.Time `json:"nextRunAt"`
	LastError   string    `json:"lastError,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MailPayload 是生产者和消费者之间的邮件任务载荷
type MailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
