package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

type fakeJobStore struct {
	jobs      []*domain.NotificationJob
	createErr error
}

func (s *fakeJobStore) CreateNotificationJob(job *domain.NotificationJob) error {
	if s.createErr != nil {
		return s.createErr
	}
	job.ID = int64(len(s.jobs) + 1)
	s.jobs = append(s.jobs, job)
	return nil
}

type fakeNudgePublisher struct {
	published []amqp.Publishing
	err       error
}

func (p *fakeNudgePublisher) PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func producerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Queue.MaxAttempts = 3
	cfg.RabbitMQ.PublishTimeout = 1
	return cfg
}

func TestEnqueue_Defaults(t *testing.T) {
	store := &fakeJobStore{}
	p := NewProducer(producerConfig(), store, nil)

	job, err := p.Enqueue(domain.JobKindOnboarding, domain.MailPayload{
		To:      "zhangsan@example.com",
		Subject: "欢迎",
		Body:    "<p>欢迎</p>",
	})
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	if job.Status != domain.JobStatusQueued {
		t.Fatalf("expected status queued, got %s", job.Status)
	}
	if job.Attempts != 0 {
		t.Fatalf("expected attempts 0, got %d", job.Attempts)
	}
	if job.MaxAttempts != 3 {
		t.Fatalf("expected maxAttempts 3, got %d", job.MaxAttempts)
	}

	payload := domain.MailPayload{}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload unmarshal error: %v", err)
	}
	if payload.To != "zhangsan@example.com" {
		t.Fatalf("expected recipient zhangsan@example.com, got %s", payload.To)
	}
}

func TestEnqueue_InvalidKind(t *testing.T) {
	p := NewProducer(producerConfig(), &fakeJobStore{}, nil)

	if _, err := p.Enqueue("unknown", domain.MailPayload{To: "a@example.com"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestEnqueue_EmptyRecipient(t *testing.T) {
	p := NewProducer(producerConfig(), &fakeJobStore{}, nil)

	if _, err := p.Enqueue(domain.JobKindOnboarding, domain.MailPayload{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestEnqueue_PublishesNudge(t *testing.T) {
	nudge := &fakeNudgePublisher{}
	p := NewProducer(producerConfig(), &fakeJobStore{}, nudge)

	job, err := p.Enqueue(domain.JobKindEnrollment, domain.MailPayload{
		To:      "lisi@example.com",
		Subject: "培训通知",
		Body:    "<p>培训通知</p>",
	})
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	if len(nudge.published) != 1 {
		t.Fatalf("expected 1 nudge, got %d", len(nudge.published))
	}
	if string(nudge.published[0].Body) != "1" {
		t.Fatalf("expected nudge body %d, got %s", job.ID, nudge.published[0].Body)
	}
}

func TestEnqueue_NudgeFailureIsNotFatal(t *testing.T) {
	store := &fakeJobStore{}
	nudge := &fakeNudgePublisher{err: errors.New("连接已关闭")}
	p := NewProducer(producerConfig(), store, nudge)

	if _, err := p.Enqueue(domain.JobKindOnboarding, domain.MailPayload{
		To:      "zhangsan@example.com",
		Subject: "欢迎",
		Body:    "<p>欢迎</p>",
	}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(store.jobs) != 1 {
		t.Fatalf("expected job to be persisted, got %d", len(store.jobs))
	}
}

func TestNotifyOnboarding_RendersTemplate(t *testing.T) {
	store := &fakeJobStore{}
	p := NewProducer(producerConfig(), store, nil)

	user := &domain.User{
		FullName:   "张三",
		EmployeeID: "E000001",
		Email:      "zhangsan@example.com",
	}
	if err := p.NotifyOnboarding(user, "initial-password"); err != nil {
		t.Fatalf("NotifyOnboarding error: %v", err)
	}

	if len(store.jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(store.jobs))
	}
	job := store.jobs[0]
	if job.Kind != domain.JobKindOnboarding {
		t.Fatalf("expected kind onboarding, got %s", job.Kind)
	}

	payload := domain.MailPayload{}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload unmarshal error: %v", err)
	}
	if payload.To != user.Email {
		t.Fatalf("expected recipient %s, got %s", user.Email, payload.To)
	}
	if payload.Subject != SubjectOnboarding {
		t.Fatalf("expected subject %s, got %s", SubjectOnboarding, payload.Subject)
	}
	for _, want := range []string{"张三", "E000001", "initial-password"} {
		if !strings.Contains(payload.Body, want) {
			t.Fatalf("expected body to contain %s", want)
		}
	}
}
