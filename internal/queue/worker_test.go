package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

type rescheduleCall struct {
	id        int64
	nextRunAt time.Time
	lastError string
}

type fakeWorkerStore struct {
	pending     []*domain.NotificationJob
	completed   []int64
	rescheduled []rescheduleCall
	dead        map[int64]string
	pruned      map[domain.JobStatus]int
}

func newFakeWorkerStore(jobs ...*domain.NotificationJob) *fakeWorkerStore {
	return &fakeWorkerStore{
		pending: jobs,
		dead:    make(map[int64]string),
		pruned:  make(map[domain.JobStatus]int),
	}
}

func (s *fakeWorkerStore) ClaimNextNotificationJob() (*domain.NotificationJob, error) {
	if len(s.pending) == 0 {
		return nil, sql.ErrNoRows
	}
	job := s.pending[0]
	s.pending = s.pending[1:]
	job.Status = domain.JobStatusProcessing
	return job, nil
}

func (s *fakeWorkerStore) CompleteNotificationJob(id int64) error {
	s.completed = append(s.completed, id)
	return nil
}

func (s *fakeWorkerStore) RescheduleNotificationJob(id int64, nextRunAt time.Time, lastError string) error {
	s.rescheduled = append(s.rescheduled, rescheduleCall{id: id, nextRunAt: nextRunAt, lastError: lastError})
	return nil
}

func (s *fakeWorkerStore) MarkNotificationJobDead(id int64, lastError string) error {
	s.dead[id] = lastError
	return nil
}

func (s *fakeWorkerStore) PruneNotificationJobs(status domain.JobStatus, keep int) (int64, error) {
	s.pruned[status] = keep
	return 0, nil
}

type fakeTransport struct {
	sent []string
	err  error
}

func (t *fakeTransport) Send(to string, subject string, body string) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, to)
	return nil
}

func workerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Queue.MaxAttempts = 3
	cfg.Queue.BaseDelay = 2000
	cfg.Queue.PollInterval = 10
	cfg.Queue.Concurrency = 1
	cfg.Queue.RemoveOnComplete = 100
	cfg.Queue.RemoveOnFail = 50
	cfg.Queue.PruneInterval = 60
	return cfg
}

func mailJob(t *testing.T, id int64, attempts int32) *domain.NotificationJob {
	t.Helper()
	payload, err := json.Marshal(domain.MailPayload{
		To:      "zhangsan@example.com",
		Subject: "欢迎",
		Body:    "<p>欢迎</p>",
	})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	return &domain.NotificationJob{
		ID:          id,
		Kind:        domain.JobKindOnboarding,
		Payload:     payload,
		Status:      domain.JobStatusProcessing,
		Attempts:    attempts,
		MaxAttempts: 3,
		NextRunAt:   time.Now(),
	}
}

func TestProcess_Success(t *testing.T) {
	store := newFakeWorkerStore()
	transport := &fakeTransport{}
	w := NewWorker(workerConfig(), store, transport)

	w.process(mailJob(t, 1, 0))

	if len(transport.sent) != 1 || transport.sent[0] != "zhangsan@example.com" {
		t.Fatalf("expected one delivery, got %v", transport.sent)
	}
	if len(store.completed) != 1 || store.completed[0] != 1 {
		t.Fatalf("expected job 1 completed, got %v", store.completed)
	}
}

func TestProcess_TransientErrorBacksOffExponentially(t *testing.T) {
	cases := []struct {
		attempts int32
		delay    time.Duration
	}{
		{attempts: 0, delay: 2 * time.Second},
		{attempts: 1, delay: 4 * time.Second},
	}

	for _, c := range cases {
		store := newFakeWorkerStore()
		transport := &fakeTransport{err: &domain.TransientDeliveryError{Err: errors.New("连接超时")}}
		w := NewWorker(workerConfig(), store, transport)

		before := time.Now()
		w.process(mailJob(t, 1, c.attempts))

		if len(store.rescheduled) != 1 {
			t.Fatalf("attempts=%d: expected 1 reschedule, got %d", c.attempts, len(store.rescheduled))
		}
		call := store.rescheduled[0]
		got := call.nextRunAt.Sub(before)
		if got < c.delay || got > c.delay+time.Second {
			t.Fatalf("attempts=%d: expected delay about %v, got %v", c.attempts, c.delay, got)
		}
		if call.lastError == "" {
			t.Fatalf("attempts=%d: expected lastError to be recorded", c.attempts)
		}
		if len(store.dead) != 0 {
			t.Fatalf("attempts=%d: expected no dead jobs", c.attempts)
		}
	}
}

func TestProcess_ExhaustedAttemptsGoDead(t *testing.T) {
	store := newFakeWorkerStore()
	transport := &fakeTransport{err: &domain.TransientDeliveryError{Err: errors.New("连接超时")}}
	w := NewWorker(workerConfig(), store, transport)

	// 第三次尝试失败后重试次数耗尽
	w.process(mailJob(t, 1, 2))

	if len(store.rescheduled) != 0 {
		t.Fatalf("expected no reschedule, got %d", len(store.rescheduled))
	}
	if _, ok := store.dead[1]; !ok {
		t.Fatalf("expected job 1 to be dead")
	}
}

func TestProcess_PermanentErrorGoesDeadImmediately(t *testing.T) {
	store := newFakeWorkerStore()
	transport := &fakeTransport{err: &domain.PermanentDeliveryError{Err: errors.New("收件人地址非法")}}
	w := NewWorker(workerConfig(), store, transport)

	w.process(mailJob(t, 1, 0))

	if len(store.rescheduled) != 0 {
		t.Fatalf("expected no reschedule, got %d", len(store.rescheduled))
	}
	if _, ok := store.dead[1]; !ok {
		t.Fatalf("expected job 1 to be dead")
	}
}

func TestProcess_UnknownKindGoesDead(t *testing.T) {
	store := newFakeWorkerStore()
	transport := &fakeTransport{}
	w := NewWorker(workerConfig(), store, transport)

	job := mailJob(t, 1, 0)
	job.Kind = "unknown"
	w.process(job)

	if len(transport.sent) != 0 {
		t.Fatalf("expected no delivery, got %v", transport.sent)
	}
	if _, ok := store.dead[1]; !ok {
		t.Fatalf("expected job 1 to be dead")
	}
}

func TestProcess_MalformedPayloadGoesDead(t *testing.T) {
	store := newFakeWorkerStore()
	w := NewWorker(workerConfig(), store, &fakeTransport{})

	job := mailJob(t, 1, 0)
	job.Payload = []byte("not-json")
	w.process(job)

	if _, ok := store.dead[1]; !ok {
		t.Fatalf("expected job 1 to be dead")
	}
}

func TestDrain_ProcessesAllPendingJobs(t *testing.T) {
	store := newFakeWorkerStore(mailJob(t, 1, 0), mailJob(t, 2, 0), mailJob(t, 3, 0))
	transport := &fakeTransport{}
	w := NewWorker(workerConfig(), store, transport)

	w.drain(context.Background())

	if len(store.completed) != 3 {
		t.Fatalf("expected 3 completed jobs, got %d", len(store.completed))
	}
	if len(store.pending) != 0 {
		t.Fatalf("expected no pending jobs, got %d", len(store.pending))
	}
}

func TestNudge_NeverBlocks(t *testing.T) {
	w := NewWorker(workerConfig(), newFakeWorkerStore(), &fakeTransport{})

	// 没有消费者时多次提醒也不应该阻塞
	for i := 0; i < 10; i++ {
		w.Nudge()
	}
}
