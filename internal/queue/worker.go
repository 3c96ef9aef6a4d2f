package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

type WorkerStore interface {
	ClaimNextNotificationJob() (*domain.NotificationJob, error)
	CompleteNotificationJob(id int64) error
	RescheduleNotificationJob(id int64, nextRunAt time.Time, lastError string) error
	MarkNotificationJobDead(id int64, lastError string) error
	PruneNotificationJobs(status domain.JobStatus, keep int) (int64, error)
}

// Transport 是邮件投递的协作方，返回的错误类型决定任务是重试还是进入 dead 状态
type Transport interface {
	Send(to string, subject string, body string) error
}

// Worker 是通知队列的消费者：认领任务、调用邮件投递、执行重试和退避策略
type Worker struct {
	cfg       *config.Config
	store     WorkerStore
	transport Transport
	nudge     chan struct{}
}

func NewWorker(cfg *config.Config, store WorkerStore, transport Transport) *Worker {
	return &Worker{
		cfg:       cfg,
		store:     store,
		transport: transport,
		nudge:     make(chan struct{}, 1),
	}
}

// Nudge 提醒 worker 立即拉取任务而不是等待下一个轮询周期，
// 提醒可以安全地丢弃，轮询保证任务迟早会被处理
func (w *Worker) Nudge() {
	select {
	case w.nudge <- struct{}{}:
	default:
	}
}

// Run 启动有界数量的消费循环和一个清理循环，阻塞直到 ctx 被取消
func (w *Worker) Run(ctx context.Context) error {
	wg := sync.WaitGroup{}

	for i := 0; i < w.cfg.Queue.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.consumeLoop(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.pruneLoop(ctx)
	}()

	wg.Wait()
	return nil
}

func (w *Worker) consumeLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(w.cfg.Queue.PollInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-w.nudge:
			w.drain(ctx)
		}
	}
}

// drain 不断认领并处理任务，直到没有可执行的任务为止
func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.store.ClaimNextNotificationJob()
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				slog.Error("认领任务失败", "error", err)
			}
			return
		}

		w.process(job)
	}
}

// process 执行一个已经处于 processing 状态的任务并落盘状态转移
func (w *Worker) process(job *domain.NotificationJob) {
	// 未知的任务类型说明生产者和消费者的版本不一致，不重试
	if !job.Kind.IsValid() {
		w.bury(job, fmt.Sprintf("未知的任务类型: %s", job.Kind))
		return
	}

	payload := domain.MailPayload{}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		w.bury(job, fmt.Sprintf("任务载荷无法解析: %v", err))
		return
	}

	if err := w.transport.Send(payload.To, payload.Subject, payload.Body); err != nil {
		permErr := &domain.PermanentDeliveryError{}
		if errors.As(err, &permErr) {
			w.bury(job, err.Error())
			return
		}
		w.retry(job, err)
		return
	}

	if err := w.store.CompleteNotificationJob(job.ID); err != nil {
		slog.Error("无法把任务标记为完成", "jobID", job.ID, "error", err)
		return
	}
	slog.Info("任务完成", "jobID", job.ID, "kind", job.Kind, "to", payload.To)
}

// retry 记录一次失败，按指数退避安排下一次重试，重试次数耗尽后进入 dead 状态
func (w *Worker) retry(job *domain.NotificationJob, cause error) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		w.bury(job, cause.Error())
		return
	}

	delay := time.Duration(w.cfg.Queue.BaseDelay) * time.Millisecond << (attempts - 1)
	nextRunAt := time.Now().Add(delay)

	if err := w.store.RescheduleNotificationJob(job.ID, nextRunAt, cause.Error()); err != nil {
		slog.Error("无法安排任务重试", "jobID", job.ID, "error", err)
		return
	}
	slog.Warn("任务投递失败，稍后重试", "jobID", job.ID, "attempts", attempts, "delay", delay, "error", cause)
}

// bury 把任务标记为 dead，之后只能通过运维手段观察到
func (w *Worker) bury(job *domain.NotificationJob, reason string) {
	if err := w.store.MarkNotificationJobDead(job.ID, reason); err != nil {
		slog.Error("无法把任务标记为 dead", "jobID", job.ID, "error", err)
		return
	}
	slog.Error("任务进入 dead 状态", "jobID", job.ID, "kind", job.Kind, "reason", reason)
}

// pruneLoop 周期性地清理已完成和 dead 的任务，只保留最近的若干条
func (w *Worker) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(w.cfg.Queue.PruneInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := w.store.PruneNotificationJobs(domain.JobStatusCompleted, w.cfg.Queue.RemoveOnComplete); err != nil {
				slog.Error("清理已完成任务失败", "error", err)
			} else if n > 0 {
				slog.Info("已清理完成的任务", "count", n)
			}

			if n, err := w.store.PruneNotificationJobs(domain.JobStatusDead, w.cfg.Queue.RemoveOnFail); err != nil {
				slog.Error("清理 dead 任务失败", "error", err)
			} else if n > 0 {
				slog.Info("已清理 dead 任务", "count", n)
			}
		}
	}
}
