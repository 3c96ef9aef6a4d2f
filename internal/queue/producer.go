package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

// NudgeQueueName 是用来提醒 worker 立即拉取任务的 RabbitMQ 队列，
// 任务本身持久化在数据库里，这个队列只起到降低轮询延迟的作用
const NudgeQueueName = "notification_jobs"

type JobStore interface {
	CreateNotificationJob(job *domain.NotificationJob) error
}

// NudgePublisher 由 *amqp.Channel 实现
type NudgePublisher interface {
	PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error
}

// Producer 在触发事件（账户创建、培训报名）已经提交之后，
// 把通知任务持久化到队列表中
type Producer struct {
	cfg   *config.Config
	store JobStore
	nudge NudgePublisher // 可以为 nil，此时 worker 只靠轮询发现任务
}

func NewProducer(cfg *config.Config, store JobStore, nudge NudgePublisher) *Producer {
	return &Producer{
		cfg:   cfg,
		store: store,
		nudge: nudge,
	}
}

// Enqueue 持久化一个通知任务，attempts 为 0、状态为 queued、立即可执行
func (p *Producer) Enqueue(kind domain.JobKind, payload domain.MailPayload) (*domain.NotificationJob, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("未知的任务类型: %s", kind)
	}
	if payload.To == "" {
		return nil, errors.New("收件人不能为空")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	job := &domain.NotificationJob{
		Kind:        kind,
		Payload:     body,
		Status:      domain.JobStatusQueued,
		Attempts:    0,
		MaxAttempts: int32(p.cfg.Queue.MaxAttempts),
		NextRunAt:   time.Now(),
	}

	if err := p.store.CreateNotificationJob(job); err != nil {
		return nil, err
	}

	// 提醒失败不影响任务本身，worker 迟早会在轮询中发现这个任务
	if p.nudge != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.RabbitMQ.PublishTimeout)*time.Second)
		defer cancel()

		if err := p.nudge.PublishWithContext(
			ctx,
			"",
			NudgeQueueName,
			false,
			false,
			amqp.Publishing{
				ContentType: "text/plain",
				Body:        []byte(strconv.FormatInt(job.ID, 10)),
			},
		); err != nil {
			slog.Warn("无法发送任务提醒", "jobID", job.ID, "error", err)
		}
	}

	return job, nil
}

// NotifyOnboarding 为新创建的账户入队一封包含初始密码的欢迎邮件
func (p *Producer) NotifyOnboarding(user *domain.User, password string) error {
	body, err := renderOnboardingBody(domain.OnboardingMailData{
		FullName:   user.FullName,
		EmployeeID: user.EmployeeID,
		Email:      user.Email,
		Password:   password,
	})
	if err != nil {
		return err
	}

	_, err = p.Enqueue(domain.JobKindOnboarding, domain.MailPayload{
		To:      user.Email,
		Subject: SubjectOnboarding,
		Body:    body,
	})
	return err
}

// NotifyEnrollment 为一次报名入队一封培训通知邮件
func (p *Producer) NotifyEnrollment(user *domain.User, training *domain.Training) error {
	body, err := renderEnrollmentBody(domain.EnrollmentMailData{
		FullName:  user.FullName,
		Title:     training.Title,
		Mode:      string(training.Mode),
		Venue:     training.Venue(),
		StartDate: training.StartDate.Format("2006-01-02 15:04"),
		EndDate:   training.EndDate.Format("2006-01-02 15:04"),
	})
	if err != nil {
		return err
	}

	_, err = p.Enqueue(domain.JobKindEnrollment, domain.MailPayload{
		To:      user.Email,
		Subject: SubjectEnrollment,
		Body:    body,
	})
	return err
}

// NotifyPasswordReset 入队一封包含重置密码验证码的邮件
func (p *Producer) NotifyPasswordReset(user *domain.User, otp string, expirationMinutes int) error {
	body, err := renderPasswordResetBody(domain.PasswordResetMailData{
		FullName:   user.FullName,
		OTP:        otp,
		Expiration: expirationMinutes,
	})
	if err != nil {
		return err
	}

	_, err = p.Enqueue(domain.JobKindPasswordReset, domain.MailPayload{
		To:      user.Email,
		Subject: SubjectPasswordReset,
		Body:    body,
	})
	return err
}
