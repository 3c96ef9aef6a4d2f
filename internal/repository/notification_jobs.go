package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

func (r *Repository) CreateNotificationJob(job *domain.NotificationJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO notification_jobs (kind, payload, status, attempts, max_attempts, next_run_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	args := []any{job.Kind, job.Payload, job.Status, job.Attempts, job.MaxAttempts, job.NextRunAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return err
	}

	return nil
}

// ClaimNextNotificationJob 用单条语句原子地认领下一个可执行的任务，
// FOR UPDATE SKIP LOCKED 保证一个任务同一时刻只会被一个 worker 认领，
// 没有可执行的任务时返回 sql.ErrNoRows
func (r *Repository) ClaimNextNotificationJob() (*domain.NotificationJob, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		WITH next AS (
			SELECT id
			FROM notification_jobs
			WHERE status IN ('queued', 'failed')
			  AND next_run_at <= NOW()
			ORDER BY next_run_at, id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE notification_jobs
		SET status = 'processing', updated_at = NOW()
		WHERE id = (SELECT id FROM next)
		RETURNING id, kind, payload, status, attempts, max_attempts, next_run_at, last_error, created_at, updated_at
	`

	job := &domain.NotificationJob{}
	dst := []any{&job.ID, &job.Kind, &job.Payload, &job.Status, &job.Attempts, &job.MaxAttempts, &job.NextRunAt, &job.LastError, &job.CreatedAt, &job.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	return job, nil
}

func (r *Repository) CompleteNotificationJob(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE notification_jobs
		SET status = 'completed', last_error = '', updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// RescheduleNotificationJob 记录一次失败并把任务挪到下一次重试时间
func (r *Repository) RescheduleNotificationJob(id int64, nextRunAt time.Time, lastError string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE notification_jobs
		SET status = 'failed', attempts = attempts + 1, next_run_at = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id, nextRunAt, lastError)
	if err != nil {
		return err
	}

	return nil
}

// MarkNotificationJobDead 把任务标记为 dead，之后不会再被自动执行
func (r *Repository) MarkNotificationJobDead(id int64, lastError string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE notification_jobs
		SET status = 'dead', attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id, lastError)
	if err != nil {
		return err
	}

	return nil
}

// PruneNotificationJobs 删除指定状态下较旧的任务，只保留最近的 keep 条
func (r *Repository) PruneNotificationJobs(status domain.JobStatus, keep int) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM notification_jobs
		WHERE status = $1
		  AND id NOT IN (
			SELECT id FROM notification_jobs
			WHERE status = $1
			ORDER BY updated_at DESC
			LIMIT $2
		  )
	`

	result, err := r.dbpool.ExecContext(ctx, query, status, keep)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
