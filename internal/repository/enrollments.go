package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

// UpsertEnrollment 以幂等的方式插入一条报名记录，
// (user_id, training_id) 已存在时不产生新行也不报错，返回值表示是否真的插入了新行
func (r *Repository) UpsertEnrollment(userID int64, trainingID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO enrollments (user_id, training_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT enrollments_user_id_training_id_key DO NOTHING
	`

	result, err := r.dbpool.ExecContext(ctx, query, userID, trainingID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// DeleteEnrollment 删除一条报名记录，删除不存在的记录不报错，返回值表示是否真的删除了
func (r *Repository) DeleteEnrollment(userID int64, trainingID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM enrollments WHERE user_id = $1 AND training_id = $2
	`

	result, err := r.dbpool.ExecContext(ctx, query, userID, trainingID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *Repository) GetEnrollment(userID int64, trainingID int64) (*domain.Enrollment, error) {
	query := `
		SELECT id, created_at FROM enrollments WHERE user_id = $1 AND training_id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	enrollment := &domain.Enrollment{
		UserID:     userID,
		TrainingID: trainingID,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, userID, trainingID).Scan(&enrollment.ID, &enrollment.CreatedAt); err != nil {
		return nil, err
	}

	return enrollment, nil
}

func (r *Repository) GetEnrollmentsByTraining(trainingID int64) ([]*domain.Enrollment, error) {
	query := `
		SELECT id, user_id, created_at FROM enrollments WHERE training_id = $1 ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]*domain.Enrollment, 0)
	for rows.Next() {
		enrollment := &domain.Enrollment{
			TrainingID: trainingID,
		}
		if err := rows.Scan(&enrollment.ID, &enrollment.UserID, &enrollment.CreatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}
