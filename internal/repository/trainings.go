package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

func (r *Repository) CreateTraining(t *domain.Training) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO trainings (title, description, mode, location, platform, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	args := []any{t.Title, t.Description, t.Mode, t.Location, t.Platform, t.StartDate, t.EndDate}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTrainingByID(id int64) (*domain.Training, error) {
	query := `
		SELECT title, description, mode, location, platform, start_date, end_date, created_at, version
		FROM trainings WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	t := &domain.Training{
		ID: id,
	}

	dst := []any{&t.Title, &t.Description, &t.Mode, &t.Location, &t.Platform, &t.StartDate, &t.EndDate, &t.CreatedAt, &t.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return t, nil
}

func (r *Repository) GetAllTrainings() ([]*domain.Training, error) {
	query := `
		SELECT id, title, description, mode, location, platform, start_date, end_date, created_at, version
		FROM trainings ORDER BY start_date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trainings := make([]*domain.Training, 0)
	for rows.Next() {
		t := &domain.Training{}
		dst := []any{&t.ID, &t.Title, &t.Description, &t.Mode, &t.Location, &t.Platform, &t.StartDate, &t.EndDate, &t.CreatedAt, &t.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		trainings = append(trainings, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trainings, nil
}

func (r *Repository) UpdateTraining(t *domain.Training) error {
	query := `
		UPDATE trainings
		SET
			title = $1,
			description = $2,
			mode = $3,
			location = $4,
			platform = $5,
			start_date = $6,
			end_date = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{t.Title, t.Description, t.Mode, t.Location, t.Platform, t.StartDate, t.EndDate, t.ID, t.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&t.CreatedAt, &t.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTraining(id int64) error {
	query := `
		DELETE FROM trainings WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
