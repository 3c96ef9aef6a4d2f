package utils

import (
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

func baseTraining(mode domain.TrainingMode) *domain.Training {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	t := &domain.Training{
		Title:     "信息安全意识培训",
		Mode:      mode,
		StartDate: start,
		EndDate:   start.Add(2 * time.Hour),
	}
	switch mode {
	case domain.TrainingModeOnline:
		t.Platform = "腾讯会议"
	case domain.TrainingModeOffline:
		t.Location = "三楼会议室"
	}
	return t
}

func TestValidateTrainingSchedule_Valid(t *testing.T) {
	if err := ValidateTrainingSchedule(baseTraining(domain.TrainingModeOnline)); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := ValidateTrainingSchedule(baseTraining(domain.TrainingModeOffline)); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestValidateTrainingSchedule_EndBeforeStart(t *testing.T) {
	training := baseTraining(domain.TrainingModeOnline)
	training.EndDate = training.StartDate.Add(-time.Hour)

	if err := ValidateTrainingSchedule(training); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidateTrainingSchedule_EndEqualsStart(t *testing.T) {
	training := baseTraining(domain.TrainingModeOnline)
	training.EndDate = training.StartDate

	if err := ValidateTrainingSchedule(training); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidateTrainingSchedule_OfflineRequiresLocation(t *testing.T) {
	training := baseTraining(domain.TrainingModeOffline)
	training.Location = ""

	if err := ValidateTrainingSchedule(training); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidateTrainingSchedule_OnlineRequiresPlatform(t *testing.T) {
	training := baseTraining(domain.TrainingModeOnline)
	training.Platform = ""

	if err := ValidateTrainingSchedule(training); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidateTrainingSchedule_InvalidMode(t *testing.T) {
	training := baseTraining(domain.TrainingModeOnline)
	training.Mode = "HYBRID"

	if err := ValidateTrainingSchedule(training); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
