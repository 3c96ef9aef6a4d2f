package utils

import (
	"errors"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

// ValidateTrainingSchedule 检查培训项目的时间和地点约束：
// 结束时间必须晚于开始时间，线下培训必须填地点，线上培训必须填平台
func ValidateTrainingSchedule(t *domain.Training) error {
	if !t.EndDate.After(t.StartDate) {
		return errors.New("培训的结束时间必须晚于开始时间")
	}

	switch t.Mode {
	case domain.TrainingModeOffline:
		if t.Location == "" {
			return errors.New("线下培训必须填写培训地点")
		}
	case domain.TrainingModeOnline:
		if t.Platform == "" {
			return errors.New("线上培训必须填写培训平台")
		}
	default:
		return errors.New("无效的培训方式")
	}

	return nil
}
