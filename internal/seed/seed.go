package seed

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/utils"
)

// InsertRandomUsers 往数据库里插入 n 个随机员工账户，
// 随机生成的邮箱或工号撞车时跳过这一个继续插入
func InsertRandomUsers(repo *repository.Repository, n int, password string, emailDomain string) {
	inserted := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(password, emailDomain)
		if err != nil {
			slog.Error("无法生成随机用户", "error", err)
			return
		}

		if err := repo.CreateUser(user); err != nil {
			duplicateErr := &domain.DuplicateError{}
			if errors.As(err, &duplicateErr) {
				continue
			}
			slog.Error("无法插入随机用户", "error", err)
			return
		}
		inserted++
	}
	slog.Info("已插入随机用户", "count", inserted)
}

// InsertRandomTrainings 往数据库里插入 n 个随机培训项目
func InsertRandomTrainings(repo *repository.Repository, n int) {
	for i := 0; i < n; i++ {
		training := utils.GenerateRandomTraining()
		if err := repo.CreateTraining(training); err != nil {
			slog.Error("无法插入随机培训", "error", err)
			return
		}
	}
	slog.Info("已插入随机培训", "count", n)
}

// InsertRandomEnrollments 把随机挑选的用户报名到指定的培训
func InsertRandomEnrollments(repo *repository.Repository, trainingID int64) {
	if _, err := repo.GetTrainingByID(trainingID); err != nil {
		slog.Error("培训不存在", "trainingID", trainingID, "error", err)
		return
	}

	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("无法获取用户列表", "error", err)
		return
	}
	if len(users) == 0 {
		slog.Error("数据库中没有用户，请先插入随机用户")
		return
	}

	inserted := 0
	for _, user := range users {
		// 大约一半的用户会被报名
		if rand.Intn(2) == 0 {
			continue
		}
		if _, err := repo.UpsertEnrollment(user.ID, trainingID); err != nil {
			slog.Error("无法插入报名记录", "error", err)
			return
		}
		inserted++
	}
	slog.Info("已插入报名记录", "trainingID", trainingID, "count", inserted)
}
