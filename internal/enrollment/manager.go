package enrollment

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

var ErrNoAccounts = errors.New("账户 ID 列表不能为空")

type Store interface {
	GetTrainingByID(id int64) (*domain.Training, error)
	GetUserByID(id int64) (*domain.User, error)
	UpsertEnrollment(userID int64, trainingID int64) (bool, error)
	DeleteEnrollment(userID int64, trainingID int64) (bool, error)
	GetEnrollment(userID int64, trainingID int64) (*domain.Enrollment, error)
}

type Notifier interface {
	NotifyEnrollment(user *domain.User, training *domain.Training) error
}

// Manager 负责用户和培训之间报名关系的幂等维护
type Manager struct {
	store    Store
	notifier Notifier
}

func NewManager(store Store, notifier Notifier) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
	}
}

// Enroll 把一批用户报名到一个培训，(user, training) 的报名是幂等的 upsert：
// 已经报名的用户不会产生重复记录也不会报错。培训或者任何一个账户不存在时
// 整个调用失败（这是一次管理操作，不是逐行的批量导入）。
// 返回这批用户最终的报名记录，并为每个用户入队一封培训通知邮件，
// 入队失败只记录日志，已提交的报名不回滚
func (m *Manager) Enroll(trainingID int64, accountIDs []int64) ([]*domain.Enrollment, error) {
	if len(accountIDs) == 0 {
		return nil, ErrNoAccounts
	}

	training, err := m.store.GetTrainingByID(trainingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: 培训 %d", domain.ErrNotFound, trainingID)
		}
		return nil, err
	}

	// 先确认所有账户都存在，再开始写入
	users := make([]*domain.User, 0, len(accountIDs))
	for _, id := range accountIDs {
		user, err := m.store.GetUserByID(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: 账户 %d", domain.ErrNotFound, id)
			}
			return nil, err
		}
		users = append(users, user)
	}

	enrollments := make([]*domain.Enrollment, 0, len(users))
	for _, user := range users {
		if _, err := m.store.UpsertEnrollment(user.ID, trainingID); err != nil {
			return nil, err
		}

		enrollment, err := m.store.GetEnrollment(user.ID, trainingID)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)

		if err := m.notifier.NotifyEnrollment(user, training); err != nil {
			slog.Error("无法入队培训通知邮件", "email", user.Email, "trainingID", trainingID, "error", err)
		}
	}

	return enrollments, nil
}

// Deenroll 取消一批用户的报名，删除不存在的报名是无操作而不是错误，
// 返回真正被删除的记录数
func (m *Manager) Deenroll(trainingID int64, accountIDs []int64) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, ErrNoAccounts
	}

	if _, err := m.store.GetTrainingByID(trainingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: 培训 %d", domain.ErrNotFound, trainingID)
		}
		return 0, err
	}

	deleted := int64(0)
	for _, id := range accountIDs {
		ok, err := m.store.DeleteEnrollment(id, trainingID)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}

	return deleted, nil
}
