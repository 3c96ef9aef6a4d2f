package enrollment

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

type enrollmentKey struct {
	userID     int64
	trainingID int64
}

type fakeStore struct {
	trainings   map[int64]*domain.Training
	users       map[int64]*domain.User
	enrollments map[enrollmentKey]*domain.Enrollment
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		trainings:   make(map[int64]*domain.Training),
		users:       make(map[int64]*domain.User),
		enrollments: make(map[enrollmentKey]*domain.Enrollment),
	}
}

func (s *fakeStore) GetTrainingByID(id int64) (*domain.Training, error) {
	training, ok := s.trainings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return training, nil
}

func (s *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *fakeStore) UpsertEnrollment(userID int64, trainingID int64) (bool, error) {
	key := enrollmentKey{userID: userID, trainingID: trainingID}
	if _, ok := s.enrollments[key]; ok {
		return false, nil
	}
	s.nextID++
	s.enrollments[key] = &domain.Enrollment{
		ID:         s.nextID,
		UserID:     userID,
		TrainingID: trainingID,
		CreatedAt:  time.Now(),
	}
	return true, nil
}

func (s *fakeStore) DeleteEnrollment(userID int64, trainingID int64) (bool, error) {
	key := enrollmentKey{userID: userID, trainingID: trainingID}
	if _, ok := s.enrollments[key]; !ok {
		return false, nil
	}
	delete(s.enrollments, key)
	return true, nil
}

func (s *fakeStore) GetEnrollment(userID int64, trainingID int64) (*domain.Enrollment, error) {
	enrollment, ok := s.enrollments[enrollmentKey{userID: userID, trainingID: trainingID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

type fakeNotifier struct {
	notified []int64
	err      error
}

func (n *fakeNotifier) NotifyEnrollment(user *domain.User, training *domain.Training) error {
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, user.ID)
	return nil
}

func seededStore() *fakeStore {
	store := newFakeStore()
	store.trainings[1] = &domain.Training{ID: 1, Title: "信息安全意识培训"}
	store.users[10] = &domain.User{ID: 10, Email: "zhangsan@example.com"}
	store.users[11] = &domain.User{ID: 11, Email: "lisi@example.com"}
	return store
}

func TestEnroll_CreatesEnrollments(t *testing.T) {
	store := seededStore()
	notifier := &fakeNotifier{}
	m := NewManager(store, notifier)

	enrollments, err := m.Enroll(1, []int64{10, 11})
	if err != nil {
		t.Fatalf("Enroll error: %v", err)
	}

	if len(enrollments) != 2 {
		t.Fatalf("expected 2 enrollments, got %d", len(enrollments))
	}
	if len(store.enrollments) != 2 {
		t.Fatalf("expected 2 stored enrollments, got %d", len(store.enrollments))
	}
	if len(notifier.notified) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.notified))
	}
}

func TestEnroll_Idempotent(t *testing.T) {
	store := seededStore()
	m := NewManager(store, &fakeNotifier{})

	first, err := m.Enroll(1, []int64{10})
	if err != nil {
		t.Fatalf("Enroll error: %v", err)
	}

	second, err := m.Enroll(1, []int64{10})
	if err != nil {
		t.Fatalf("Enroll error: %v", err)
	}

	if len(store.enrollments) != 1 {
		t.Fatalf("expected 1 stored enrollment, got %d", len(store.enrollments))
	}
	if first[0].ID != second[0].ID {
		t.Fatalf("expected the same enrollment, got %d and %d", first[0].ID, second[0].ID)
	}
}

func TestEnroll_TrainingNotFound(t *testing.T) {
	store := seededStore()
	m := NewManager(store, &fakeNotifier{})

	_, err := m.Enroll(99, []int64{10})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnroll_AccountNotFound(t *testing.T) {
	store := seededStore()
	m := NewManager(store, &fakeNotifier{})

	_, err := m.Enroll(1, []int64{10, 99})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// 任何一个账户不存在时整个调用失败，不应该有部分写入
	if len(store.enrollments) != 0 {
		t.Fatalf("expected no enrollments, got %d", len(store.enrollments))
	}
}

func TestEnroll_EmptyAccounts(t *testing.T) {
	m := NewManager(seededStore(), &fakeNotifier{})

	if _, err := m.Enroll(1, []int64{}); !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}
}

func TestEnroll_NotifyFailureDoesNotRollback(t *testing.T) {
	store := seededStore()
	m := NewManager(store, &fakeNotifier{err: errors.New("队列不可用")})

	enrollments, err := m.Enroll(1, []int64{10})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(enrollments) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(enrollments))
	}
	if len(store.enrollments) != 1 {
		t.Fatalf("expected enrollment to stay committed")
	}
}

func TestDeenroll(t *testing.T) {
	store := seededStore()
	m := NewManager(store, &fakeNotifier{})

	if _, err := m.Enroll(1, []int64{10, 11}); err != nil {
		t.Fatalf("Enroll error: %v", err)
	}

	// 10 已报名会被删除，99 从未报名是无操作
	deleted, err := m.Deenroll(1, []int64{10, 99})
	if err != nil {
		t.Fatalf("Deenroll error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
	if len(store.enrollments) != 1 {
		t.Fatalf("expected 1 remaining enrollment, got %d", len(store.enrollments))
	}
}

func TestDeenroll_EmptyAccounts(t *testing.T) {
	m := NewManager(seededStore(), &fakeNotifier{})

	if _, err := m.Deenroll(1, []int64{}); !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}
}

func TestDeenroll_TrainingNotFound(t *testing.T) {
	m := NewManager(seededStore(), &fakeNotifier{})

	if _, err := m.Deenroll(99, []int64{10}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
