package provision

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/ingest"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	CheckUserConflict(email string, employeeID string) (emailExists bool, employeeIDExists bool, err error)
	CreateUser(user *domain.User) error
}

type Notifier interface {
	NotifyOnboarding(user *domain.User, password string) error
}

// NewUser 是一条已经通过校验的待开通账户记录
type NewUser struct {
	FullName   string
	EmployeeID string
	Email      string
	Department string
	Phone      string
}

func NewUserFromRecord(record ingest.Record) NewUser {
	return NewUser{
		FullName:   record["name"],
		EmployeeID: record["employeeid"],
		Email:      record["email"],
		Department: record["department"],
		Phone:      record[ingest.PhoneColumn],
	}
}

// Result 是单个账户开通的结果，明文密码只用于欢迎邮件，不会被持久化
type Result struct {
	User     *domain.User
	Password string
}

type RowFailure struct {
	Line   int    `json:"line"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

// BatchSummary 是一次批量导入的汇总：成功创建的账户和逐行的失败原因
type BatchSummary struct {
	Created []*domain.User `json:"created"`
	Skipped []RowFailure   `json:"skipped"`
}

// Provisioner 负责账户的去重和创建
type Provisioner struct {
	cfg      *config.Config
	store    UserStore
	notifier Notifier
}

func NewProvisioner(cfg *config.Config, store UserStore, notifier Notifier) *Provisioner {
	return &Provisioner{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
	}
}

// Provision 为一条记录开通账户：查重、生成随机密码、持久化，
// 邮箱或工号冲突时返回 DuplicateError（两者同时冲突时以邮箱为准），
// 成功后入队欢迎邮件，入队失败只记录日志，不回滚已创建的账户
func (p *Provisioner) Provision(nu NewUser, role domain.Role) (*Result, error) {
	emailExists, employeeIDExists, err := p.store.CheckUserConflict(nu.Email, nu.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emailExists {
		return nil, &domain.DuplicateError{Field: "email"}
	}
	if employeeIDExists {
		return nil, &domain.DuplicateError{Field: "employeeId"}
	}

	password := utils.GenerateRandomPassword(p.cfg.NewUser.PasswordLength)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		EmployeeID:   nu.EmployeeID,
		FullName:     nu.FullName,
		Email:        nu.Email,
		Department:   nu.Department,
		Phone:        nu.Phone,
		Role:         role,
		PasswordHash: string(passwordHash),
	}

	// 并发创建时预检查可能漏掉冲突，最终由唯一约束兜底，
	// 此时 CreateUser 同样返回 DuplicateError
	if err := p.store.CreateUser(user); err != nil {
		return nil, err
	}

	if err := p.notifier.NotifyOnboarding(user, password); err != nil {
		slog.Error("无法入队欢迎邮件", "email", user.Email, "error", err)
	}

	return &Result{User: user, Password: password}, nil
}

// ProvisionAll 逐行消费上传文件的记录序列并独立地开通每个账户，
// 单行的校验失败和冲突只跳过这一行，绝不会中断整个批次；
// 存储本身不可用时返回错误，此时已经创建的账户保持已创建
func (p *Provisioner) ProvisionAll(stream *ingest.Stream, role domain.Role) (*BatchSummary, error) {
	summary := &BatchSummary{
		Created: make([]*domain.User, 0),
		Skipped: make([]RowFailure, 0),
	}

	for {
		record, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}

		if err := ingest.ValidateRecord(record); err != nil {
			summary.Skipped = append(summary.Skipped, RowFailure{
				Line:   stream.Line(),
				Email:  record["email"],
				Reason: err.Error(),
			})
			continue
		}

		result, err := p.Provision(NewUserFromRecord(record), role)
		if err != nil {
			duplicateErr := &domain.DuplicateError{}
			validationErr := &domain.ValidationError{}
			if errors.As(err, &duplicateErr) || errors.As(err, &validationErr) {
				summary.Skipped = append(summary.Skipped, RowFailure{
					Line:   stream.Line(),
					Email:  record["email"],
					Reason: err.Error(),
				})
				continue
			}
			// 存储不可用等行级之外的错误向上传播
			return summary, err
		}

		summary.Created = append(summary.Created, result.User)
	}

	return summary, nil
}
