package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/provision"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name" validate:"required"`
		EmployeeID string `json:"employeeId" validate:"required"`
		Email      string `json:"email" validate:"required,email"`
		Department string `json:"department" validate:"required"`
		Phone      string `json:"phone"`
		Role       string `json:"role" validate:"required,oneof=EMPLOYEE HR_ADMIN ADMIN"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 开通账户：随机密码会通过欢迎邮件发给用户本人，不会出现在响应里
	result, err := h.provisioner.Provision(provision.NewUser{
		FullName:   req.Name,
		EmployeeID: req.EmployeeID,
		Email:      req.Email,
		Department: req.Department,
		Phone:      req.Phone,
	}, domain.Role(req.Role))
	if err != nil {
		duplicateErr := &domain.DuplicateError{}
		switch {
		case errors.As(err, &duplicateErr):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "用户创建成功", result.User)
}

// BulkCreateUsers 接收一个 CSV 文件并批量开通账户，
// 单行的错误只会出现在返回的汇总里，不会中断整个批次
func (h *Handler) BulkCreateUsers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Bulk.MaxFileSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		h.errorResponse(w, r, "无法读取上传的文件")
		return
	}
	defer file.Close()

	role := domain.RoleEmployee
	if v := r.FormValue("role"); v != "" {
		role = domain.Role(v)
		if role != domain.RoleEmployee && role != domain.RoleHRAdmin && role != domain.RoleAdmin {
			h.errorResponse(w, r, "无效的角色")
			return
		}
	}

	summary, err := h.bulkProvision(file, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedFile):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "批量导入完成", summary)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取用户信息成功", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       *string `json:"name"`
		Email      *string `json:"email" validate:"omitempty,email"`
		Department *string `json:"department"`
		Phone      *string `json:"phone"`
		Role       *string `json:"role" validate:"omitempty,oneof=EMPLOYEE HR_ADMIN ADMIN"`
		IsActive   *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.Name != nil {
		user.FullName = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateUser(user); err != nil {
		duplicateErr := &domain.DuplicateError{}
		switch {
		case errors.As(err, &duplicateErr):
			h.badRequest(w, r, err)
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新用户信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新用户信息成功", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除用户成功", nil)
}

func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}
