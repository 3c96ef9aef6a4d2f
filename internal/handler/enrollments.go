package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/enrollment"
)

func (h *Handler) EnrollUsers(w http.ResponseWriter, r *http.Request) {
	training := r.Context().Value(TrainingCtx).(*domain.Training)

	var req struct {
		AccountIDs []int64 `json:"accountIds" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	enrollments, err := h.enrollments.Enroll(training.ID, req.AccountIDs)
	if err != nil {
		switch {
		case errors.Is(err, enrollment.ErrNoAccounts), errors.Is(err, domain.ErrNotFound):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "报名成功", enrollments)
}

func (h *Handler) DeenrollUsers(w http.ResponseWriter, r *http.Request) {
	training := r.Context().Value(TrainingCtx).(*domain.Training)

	var req struct {
		AccountIDs []int64 `json:"accountIds" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	deleted, err := h.enrollments.Deenroll(training.ID, req.AccountIDs)
	if err != nil {
		switch {
		case errors.Is(err, enrollment.ErrNoAccounts), errors.Is(err, domain.ErrNotFound):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "取消报名成功", map[string]int64{"deleted": deleted})
}

func (h *Handler) GetTrainingEnrollments(w http.ResponseWriter, r *http.Request) {
	training := r.Context().Value(TrainingCtx).(*domain.Training)

	enrollments, err := h.repository.GetEnrollmentsByTraining(training.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取报名列表成功", enrollments)
}
