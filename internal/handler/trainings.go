package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/utils"
)

func (h *Handler) CreateTraining(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string    `json:"title" validate:"required"`
		Description string    `json:"description"`
		Mode        string    `json:"mode" validate:"required,oneof=ONLINE OFFLINE"`
		Location    string    `json:"location"`
		Platform    string    `json:"platform"`
		StartDate   time.Time `json:"startDate" validate:"required"`
		EndDate     time.Time `json:"endDate" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	training := &domain.Training{
		Title:       req.Title,
		Description: req.Description,
		Mode:        domain.TrainingMode(req.Mode),
		Location:    req.Location,
		Platform:    req.Platform,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	if err := utils.ValidateTrainingSchedule(training); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateTraining(training); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "培训创建成功", training)
}

func (h *Handler) GetAllTrainings(w http.ResponseWriter, r *http.Request) {
	trainings, err := h.repository.GetAllTrainings()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取培训列表成功", trainings)
}

func (h *Handler) GetTraining(w http.ResponseWriter, r *http.Request) {
	training := r.Context().Value(TrainingCtx).(*domain.Training)
	h.successResponse(w, r, "获取培训信息成功", training)
}

func (h *Handler) UpdateTraining(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Mode        *string    `json:"mode" validate:"omitempty,oneof=ONLINE OFFLINE"`
		Location    *string    `json:"location"`
		Platform    *string    `json:"platform"`
		StartDate   *time.Time `json:"startDate"`
		EndDate     *time.Time `json:"endDate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	training := r.Context().Value(TrainingCtx).(*domain.Training)

	if req.Title != nil {
		training.Title = *req.Title
	}
	if req.Description != nil {
		training.Description = *req.Description
	}
	if req.Mode != nil {
		training.Mode = domain.TrainingMode(*req.Mode)
	}
	if req.Location != nil {
		training.Location = *req.Location
	}
	if req.Platform != nil {
		training.Platform = *req.Platform
	}
	if req.StartDate != nil {
		training.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		training.EndDate = *req.EndDate
	}

	if err := utils.ValidateTrainingSchedule(training); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateTraining(training); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新培训信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新培训信息成功", training)
}

func (h *Handler) DeleteTraining(w http.ResponseWriter, r *http.Request) {
	training := r.Context().Value(TrainingCtx).(*domain.Training)

	if err := h.repository.DeleteTraining(training.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除培训成功", nil)
}
