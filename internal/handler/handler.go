package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/enrollment"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/provision"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/queue"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	redisClient *redis.Client
	producer    *queue.Producer
	provisioner *provision.Provisioner
	enrollments *enrollment.Manager

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	producer *queue.Producer,
	provisioner *provision.Provisioner,
	enrollments *enrollment.Manager,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		redisClient: rdb,
		producer:    producer,
		provisioner: provisioner,
		enrollments: enrollments,

		Mux: chi.NewRouter(),
	}, nil
}

// 人事管理员和系统管理员都可以管理账户、培训和报名
var managementRoles = []domain.Role{domain.RoleHRAdmin, domain.RoleAdmin}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用，已停用的账户一律拒绝
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)
		r.Use(h.preventInactiveUser)
		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole(managementRoles)).Post("/", h.CreateUser)
			r.With(h.RequiredRole(managementRoles)).Post("/bulk", h.BulkCreateUsers)
			r.With(h.RequiredRole(managementRoles)).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(managementRoles)).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/trainings", func(r chi.Router) {
			r.With(h.RequiredRole(managementRoles)).Post("/", h.CreateTraining)
			r.Get("/", h.GetAllTrainings)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.training)
				r.Get("/", h.GetTraining)
				r.With(h.RequiredRole(managementRoles)).Patch("/", h.UpdateTraining)
				r.With(h.RequiredRole(managementRoles)).Delete("/", h.DeleteTraining)
				r.Route("/enrollments", func(r chi.Router) {
					r.With(h.RequiredRole(managementRoles)).Post("/", h.EnrollUsers)
					r.With(h.RequiredRole(managementRoles)).Delete("/", h.DeenrollUsers)
					r.Get("/", h.GetTrainingEnrollments)
				})
			})
		})
	})
}
