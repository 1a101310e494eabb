package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/config"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/mailqueue"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/readings"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/repository"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/scheduler"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/views"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mail        *mailqueue.Publisher
	redisClient *redis.Client
	generator   *scheduler.Generator
	registry    *readings.Registry
	views       *views.Invalidator

	Mux *chi.Mux
}

type Deps struct {
	Repository *repository.Repository
	Mail       *mailqueue.Publisher
	Redis      *redis.Client
	Generator  *scheduler.Generator
	Registry   *readings.Registry
	Views      *views.Invalidator
}

func NewHandler(cfg *config.Config, deps Deps) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  deps.Repository,
		translator:  trans,
		mail:        deps.Mail,
		redisClient: deps.Redis,
		generator:   deps.Generator,
		registry:    deps.Registry,
		views:       deps.Views,

		Mux: chi.NewRouter(),
	}, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	es := es.New()
	uni := ut.New(es, es)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func (h *Handler) RegisterRoutes() {
	admin := h.RequiredRole([]domain.Role{domain.RoleAdmin})

	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// autenticación
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// todo lo demás exige sesión
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(admin).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(admin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(admin).Delete("/", h.DeleteUser)
				r.With(admin).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/service-types", func(r chi.Router) {
			r.Get("/", h.GetAllServiceTypes)
			r.With(admin).Post("/", h.CreateServiceType)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.serviceType)
				r.Get("/", h.GetServiceType)
				r.With(admin).Patch("/", h.UpdateServiceType)
				r.With(admin).Delete("/", h.DeleteServiceType)
			})
		})

		r.Route("/service-templates", func(r chi.Router) {
			r.Get("/", h.GetAllServiceTemplates)
			r.With(admin).Post("/", h.CreateServiceTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.serviceTemplate)
				r.Get("/", h.GetServiceTemplate)
				r.With(admin).Patch("/", h.UpdateServiceTemplate)
				r.With(admin).Delete("/", h.DeleteServiceTemplate)
			})
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.GetHolidays)
			r.With(admin).Post("/", h.CreateHoliday)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.holiday)
				r.Get("/", h.GetHoliday)
				r.With(admin).Delete("/", h.DeleteHoliday)
			})
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", h.GetServices)
			r.With(admin).Post("/generate", h.GenerateServices)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.service)
				r.Get("/", h.GetService)
				r.With(admin).Delete("/", h.DeleteService)
				r.With(admin).Put("/roles/{role}", h.AssignServiceRole)
				r.With(admin).Patch("/holiday-adjustment", h.SetHolidayAdjustment)
				r.Route("/readings", func(r chi.Router) {
					r.Get("/", h.GetServiceReadings)
					r.With(admin).Post("/", h.RecordReading)
					r.With(admin).Post("/confirm", h.ConfirmRepeatReading)
				})
			})
		})

		r.Route("/readings", func(r chi.Router) {
			r.Get("/", h.GetReadings)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetReading)
				r.With(admin).Delete("/", h.DeleteReading)
			})
		})
	})
}
