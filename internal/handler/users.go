package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/repository"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// GetAllUserInfo lista los hermanos. Con ?pulpit=true solo los habilitados para el púlpito.
func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	onlyPulpit := r.URL.Query().Get("pulpit") == "true"

	users, err := h.repository.GetAllUsers(r.Context(), onlyPulpit)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "lista de usuarios obtenida", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username         string `json:"username"`
		FullName         string `json:"fullName" validate:"required"`
		Email            string `json:"email" validate:"required,email"`
		Role             string `json:"role" validate:"required,oneof=member admin"`
		IsPulpitEligible bool   `json:"isPulpitEligible"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Username == "" {
		req.Username = utils.UsernameFromName(req.FullName)
	}
	if req.Username == "" {
		h.errorResponse(w, r, "no se pudo formar un nombre de usuario a partir del nombre")
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:         req.Username,
		PasswordHash:     string(hashedPassword),
		FullName:         req.FullName,
		Email:            req.Email,
		Role:             domain.Role(req.Role),
		IsPulpitEligible: req.IsPulpitEligible,
	}

	if err := h.repository.CreateUser(r.Context(), user); err != nil {
		switch {
		case repository.ConstraintViolated(err, "users_username_key"):
			h.badRequest(w, r, errors.New("el nombre de usuario ya existe"))
		case repository.ConstraintViolated(err, "users_email_key"):
			h.badRequest(w, r, errors.New("el correo ya existe"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if _, err := h.mail.Publish(r.Context(), domain.MailTypeCreateUser, user.Email, domain.CreateUserMailData{
		FullName: user.FullName,
		Username: user.Username,
		Password: password,
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "usuario creado", user)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "usuario obtenido", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName         *string `json:"fullName" validate:"omitempty,min=1"`
		Email            *string `json:"email" validate:"omitempty,email"`
		Role             *string `json:"role" validate:"omitempty,oneof=member admin"`
		IsPulpitEligible *bool   `json:"isPulpitEligible"`
		IsActive         *bool   `json:"isActive"`
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

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.IsPulpitEligible != nil {
		user.IsPulpitEligible = *req.IsPulpitEligible
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		switch {
		case repository.ConstraintViolated(err, "users_email_key"):
			h.badRequest(w, r, errors.New("el correo ya existe"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "no se pudo actualizar el usuario, inténtalo de nuevo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "usuario actualizado", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(r.Context(), user.ID); err != nil {
		switch {
		case repository.ConstraintViolated(err, "scripture_readings_reader_id_fkey"):
			h.errorResponse(w, r, "el usuario tiene lecturas registradas; desactívalo en lugar de borrarlo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "usuario eliminado", nil)
}

func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "contraseña cambiada", nil)
}
