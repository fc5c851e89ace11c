package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "account-service/internal/application"
	"account-service/internal/interface/middleware"
	"account-service/pkg/apperr"
	"account-service/pkg/helpers"
	"account-service/pkg/mailer"
	"account-service/pkg/response"
	"account-service/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
	Pub    *helpers.RabbitPublisher // optional; welcome email on signup
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, pub *helpers.RabbitPublisher) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Pub: pub}
}

// Request bodies carry no binding constraints on the domain fields: the
// ordered checks in the service own those rules and their detail codes.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// fail records the error for the transaction middleware (which rolls back on
// any recorded error) and writes the client-facing response. Infrastructure
// and unrecognized failures surface opaque, with no internal detail.
func (h *UserHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	e, ok := apperr.From(err)
	if !ok || e.Kind == apperr.KindInfrastructure {
		response.Error[any](c, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}

	status := http.StatusInternalServerError
	switch e.Code {
	case apperr.CodeBadRequest:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	}

	var details any
	if e.Detail != "" {
		details = gin.H{"code": e.Detail}
	}
	response.Error[any](c, status, e.Message, details)
}

func caller(c *gin.Context) userapp.Identity {
	return userapp.Identity{
		ID:    c.GetString(middleware.CtxUserIDKey),
		Email: c.GetString(middleware.CtxUserEmailKey),
	}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.Signup(c.Request.Context(), userapp.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}); err != nil {
		h.fail(c, err)
		return
	}

	// The welcome mail waits for the commit; a rolled-back signup must not
	// greet anyone.
	middleware.AfterCommit(c, func() { h.publishWelcome(c, req.Email, req.Name) })
	response.Success[any](c, http.StatusCreated, nil, "signup successful")
}

func (h *UserHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, err := h.Svc.Signin(c.Request.Context(), userapp.SigninInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token}, "signin successful")
}

func (h *UserHandler) GetUser(c *gin.Context) {
	res, err := h.Svc.GetUser(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":    res.ID,
		"email": res.Email,
		"name":  res.Name,
	}, "user")
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.UpdateUser(c.Request.Context(), caller(c), userapp.UpdateUserInput{
		ID:       c.Param("id"),
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	}); err != nil {
		h.fail(c, err)
		return
	}

	response.Success[any](c, http.StatusOK, nil, "user updated")
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	response.Success[any](c, http.StatusOK, nil, "user deleted")
}

// publishWelcome queues a welcome email, best effort. Signup never fails
// because the broker is down.
func (h *UserHandler) publishWelcome(c *gin.Context, email, name string) {
	if h.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:      email,
		Subject: "Welcome",
		Text:    "Hi " + name + ", your account has been created.",
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		helpers.LogError(h.Logger, "failed to publish welcome email", err, logrus.Fields{"email": email})
	}
}
