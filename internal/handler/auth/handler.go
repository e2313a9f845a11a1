package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/service/identity"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
	"github.com/carelink/dispatch-api/pkg/httputil"
	"github.com/carelink/dispatch-api/pkg/validator"
)

type Handler struct {
	service *identity.Service
}

func NewHandler(service *identity.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("malformed request body", err))
		return
	}
	if err := validator.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid registration payload", err))
		return
	}

	professional, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, professional)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("malformed request body", err))
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}
