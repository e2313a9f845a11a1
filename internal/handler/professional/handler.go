package professional

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/service/professional"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
	"github.com/carelink/dispatch-api/pkg/httputil"
	"github.com/carelink/dispatch-api/pkg/validator"
)

type Handler struct {
	service *professional.Service
}

func NewHandler(service *professional.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	professionals := r.Group("/professionals")
	{
		professionals.GET("", h.ListProfessionals)
		professionals.GET("/:id", h.GetProfessional)
		professionals.PUT("/:id/location", h.UpdateLocation)
	}
}

// ListProfessionals returns the candidates eligible for a service, the
// same match the fan-out uses.
func (h *Handler) ListProfessionals(c *gin.Context) {
	skill := c.Query("skill")
	if skill == "" {
		httputil.RespondWithError(c, apperrors.Validation("skill query parameter is required", nil))
		return
	}

	professionals, err := h.service.MatchCandidates(c.Request.Context(), skill)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, professionals)
}

func (h *Handler) GetProfessional(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid professional ID", err))
		return
	}

	prof, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prof)
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid professional ID", err))
		return
	}

	var req model.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("malformed request body", err))
		return
	}
	if err := validator.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid location", err))
		return
	}

	if err := h.service.UpdateLocation(c.Request.Context(), id, req.Latitude, req.Longitude); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id})
}
