package dispatch

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/service/dispatch"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
	"github.com/carelink/dispatch-api/pkg/httputil"
)

type Handler struct {
	service *dispatch.Service
}

func NewHandler(service *dispatch.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.POST("/:id/accept", h.AcceptRequest)
		requests.POST("/:id/deny", h.DenyRequest)
		requests.POST("/:id/complete", h.CompleteRequest)
		requests.GET("/:id/assignments/:professionalID", h.GetAssignment)
	}
	r.GET("/professionals/:id/assignments", h.ListAssignments)
}

// CreateRequest accepts either a JSON body or a multipart form with a
// "payload" JSON part plus "prescriptions" file parts.
func (h *Handler) CreateRequest(c *gin.Context) {
	var input model.CreateRequestInput
	var uploads []model.FileUpload

	if form, err := c.MultipartForm(); err == nil {
		payload := form.Value["payload"]
		if len(payload) == 0 {
			httputil.RespondWithError(c, apperrors.Validation("missing payload part", nil))
			return
		}
		if err := json.Unmarshal([]byte(payload[0]), &input); err != nil {
			httputil.RespondWithError(c, apperrors.Validation("malformed payload", err))
			return
		}

		for _, fh := range form.File["prescriptions"] {
			f, err := fh.Open()
			if err != nil {
				httputil.RespondWithError(c, apperrors.Validation("unreadable attachment", err))
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				httputil.RespondWithError(c, apperrors.Validation("unreadable attachment", err))
				return
			}
			uploads = append(uploads, model.FileUpload{
				OriginalName: fh.Filename,
				ContentType:  fh.Header.Get("Content-Type"),
				Data:         data,
			})
		}
	} else if err := c.ShouldBindJSON(&input); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("malformed request body", err))
		return
	}

	request, err := h.service.CreateRequest(c.Request.Context(), &input, uploads)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, request)
}

func (h *Handler) GetRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	items, err := h.service.GetLineItems(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	docs, err := h.service.GetDocuments(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"request":   request,
		"items":     items,
		"documents": docs,
	})
}

func (h *Handler) ListRequests(c *gin.Context) {
	summaries, err := h.service.ListRequests(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, summaries)
}

type transitionRequest struct {
	ProfessionalID int64 `json:"professional_id" binding:"required"`
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body transitionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("professional_id is required", err))
		return
	}

	result, err := h.service.Accept(c.Request.Context(), id, body.ProfessionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) DenyRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body transitionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("professional_id is required", err))
		return
	}

	result, err := h.service.Deny(c.Request.Context(), id, body.ProfessionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) CompleteRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body transitionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("professional_id is required", err))
		return
	}

	result, err := h.service.Complete(c.Request.Context(), id, body.ProfessionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) GetAssignment(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	professionalID, ok := pathID(c, "professionalID")
	if !ok {
		return
	}

	assignment, err := h.service.GetAssignment(c.Request.Context(), requestID, professionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, assignment)
}

func (h *Handler) ListAssignments(c *gin.Context) {
	professionalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	assignments, err := h.service.ListAssignments(c.Request.Context(), professionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, assignments)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid "+name, err))
		return 0, false
	}
	return id, true
}
