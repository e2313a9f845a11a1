package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/dispatch-api/internal/model"
	dispatchsvc "github.com/carelink/dispatch-api/internal/service/dispatch"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
	"github.com/carelink/dispatch-api/pkg/httputil"
)

type fakeRepo struct {
	acceptErr error
	getErr    error
}

func (f *fakeRepo) CreateRequest(_ context.Context, req *model.Request, _ []model.LineItemInput, _ []*model.RequestDocument) (*model.Request, error) {
	req.ID = 7
	req.Status = model.RequestStatusPending
	return req, nil
}

func (f *fakeRepo) AcceptRequest(_ context.Context, requestID, professionalID int64) (*model.AcceptOutcome, error) {
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return &model.AcceptOutcome{
		Request:      &model.Request{ID: requestID, Status: model.RequestStatusAccepted},
		ServiceName:  "Childcare",
		Professional: &model.Professional{ID: professionalID},
		Assignment:   &model.Assignment{RequestID: requestID, ProfessionalID: professionalID},
	}, nil
}

func (f *fakeRepo) DenyRequest(_ context.Context, requestID, professionalID int64) (*model.DenyOutcome, error) {
	return &model.DenyOutcome{
		Request:     &model.Request{ID: requestID, Status: model.RequestStatusPending},
		ServiceName: "Childcare",
	}, nil
}

func (f *fakeRepo) CompleteRequest(_ context.Context, requestID, _ int64) (*model.Request, error) {
	return &model.Request{ID: requestID, Status: model.RequestStatusDone}, nil
}

func (f *fakeRepo) GetRequest(_ context.Context, id int64) (*model.Request, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &model.Request{ID: id, Status: model.RequestStatusPending}, nil
}

func (f *fakeRepo) ListRequests(context.Context) ([]*model.RequestSummary, error) {
	return []*model.RequestSummary{}, nil
}
func (f *fakeRepo) GetLineItems(context.Context, int64) ([]*model.LineItem, error) {
	return nil, nil
}
func (f *fakeRepo) GetDocuments(context.Context, int64) ([]*model.RequestDocument, error) {
	return nil, nil
}
func (f *fakeRepo) GetAssignment(context.Context, int64, int64) (*model.Assignment, error) {
	return nil, nil
}
func (f *fakeRepo) ListAssignmentsByProfessional(context.Context, int64) ([]*model.Assignment, error) {
	return nil, nil
}

type fakeCatalog struct{}

func (fakeCatalog) ListServices(context.Context) ([]*model.Service, error) { return nil, nil }
func (fakeCatalog) GetService(_ context.Context, id int64) (*model.Service, error) {
	return &model.Service{ID: id, Name: "Childcare"}, nil
}
func (fakeCatalog) GetOption(context.Context, int64) (*model.CareOption, error) { return nil, nil }
func (fakeCatalog) ListOptions(context.Context, int64) ([]*model.CareOption, error) {
	return nil, nil
}

type fakeNotifier struct{}

func (fakeNotifier) NotifyRequestCreated(context.Context, *model.Request, string) error { return nil }
func (fakeNotifier) MarkRequestNotificationRead(context.Context, int64) error           { return nil }
func (fakeNotifier) SendAcceptanceEmail(context.Context, *model.AcceptanceEmail) error  { return nil }
func (fakeNotifier) SendRejectionEmail(context.Context, *model.RejectionEmail) error    { return nil }
func (fakeNotifier) List(context.Context) ([]*model.Notification, error)                { return nil, nil }
func (fakeNotifier) ListUnread(context.Context) ([]*model.Notification, error)          { return nil, nil }
func (fakeNotifier) MarkRead(context.Context, int64) error                              { return nil }

type fakeStore struct{}

func (fakeStore) Store(_ context.Context, _ []byte, _, name string) (string, error) {
	return "uploads/" + name, nil
}

func newTestRouter(repo *fakeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := dispatchsvc.NewService(repo, fakeCatalog{}, fakeNotifier{}, fakeStore{}, dispatchsvc.NewMetrics(nil), zerolog.Nop())
	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, httputil.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestCreateRequestJSON(t *testing.T) {
	engine := newTestRouter(&fakeRepo{})

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"service_id":         1,
		"patient_firstname":  "Jane",
		"patient_lastname":   "Doe",
		"patient_phone":      "+33600000001",
		"address":            "12 Rue de la Paix, Paris",
		"start_date":         time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"availability_start": "08:00",
		"availability_end":   "12:00",
		"items":              []map[string]interface{}{{"option_id": 5}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
}

func TestCreateRequestShortWindow(t *testing.T) {
	engine := newTestRouter(&fakeRepo{})

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"service_id":         1,
		"patient_firstname":  "Jane",
		"patient_lastname":   "Doe",
		"patient_phone":      "+33600000001",
		"address":            "12 Rue de la Paix, Paris",
		"start_date":         time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"availability_start": "08:00",
		"availability_end":   "09:00",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.KindValidation), resp.Error.Kind)
}

func TestAcceptRequest(t *testing.T) {
	engine := newTestRouter(&fakeRepo{})

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/requests/7/accept", map[string]interface{}{
		"professional_id": 3,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestAcceptRequestConflict(t *testing.T) {
	repo := &fakeRepo{acceptErr: apperrors.Conflict("request is no longer available", nil)}
	engine := newTestRouter(repo)

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/requests/7/accept", map[string]interface{}{
		"professional_id": 3,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.KindConflict), resp.Error.Kind)
	assert.Equal(t, "request is no longer available", resp.Error.Message)
}

func TestAcceptRequestMissingProfessional(t *testing.T) {
	engine := newTestRouter(&fakeRepo{})

	w, _ := doJSON(t, engine, http.MethodPost, "/api/v1/requests/7/accept", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptRequestBadID(t *testing.T) {
	engine := newTestRouter(&fakeRepo{})

	w, _ := doJSON(t, engine, http.MethodPost, "/api/v1/requests/abc/accept", map[string]interface{}{
		"professional_id": 3,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRequestNotFound(t *testing.T) {
	repo := &fakeRepo{getErr: apperrors.NotFound("request", nil)}
	engine := newTestRouter(repo)

	w, resp := doJSON(t, engine, http.MethodGet, "/api/v1/requests/404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.KindNotFound), resp.Error.Kind)
}
