package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/dispatch-api/internal/model"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

type fakeRepo struct {
	createFn   func(ctx context.Context, req *model.Request, items []model.LineItemInput, docs []*model.RequestDocument) (*model.Request, error)
	acceptFn   func(ctx context.Context, requestID, professionalID int64) (*model.AcceptOutcome, error)
	denyFn     func(ctx context.Context, requestID, professionalID int64) (*model.DenyOutcome, error)
	completeFn func(ctx context.Context, requestID, professionalID int64) (*model.Request, error)
}

func (f *fakeRepo) CreateRequest(ctx context.Context, req *model.Request, items []model.LineItemInput, docs []*model.RequestDocument) (*model.Request, error) {
	return f.createFn(ctx, req, items, docs)
}

func (f *fakeRepo) AcceptRequest(ctx context.Context, requestID, professionalID int64) (*model.AcceptOutcome, error) {
	return f.acceptFn(ctx, requestID, professionalID)
}

func (f *fakeRepo) DenyRequest(ctx context.Context, requestID, professionalID int64) (*model.DenyOutcome, error) {
	return f.denyFn(ctx, requestID, professionalID)
}

func (f *fakeRepo) CompleteRequest(ctx context.Context, requestID, professionalID int64) (*model.Request, error) {
	return f.completeFn(ctx, requestID, professionalID)
}

func (f *fakeRepo) GetRequest(context.Context, int64) (*model.Request, error) { return nil, nil }
func (f *fakeRepo) ListRequests(context.Context) ([]*model.RequestSummary, error) {
	return nil, nil
}
func (f *fakeRepo) GetLineItems(context.Context, int64) ([]*model.LineItem, error) { return nil, nil }
func (f *fakeRepo) GetDocuments(context.Context, int64) ([]*model.RequestDocument, error) {
	return nil, nil
}
func (f *fakeRepo) GetAssignment(context.Context, int64, int64) (*model.Assignment, error) {
	return nil, nil
}
func (f *fakeRepo) ListAssignmentsByProfessional(context.Context, int64) ([]*model.Assignment, error) {
	return nil, nil
}

type fakeCatalog struct {
	serviceErr error
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*model.Service, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	return &model.Service{ID: id, Name: "Childcare"}, nil
}

func (f *fakeCatalog) ListServices(context.Context) ([]*model.Service, error) { return nil, nil }
func (f *fakeCatalog) GetOption(context.Context, int64) (*model.CareOption, error) {
	return nil, nil
}
func (f *fakeCatalog) ListOptions(context.Context, int64) ([]*model.CareOption, error) {
	return nil, nil
}

type fakeNotifier struct {
	notifyErr error

	notified        []string
	markedRead      []int64
	acceptanceMails []*model.AcceptanceEmail
	rejectionMails  []*model.RejectionEmail
}

func (f *fakeNotifier) NotifyRequestCreated(_ context.Context, _ *model.Request, serviceName string) error {
	f.notified = append(f.notified, serviceName)
	return f.notifyErr
}

func (f *fakeNotifier) MarkRequestNotificationRead(_ context.Context, requestID int64) error {
	f.markedRead = append(f.markedRead, requestID)
	return nil
}

func (f *fakeNotifier) SendAcceptanceEmail(_ context.Context, msg *model.AcceptanceEmail) error {
	f.acceptanceMails = append(f.acceptanceMails, msg)
	return nil
}

func (f *fakeNotifier) SendRejectionEmail(_ context.Context, msg *model.RejectionEmail) error {
	f.rejectionMails = append(f.rejectionMails, msg)
	return nil
}

func (f *fakeNotifier) List(context.Context) ([]*model.Notification, error)       { return nil, nil }
func (f *fakeNotifier) ListUnread(context.Context) ([]*model.Notification, error) { return nil, nil }
func (f *fakeNotifier) MarkRead(context.Context, int64) error                     { return nil }

type fakeStore struct {
	fail  bool
	calls int
}

func (f *fakeStore) Store(_ context.Context, _ []byte, _, originalName string) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("disk full")
	}
	return "uploads/" + originalName, nil
}

func newTestService(repo *fakeRepo, notifier *fakeNotifier, store *fakeStore) *Service {
	if notifier == nil {
		notifier = &fakeNotifier{}
	}
	if store == nil {
		store = &fakeStore{}
	}
	return NewService(repo, &fakeCatalog{}, notifier, store, NewMetrics(nil), zerolog.Nop())
}

func validInput() *model.CreateRequestInput {
	return &model.CreateRequestInput{
		ServiceID:         1,
		PatientFirstname:  "Jane",
		PatientLastname:   "Doe",
		PatientPhone:      "+33600000001",
		PatientEmail:      "jane@example.com",
		Address:           "12 Rue de la Paix, Paris",
		StartDate:         time.Now().Add(48 * time.Hour),
		AvailabilityStart: "08:00",
		AvailabilityEnd:   "12:00",
		Items:             []model.LineItemInput{{OptionID: 5}},
	}
}

func TestCreateRequest(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(_ context.Context, req *model.Request, items []model.LineItemInput, docs []*model.RequestDocument) (*model.Request, error) {
			assert.Len(t, items, 1)
			assert.Empty(t, docs)
			req.ID = 7
			req.Status = model.RequestStatusPending
			return req, nil
		},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	created, err := svc.CreateRequest(context.Background(), validInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, []string{"Childcare"}, notifier.notified)
}

func TestCreateRequestWindowTooShort(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(context.Context, *model.Request, []model.LineItemInput, []*model.RequestDocument) (*model.Request, error) {
			t.Fatal("repository must not be reached")
			return nil, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	input := validInput()
	input.AvailabilityStart = "08:00"
	input.AvailabilityEnd = "09:59"

	_, err := svc.CreateRequest(context.Background(), input, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateRequestWindowExactlyTwoHours(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(_ context.Context, req *model.Request, _ []model.LineItemInput, _ []*model.RequestDocument) (*model.Request, error) {
			return req, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	input := validInput()
	input.AvailabilityStart = "08:00"
	input.AvailabilityEnd = "10:00"

	_, err := svc.CreateRequest(context.Background(), input, nil)
	assert.NoError(t, err)
}

func TestCreateRequestMissingFields(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil, nil)

	input := validInput()
	input.PatientFirstname = ""

	_, err := svc.CreateRequest(context.Background(), input, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateRequestNotifierFailureSwallowed(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(_ context.Context, req *model.Request, _ []model.LineItemInput, _ []*model.RequestDocument) (*model.Request, error) {
			req.ID = 7
			return req, nil
		},
	}
	notifier := &fakeNotifier{notifyErr: errors.New("broker down")}
	svc := newTestService(repo, notifier, nil)

	created, err := svc.CreateRequest(context.Background(), validInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
}

func TestCreateRequestStoreFailureAborts(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(context.Context, *model.Request, []model.LineItemInput, []*model.RequestDocument) (*model.Request, error) {
			t.Fatal("repository must not be reached")
			return nil, nil
		},
	}
	store := &fakeStore{fail: true}
	svc := newTestService(repo, nil, store)

	uploads := []model.FileUpload{{OriginalName: "prescription.pdf", ContentType: "application/pdf", Data: []byte("x")}}
	_, err := svc.CreateRequest(context.Background(), validInput(), uploads)
	require.Error(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestCreateRequestAttachments(t *testing.T) {
	var gotDocs []*model.RequestDocument
	repo := &fakeRepo{
		createFn: func(_ context.Context, req *model.Request, _ []model.LineItemInput, docs []*model.RequestDocument) (*model.Request, error) {
			gotDocs = docs
			return req, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	uploads := []model.FileUpload{{OriginalName: "prescription.pdf", ContentType: "application/pdf", Data: []byte("x")}}
	_, err := svc.CreateRequest(context.Background(), validInput(), uploads)
	require.NoError(t, err)
	require.Len(t, gotDocs, 1)
	assert.Equal(t, "uploads/prescription.pdf", gotDocs[0].FilePath)
	assert.Equal(t, "application/pdf", gotDocs[0].MimeType)
}

func acceptOutcome(distance *float64, patientEmail string) *model.AcceptOutcome {
	return &model.AcceptOutcome{
		Request: &model.Request{
			ID:                7,
			PatientFirstname:  "Jane",
			PatientLastname:   "Doe",
			PatientEmail:      patientEmail,
			Address:           "12 Rue de la Paix, Paris",
			StartDate:         time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			AvailabilityStart: "08:00",
			AvailabilityEnd:   "12:00",
			TotalPrice:        45,
			Status:            model.RequestStatusAccepted,
		},
		ServiceName:  "Childcare",
		Professional: &model.Professional{ID: 3, Name: "Marie Curie", Skill: "Childcare"},
		Assignment:   &model.Assignment{ID: 11, RequestID: 7, ProfessionalID: 3, Status: model.AssignmentStatusAccepted, Distance: distance},
	}
}

func TestAcceptSendsEtaEmail(t *testing.T) {
	distance := 10.0
	repo := &fakeRepo{
		acceptFn: func(context.Context, int64, int64) (*model.AcceptOutcome, error) {
			return acceptOutcome(&distance, "jane@example.com"), nil
		},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	result, err := svc.Accept(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.RequestID)
	assert.Equal(t, []int64{7}, notifier.markedRead)

	require.Len(t, notifier.acceptanceMails, 1)
	mail := notifier.acceptanceMails[0]
	assert.Equal(t, "jane@example.com", mail.To)
	assert.Equal(t, "Jane Doe", mail.PatientName)
	assert.Equal(t, "Marie Curie", mail.ProfessionalName)
	assert.Equal(t, 20, mail.EstimatedMinutes)
	assert.Equal(t, "08:00 - 12:00", mail.Availability)
}

func TestAcceptWithoutPatientEmail(t *testing.T) {
	repo := &fakeRepo{
		acceptFn: func(context.Context, int64, int64) (*model.AcceptOutcome, error) {
			return acceptOutcome(nil, ""), nil
		},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	_, err := svc.Accept(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Empty(t, notifier.acceptanceMails)
	assert.Equal(t, []int64{7}, notifier.markedRead)
}

func TestAcceptConflict(t *testing.T) {
	repo := &fakeRepo{
		acceptFn: func(context.Context, int64, int64) (*model.AcceptOutcome, error) {
			return nil, apperrors.Conflict("request is no longer available", nil)
		},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	_, err := svc.Accept(context.Background(), 7, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Empty(t, notifier.markedRead)
	assert.Empty(t, notifier.acceptanceMails)
}

// The repository serializes concurrent accepts on the request row lock,
// so only the first caller sees a pending request. The fake mirrors that
// contract; the service must surface exactly one winner.
func TestAcceptConcurrentSingleWinner(t *testing.T) {
	var mu sync.Mutex
	resolved := false
	repo := &fakeRepo{
		acceptFn: func(_ context.Context, _, professionalID int64) (*model.AcceptOutcome, error) {
			mu.Lock()
			defer mu.Unlock()
			if resolved {
				return nil, apperrors.Conflict("request is no longer available", nil)
			}
			resolved = true
			return acceptOutcome(nil, ""), nil
		},
	}
	svc := newTestService(repo, &fakeNotifier{}, nil)

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(professionalID int64) {
			defer wg.Done()
			_, err := svc.Accept(context.Background(), 7, professionalID)
			errs <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	winners, conflicts := 0, 0
	for err := range errs {
		if err == nil {
			winners++
			continue
		}
		require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
		conflicts++
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, callers-1, conflicts)
}

func TestDenyWithoutRejection(t *testing.T) {
	repo := &fakeRepo{
		denyFn: func(context.Context, int64, int64) (*model.DenyOutcome, error) {
			return &model.DenyOutcome{
				Request:     &model.Request{ID: 7, PatientEmail: "jane@example.com", Status: model.RequestStatusPending},
				ServiceName: "Childcare",
				Rejected:    false,
			}, nil
		},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	result, err := svc.Deny(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ProfessionalID)
	assert.Empty(t, notifier.rejectionMails)
}

func TestDenyLastDenialMailsPatient(t *testing.T) {
	repo := &fakeRepo{
		denyFn: func(context.Context, int64, int64) (*model.DenyOutcome, error) {
			return &model.DenyOutcome{
				Request: &model.Request{
					ID:               7,
					PatientFirstname: "Jane",
					PatientLastname:  "Doe",
					PatientEmail:     "jane@example.com",
					Status:           model.RequestStatusRejected,
				},
				ServiceName: "Childcare",
				Rejected:    true,
			}, nil
		},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	_, err := svc.Deny(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, notifier.rejectionMails, 1)
	assert.Equal(t, "jane@example.com", notifier.rejectionMails[0].To)
	assert.Equal(t, "Childcare", notifier.rejectionMails[0].ServiceName)
}

func TestComplete(t *testing.T) {
	repo := &fakeRepo{
		completeFn: func(context.Context, int64, int64) (*model.Request, error) {
			return &model.Request{ID: 7, Status: model.RequestStatusDone}, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	result, err := svc.Complete(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, model.CompleteResult{RequestID: 7, Status: model.RequestStatusDone}, *result)
}

func TestCompleteNotWinner(t *testing.T) {
	repo := &fakeRepo{
		completeFn: func(context.Context, int64, int64) (*model.Request, error) {
			return nil, apperrors.Unauthorized("only the accepted professional can complete this request", nil)
		},
	}
	svc := newTestService(repo, nil, nil)

	_, err := svc.Complete(context.Background(), 7, 9)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestTimeToMinutes(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"8", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tc := range cases {
		got, err := timeToMinutes(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
