package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/application/service"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
	"github.com/hireflowhq/hireflow/internal/domain/workflow"
)

type stubOfferService struct {
	createFunc          func(ctx context.Context, input service.CreateOfferInput) (*entity.Offer, error)
	submitFunc          func(ctx context.Context, offerID, country string) (*service.SubmitResult, error)
	recordApprovalFunc  func(ctx context.Context, offerID, role string, approverID int64, action, comment string) (*entity.Offer, error)
	generateLetterFunc  func(ctx context.Context, offerID string) error
	candidateActionFunc func(ctx context.Context, offerID, action string, counterBase *decimal.Decimal, counterNote string) (*entity.Offer, error)
	getFunc             func(ctx context.Context, offerID string) (*service.OfferView, error)
}

func (s *stubOfferService) Create(ctx context.Context, input service.CreateOfferInput) (*entity.Offer, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, input)
	}
	return &entity.Offer{OfferID: "test-offer", Status: entity.OfferDraft}, nil
}

func (s *stubOfferService) SubmitForApproval(ctx context.Context, offerID, country string) (*service.SubmitResult, error) {
	if s.submitFunc != nil {
		return s.submitFunc(ctx, offerID, country)
	}
	return &service.SubmitResult{Roles: []string{"hr"}}, nil
}

func (s *stubOfferService) RecordApproval(ctx context.Context, offerID, role string, approverID int64, action, comment string) (*entity.Offer, error) {
	if s.recordApprovalFunc != nil {
		return s.recordApprovalFunc(ctx, offerID, role, approverID, action, comment)
	}
	return &entity.Offer{OfferID: offerID, Status: entity.OfferPendingApproval}, nil
}

func (s *stubOfferService) GenerateLetter(ctx context.Context, offerID string) error {
	if s.generateLetterFunc != nil {
		return s.generateLetterFunc(ctx, offerID)
	}
	return nil
}

func (s *stubOfferService) MarkLetterGenerated(ctx context.Context, offerID, letterPath string) error {
	return nil
}

func (s *stubOfferService) CandidateAction(ctx context.Context, offerID, action string, counterBase *decimal.Decimal, counterNote string) (*entity.Offer, error) {
	if s.candidateActionFunc != nil {
		return s.candidateActionFunc(ctx, offerID, action, counterBase, counterNote)
	}
	return &entity.Offer{OfferID: offerID}, nil
}

func (s *stubOfferService) Get(ctx context.Context, offerID string) (*service.OfferView, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, offerID)
	}
	return &service.OfferView{Offer: &entity.Offer{OfferID: offerID}}, nil
}

func (s *stubOfferService) List(ctx context.Context, status, candidateID string) ([]*service.OfferView, error) {
	return nil, nil
}

func (s *stubOfferService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

type stubRequisitionService struct {
	createFunc func(ctx context.Context, input service.CreateRequisitionInput, actor entity.Actor) (*entity.Requisition, error)
	listFunc   func(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, error)
	getFunc    func(ctx context.Context, id int64) (*entity.Requisition, error)
}

func (s *stubRequisitionService) Create(ctx context.Context, input service.CreateRequisitionInput, actor entity.Actor) (*entity.Requisition, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, input, actor)
	}
	return &entity.Requisition{ID: 1, Position: input.Position}, nil
}

func (s *stubRequisitionService) Get(ctx context.Context, id int64) (*entity.Requisition, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, id)
	}
	return &entity.Requisition{ID: id}, nil
}

func (s *stubRequisitionService) List(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, filter)
	}
	return nil, nil
}

func (s *stubRequisitionService) Update(ctx context.Context, id int64, input service.UpdateRequisitionInput, actor entity.Actor) (*entity.Requisition, error) {
	return &entity.Requisition{ID: id}, nil
}

func (s *stubRequisitionService) SetApprovalStatus(ctx context.Context, id int64, status entity.ApprovalStatus, actor entity.Actor) (*entity.Requisition, error) {
	return &entity.Requisition{ID: id, ApprovalStatus: status}, nil
}

func (s *stubRequisitionService) AssignRecruiter(ctx context.Context, id int64, recruiterID int64, actor entity.Actor) (*entity.Requisition, error) {
	return &entity.Requisition{ID: id, RecruiterID: &recruiterID}, nil
}

func (s *stubRequisitionService) Delete(ctx context.Context, id int64) error {
	return nil
}

func (s *stubRequisitionService) ActivityLog(ctx context.Context, id int64) ([]*entity.ActivityLogEntry, error) {
	return nil, nil
}

func (s *stubRequisitionService) LogActivity(ctx context.Context, id int64, actor entity.Actor, action, details string) (*entity.ActivityLogEntry, error) {
	return &entity.ActivityLogEntry{ID: 1, RequisitionID: id, Action: action}, nil
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestServer(offerSvc service.OfferService, reqSvc service.RequisitionService) *Server {
	if offerSvc == nil {
		offerSvc = &stubOfferService{}
	}
	if reqSvc == nil {
		reqSvc = &stubRequisitionService{}
	}
	return NewServer(DefaultServerConfig(), offerSvc, reqSvc, noopLogger{})
}

func doRequest(s *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func asActor(id int64, name, role string) map[string]string {
	return map[string]string{
		"X-User-ID":   fmt.Sprintf("%d", id),
		"X-User-Name": name,
		"X-User-Role": role,
	}
}

func TestHealthCheck(t *testing.T) {
	w := doRequest(newTestServer(nil, nil), http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingIdentityRejected(t *testing.T) {
	s := newTestServer(nil, nil)

	w := doRequest(s, http.MethodGet, "/api/v1/offers", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A name without an ID or role is still anonymous
	w = doRequest(s, http.MethodGet, "/api/v1/offers", nil, map[string]string{"X-User-Name": "ghost"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPolicyGates(t *testing.T) {
	s := newTestServer(nil, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		role   string
		want   int
	}{
		{"hr cannot create offers", http.MethodPost, "/api/v1/offers", CreateOfferRequest{
			RequisitionID: 1, CandidateID: "c1", Grade: "L2", Base: decimal.NewFromInt(100),
		}, "hr", http.StatusForbidden},
		{"recruiter creates offers", http.MethodPost, "/api/v1/offers", CreateOfferRequest{
			RequisitionID: 1, CandidateID: "c1", Grade: "L2", Base: decimal.NewFromInt(100),
		}, "recruiter", http.StatusCreated},
		{"recruiter cannot approve", http.MethodPost, "/api/v1/offers/x/approval", RecordApprovalRequest{
			Role: "hr", Action: "APPROVED",
		}, "recruiter", http.StatusForbidden},
		{"finance approves", http.MethodPost, "/api/v1/offers/x/approval", RecordApprovalRequest{
			Role: "finance", Action: "APPROVED",
		}, "finance", http.StatusOK},
		{"recruiter cannot delete requisitions", http.MethodDelete, "/api/v1/requisitions/1", nil,
			"recruiter", http.StatusForbidden},
		{"admin deletes requisitions", http.MethodDelete, "/api/v1/requisitions/1", nil,
			"admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, tt.method, tt.path, tt.body, asActor(7, "Test User", tt.role))
			assert.Equal(t, tt.want, w.Code, "body: %s", w.Body.String())
		})
	}
}

func TestErrorMapping(t *testing.T) {
	offerSvc := &stubOfferService{
		getFunc: func(ctx context.Context, offerID string) (*service.OfferView, error) {
			return nil, fmt.Errorf("offer %s: %w", offerID, entity.ErrNotFound)
		},
		submitFunc: func(ctx context.Context, offerID, country string) (*service.SubmitResult, error) {
			return nil, fmt.Errorf("submit: %w", workflow.ErrInvalidTransition)
		},
		candidateActionFunc: func(ctx context.Context, offerID, action string, counterBase *decimal.Decimal, counterNote string) (*entity.Offer, error) {
			return nil, fmt.Errorf("action: %w", entity.ErrInvalidArgument)
		},
	}
	s := newTestServer(offerSvc, nil)
	headers := asActor(7, "Test User", "admin")

	w := doRequest(s, http.MethodGet, "/api/v1/offers/missing", nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/offers/x/submit", SubmitOfferRequest{Country: "IN"}, headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/offers/x/action", CandidateActionRequest{Action: "COUNTER"}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOffer_InvalidBody(t *testing.T) {
	s := newTestServer(nil, nil)

	// Missing required candidate_id
	w := doRequest(s, http.MethodPost, "/api/v1/offers", map[string]interface{}{
		"requisition_id": 1, "grade": "L2", "base": "100",
	}, asActor(7, "Test User", "recruiter"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateLetter_Queued(t *testing.T) {
	s := newTestServer(nil, nil)

	w := doRequest(s, http.MethodPost, "/api/v1/offers/x/letter", nil, asActor(7, "Test User", "hiring_manager"))
	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestListRequisitions_FilterDefaults(t *testing.T) {
	var captured port.RequisitionFilter
	reqSvc := &stubRequisitionService{
		listFunc: func(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, error) {
			captured = filter
			return nil, nil
		},
	}
	s := newTestServer(nil, reqSvc)

	w := doRequest(s, http.MethodGet, "/api/v1/requisitions", nil, asActor(3, "Rae Kim", "recruiter"))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "recruiter", captured.Role)
	assert.Equal(t, int64(3), captured.UserID)
	assert.Equal(t, "approved", captured.ApprovalStatus)
	assert.Equal(t, 10, captured.Limit)

	w = doRequest(s, http.MethodGet, "/api/v1/requisitions?approval_status=all&limit=50&offset=20", nil,
		asActor(7, "Dana Park", "hiring_manager"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", captured.ApprovalStatus)
	assert.Equal(t, 50, captured.Limit)
	assert.Equal(t, 20, captured.Offset)
}

func TestRequisitionInvalidID(t *testing.T) {
	s := newTestServer(nil, nil)

	w := doRequest(s, http.MethodGet, "/api/v1/requisitions/abc", nil, asActor(7, "Test User", "admin"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordApproval_UsesCallerID(t *testing.T) {
	var capturedApprover int64
	offerSvc := &stubOfferService{
		recordApprovalFunc: func(ctx context.Context, offerID, role string, approverID int64, action, comment string) (*entity.Offer, error) {
			capturedApprover = approverID
			return &entity.Offer{OfferID: offerID}, nil
		},
	}
	s := newTestServer(offerSvc, nil)

	w := doRequest(s, http.MethodPost, "/api/v1/offers/x/approval",
		RecordApprovalRequest{Role: "hr", Action: "APPROVED"}, asActor(42, "Hana Sato", "hr"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), capturedApprover)
}
