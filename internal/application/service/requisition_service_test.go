package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

type fakeRequisitionRepo struct {
	reqs   map[int64]*entity.Requisition
	nextID int64
}

func newFakeRequisitionRepo() *fakeRequisitionRepo {
	return &fakeRequisitionRepo{reqs: make(map[int64]*entity.Requisition)}
}

func (r *fakeRequisitionRepo) Create(ctx context.Context, req *entity.Requisition) error {
	r.nextID++
	req.ID = r.nextID
	r.reqs[req.ID] = req
	return nil
}

func (r *fakeRequisitionRepo) GetByID(ctx context.Context, id int64) (*entity.Requisition, error) {
	return r.reqs[id], nil
}

func (r *fakeRequisitionRepo) Update(ctx context.Context, req *entity.Requisition) error {
	r.reqs[req.ID] = req
	return nil
}

func (r *fakeRequisitionRepo) Delete(ctx context.Context, id int64) error {
	delete(r.reqs, id)
	return nil
}

func (r *fakeRequisitionRepo) List(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, error) {
	var out []*entity.Requisition
	for _, req := range r.reqs {
		out = append(out, req)
	}
	return out, nil
}

type fakeActivityLogRepo struct {
	entries []*entity.ActivityLogEntry
	nextID  int64
}

func (r *fakeActivityLogRepo) Create(ctx context.Context, log *entity.ActivityLogEntry) error {
	r.nextID++
	log.ID = r.nextID
	r.entries = append(r.entries, log)
	return nil
}

func (r *fakeActivityLogRepo) ListByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.ActivityLogEntry, error) {
	var out []*entity.ActivityLogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].RequisitionID == requisitionID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeActivityLogRepo) forRequisition(id int64) []*entity.ActivityLogEntry {
	var out []*entity.ActivityLogEntry
	for _, e := range r.entries {
		if e.RequisitionID == id {
			out = append(out, e)
		}
	}
	return out
}

type fakeUserRepo struct {
	users map[int64]*entity.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type requisitionFixture struct {
	service RequisitionService
	reqRepo *fakeRequisitionRepo
	logRepo *fakeActivityLogRepo
}

func newRequisitionFixture(t *testing.T, users ...*entity.User) *requisitionFixture {
	t.Helper()

	reqRepo := newFakeRequisitionRepo()
	logRepo := &fakeActivityLogRepo{}
	userRepo := &fakeUserRepo{users: make(map[int64]*entity.User)}
	for _, u := range users {
		userRepo.users[u.ID] = u
	}

	svc := NewRequisitionService(reqRepo, logRepo, userRepo, &mockTxManager{}, &mockLogger{})
	return &requisitionFixture{service: svc, reqRepo: reqRepo, logRepo: logRepo}
}

var testActor = entity.Actor{ID: 7, Name: "Dana Park", Role: "hiring_manager"}

func (f *requisitionFixture) createRequisition(t *testing.T) *entity.Requisition {
	t.Helper()

	req, err := f.service.Create(context.Background(), CreateRequisitionInput{
		Position:       "Backend Engineer",
		Grade:          "L3",
		EmploymentType: "full_time",
		WorkMode:       "hybrid",
		Priority:       "high",
		Status:         "open",
		PositionsCount: 2,
		CompanyID:      1,
		CompanyName:    "Acme Corp",
	}, testActor)
	require.NoError(t, err)
	return req
}

func TestRequisitionService_Create(t *testing.T) {
	f := newRequisitionFixture(t)

	req := f.createRequisition(t)

	assert.Equal(t, entity.RequisitionPending, req.ApprovalStatus)
	assert.Regexp(t, `^ACME-\d{3}-\d{3}$`, req.ReqID)

	entries := f.logRepo.forRequisition(req.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionCreatedRequisition, entries[0].Action)
	assert.Equal(t, "Requisition 'Backend Engineer' created by Dana Park", entries[0].Details)
	assert.Equal(t, testActor.ID, entries[0].UserID)
}

func TestRequisitionService_Create_RequiresActor(t *testing.T) {
	f := newRequisitionFixture(t)

	_, err := f.service.Create(context.Background(), CreateRequisitionInput{Position: "X"}, entity.Actor{})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestRequisitionService_Update_RecordsChangedFields(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	position := "Staff Engineer"
	priority := "critical"
	minSalary := decimal.NewFromInt(900000)
	_, err := f.service.Update(context.Background(), req.ID, UpdateRequisitionInput{
		Position:  &position,
		Priority:  &priority,
		MinSalary: &minSalary,
	}, testActor)
	require.NoError(t, err)

	entries := f.logRepo.forRequisition(req.ID)
	require.Len(t, entries, 2)

	update := entries[1]
	assert.Equal(t, ActionUpdatedRequisition, update.Action)
	parts := strings.Split(update.Details, "; ")
	assert.ElementsMatch(t, []string{
		"position changed from 'Backend Engineer' to 'Staff Engineer'",
		"priority changed from 'high' to 'critical'",
		"min_salary changed from '' to '900000'",
	}, parts)

	stored, _ := f.reqRepo.GetByID(context.Background(), req.ID)
	assert.Equal(t, "Staff Engineer", stored.Position)
	assert.Equal(t, "critical", stored.Priority)
	require.NotNil(t, stored.MinSalary)
	assert.True(t, stored.MinSalary.Equal(minSalary))
}

func TestRequisitionService_Update_NoOpWritesNothing(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	// Same values as already stored, plus untouched nil fields
	position := "Backend Engineer"
	count := 2
	_, err := f.service.Update(context.Background(), req.ID, UpdateRequisitionInput{
		Position:       &position,
		PositionsCount: &count,
	}, testActor)
	require.NoError(t, err)

	entries := f.logRepo.forRequisition(req.ID)
	assert.Len(t, entries, 1, "only the creation entry should exist")
}

func TestRequisitionService_Update_NotFound(t *testing.T) {
	f := newRequisitionFixture(t)

	position := "X"
	_, err := f.service.Update(context.Background(), 999, UpdateRequisitionInput{Position: &position}, testActor)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRequisitionService_SetApprovalStatus(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	updated, err := f.service.SetApprovalStatus(context.Background(), req.ID, entity.RequisitionApproved, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.RequisitionApproved, updated.ApprovalStatus)

	entries := f.logRepo.forRequisition(req.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionApprovalStatusUpdated, entries[1].Action)
	assert.Equal(t, "Changed from 'pending' to 'approved'", entries[1].Details)
}

func TestRequisitionService_SetApprovalStatus_LogsEvenWhenUnchanged(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	_, err := f.service.SetApprovalStatus(context.Background(), req.ID, entity.RequisitionPending, testActor)
	require.NoError(t, err)

	entries := f.logRepo.forRequisition(req.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, "Changed from 'pending' to 'pending'", entries[1].Details)
}

func TestRequisitionService_SetApprovalStatus_InvalidStatus(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	_, err := f.service.SetApprovalStatus(context.Background(), req.ID, entity.ApprovalStatus("escalated"), testActor)
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestRequisitionService_AssignRecruiter(t *testing.T) {
	recruiter := &entity.User{ID: 3, Name: "Rae Kim", Role: "recruiter"}
	f := newRequisitionFixture(t, recruiter)
	req := f.createRequisition(t)

	updated, err := f.service.AssignRecruiter(context.Background(), req.ID, recruiter.ID, testActor)
	require.NoError(t, err)
	require.NotNil(t, updated.RecruiterID)
	assert.Equal(t, recruiter.ID, *updated.RecruiterID)

	entries := f.logRepo.forRequisition(req.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionAssignedRecruiter, entries[1].Action)
	assert.Equal(t, "Recruiter ID 3 assigned by Dana Park", entries[1].Details)
}

func TestRequisitionService_AssignRecruiter_RejectsNonRecruiter(t *testing.T) {
	manager := &entity.User{ID: 9, Name: "Lee Chen", Role: "hiring_manager"}
	f := newRequisitionFixture(t, manager)
	req := f.createRequisition(t)

	_, err := f.service.AssignRecruiter(context.Background(), req.ID, manager.ID, testActor)
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	entries := f.logRepo.forRequisition(req.ID)
	assert.Len(t, entries, 1, "failed assignment must not be audited")
}

func TestRequisitionService_AssignRecruiter_UnknownUser(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	_, err := f.service.AssignRecruiter(context.Background(), req.ID, 404, testActor)
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestRequisitionService_Delete(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	require.NoError(t, f.service.Delete(context.Background(), req.ID))

	_, err := f.service.Get(context.Background(), req.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	err = f.service.Delete(context.Background(), req.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRequisitionService_ActivityLog_NewestFirst(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	_, err := f.service.SetApprovalStatus(context.Background(), req.ID, entity.RequisitionApproved, testActor)
	require.NoError(t, err)

	entries, err := f.service.ActivityLog(context.Background(), req.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionApprovalStatusUpdated, entries[0].Action)
	assert.Equal(t, ActionCreatedRequisition, entries[1].Action)
}

func TestRequisitionService_ActivityLog_UnknownRequisition(t *testing.T) {
	f := newRequisitionFixture(t)

	_, err := f.service.ActivityLog(context.Background(), 999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRequisitionService_LogActivity(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	entry, err := f.service.LogActivity(context.Background(), req.ID, testActor, "Interview Scheduled", "Panel round on Friday")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, "Interview Scheduled", entry.Action)

	entries := f.logRepo.forRequisition(req.ID)
	assert.Len(t, entries, 2)
}

func TestRequisitionService_LogActivity_Validation(t *testing.T) {
	f := newRequisitionFixture(t)
	req := f.createRequisition(t)

	_, err := f.service.LogActivity(context.Background(), req.ID, entity.Actor{}, "Something", "")
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	_, err = f.service.LogActivity(context.Background(), req.ID, testActor, "", "")
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestGenerateReqID(t *testing.T) {
	tests := []struct {
		company string
		prefix  string
	}{
		{"Acme Corp", "ACME-"},
		{"ZZ", "ZZ-"},
		{"", "REQ-"},
	}

	for _, tt := range tests {
		id := generateReqID(tt.company)
		assert.True(t, strings.HasPrefix(id, tt.prefix), "generateReqID(%q) = %q", tt.company, id)
	}
}
