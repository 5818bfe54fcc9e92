package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice/internal/common"
	"backoffice/internal/deprovision"
	"backoffice/internal/models"
	"backoffice/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrganizations struct {
	services.OrganizationService
	mock.Mock
}

func (m *mockOrganizations) Provision(ctx context.Context, req *services.ProvisionOrganizationRequest) (*models.Organization, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *mockOrganizations) Deprovision(ctx context.Context, id uuid.UUID) deprovision.Result {
	return m.Called(ctx, id).Get(0).(deprovision.Result)
}

func provisionBody(slug string) services.ProvisionOrganizationRequest {
	return services.ProvisionOrganizationRequest{
		Name: "Estudio Norte", Slug: slug,
		AdminEmail: "ana@norte.com", AdminPassword: "s3cret-pass", AdminName: "Ana",
	}
}

func TestOrganizationHandlers_Provision(t *testing.T) {
	orgs := &mockOrganizations{}
	e := newEcho()
	e.POST("/admin/organizations", NewOrganizationHandlers(orgs, nil).ProvisionOrganization)

	orgs.On("Provision", mock.Anything, mock.MatchedBy(func(r *services.ProvisionOrganizationRequest) bool { return r.Slug == "norte" })).
		Return(&models.Organization{ID: uuid.New(), Slug: "norte"}, nil)
	orgs.On("Provision", mock.Anything, mock.MatchedBy(func(r *services.ProvisionOrganizationRequest) bool { return r.Slug == "taken" })).
		Return(nil, fmt.Errorf("organization already exists: %w", common.ErrConflict))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/admin/organizations", provisionBody("norte")))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/admin/organizations", provisionBody("taken")))
	require.Equal(t, http.StatusConflict, rec.Code)
	var result common.ActionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "already exists")

	bad := provisionBody("x")
	bad.AdminPassword = "short"
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/admin/organizations", bad))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	orgs.AssertExpectations(t)
}

func TestOrganizationHandlers_Delete(t *testing.T) {
	orgs := &mockOrganizations{}
	e := newEcho()
	e.DELETE("/admin/organizations/:id", NewOrganizationHandlers(orgs, nil).DeleteOrganization)

	gone, stuck := uuid.New(), uuid.New()
	orgs.On("Deprovision", mock.Anything, gone).Return(deprovision.Result{Success: true, Message: "organization deleted"})
	orgs.On("Deprovision", mock.Anything, stuck).Return(deprovision.Result{
		Success: false,
		Message: "failed to delete transactions: connection reset",
		Steps:   []deprovision.StepResult{{Name: "transactions", Table: "transactions", Error: "connection reset"}},
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/organizations/"+gone.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/organizations/"+stuck.String(), nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var result deprovision.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "transactions", result.Steps[0].Table)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/organizations/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrganizationHandlers_DeleteRefusals(t *testing.T) {
	orgs := &mockOrganizations{}
	e := newEcho()
	e.DELETE("/admin/organizations/:id", NewOrganizationHandlers(orgs, nil).DeleteOrganization)

	unknown, busy := uuid.New(), uuid.New()
	orgs.On("Deprovision", mock.Anything, unknown).Return(deprovision.Result{
		Message: "failed to load organization: organization not found",
		Err:     fmt.Errorf("organization %w", common.ErrNotFound),
	})
	orgs.On("Deprovision", mock.Anything, busy).Return(deprovision.Result{
		Message: "deprovisioning already in progress",
		Err:     fmt.Errorf("%w: %w", deprovision.ErrInProgress, common.ErrConflict),
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/organizations/"+unknown.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/organizations/"+busy.String(), nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	var result deprovision.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "deprovisioning already in progress", result.Message)
}
