package services

import (
	"context"
	"errors"
	"testing"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MemberServiceTestSuite struct {
	suite.Suite
	profileRepo *MockProfileRepository
	accounts    *MockAccountManager
	service     MemberService
	orgID       uuid.UUID
}

func (suite *MemberServiceTestSuite) SetupTest() {
	suite.profileRepo = &MockProfileRepository{}
	suite.accounts = &MockAccountManager{}
	suite.service = NewMemberService(suite.profileRepo, suite.accounts)
	suite.orgID = uuid.New()
}

func (suite *MemberServiceTestSuite) TearDownTest() {
	suite.profileRepo.AssertExpectations(suite.T())
	suite.accounts.AssertExpectations(suite.T())
}

func TestMemberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MemberServiceTestSuite))
}

func (suite *MemberServiceTestSuite) member(role string) *models.Profile {
	return &models.Profile{ID: uuid.New(), OrganizationID: &suite.orgID, FullName: "Eva", Role: role}
}

func (suite *MemberServiceTestSuite) TestList_EmptyIsNotNil() {
	ctx := context.Background()
	suite.profileRepo.On("ListByOrganization", ctx, suite.orgID).Return(nil, nil)

	members, err := suite.service.List(ctx, suite.orgID)
	suite.NoError(err)
	suite.NotNil(members)
	suite.Empty(members)
}

func (suite *MemberServiceTestSuite) TestInvite_EmployeeKeepsRequestedCapability() {
	ctx := context.Background()
	account := &models.Account{ID: uuid.New(), Email: "eva@norte.com", FullName: "Eva"}
	req := &InviteMemberRequest{Email: "eva@norte.com", Password: "password1", FullName: "Eva", Role: models.RoleEmployee}

	suite.accounts.On("CreateAccount", ctx, req.Email, req.Password, req.FullName).Return(account, nil)
	suite.profileRepo.On("Create", ctx, mock.AnythingOfType("*models.Profile")).Return(nil)

	profile, err := suite.service.Invite(ctx, suite.orgID, req)
	suite.Require().NoError(err)
	suite.Equal(account.ID, profile.ID)
	suite.Equal(suite.orgID, *profile.OrganizationID)
	suite.False(profile.CanViewReal)
}

func (suite *MemberServiceTestSuite) TestInvite_AdminAlwaysSeesReal() {
	ctx := context.Background()
	account := &models.Account{ID: uuid.New(), Email: "jefe@norte.com", FullName: "Jefe"}
	req := &InviteMemberRequest{Email: "jefe@norte.com", Password: "password1", FullName: "Jefe", Role: models.RoleAdmin}

	suite.accounts.On("CreateAccount", ctx, req.Email, req.Password, req.FullName).Return(account, nil)
	suite.profileRepo.On("Create", ctx, mock.AnythingOfType("*models.Profile")).Return(nil)

	profile, err := suite.service.Invite(ctx, suite.orgID, req)
	suite.Require().NoError(err)
	suite.True(profile.CanViewReal)
}

func (suite *MemberServiceTestSuite) TestInvite_ProfileFailureDeletesAccount() {
	ctx := context.Background()
	account := &models.Account{ID: uuid.New(), Email: "eva@norte.com", FullName: "Eva"}
	req := &InviteMemberRequest{Email: "eva@norte.com", Password: "password1", FullName: "Eva", Role: models.RoleEmployee}

	suite.accounts.On("CreateAccount", ctx, req.Email, req.Password, req.FullName).Return(account, nil)
	suite.profileRepo.On("Create", ctx, mock.AnythingOfType("*models.Profile")).Return(repositories.ErrConflict)
	suite.accounts.On("DeleteAccount", mock.Anything, account.ID).Return(nil)

	_, err := suite.service.Invite(ctx, suite.orgID, req)
	suite.ErrorIs(err, common.ErrConflict)
}

func (suite *MemberServiceTestSuite) TestInvite_RejectsUnknownRole() {
	_, err := suite.service.Invite(context.Background(), suite.orgID, &InviteMemberRequest{Role: models.RoleSuperadmin})
	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *MemberServiceTestSuite) TestUpdate_GrantsRealView() {
	ctx := context.Background()
	member := suite.member(models.RoleEmployee)
	grant := true

	suite.profileRepo.On("GetByID", ctx, member.ID).Return(member, nil)
	suite.profileRepo.On("Update", ctx, member).Return(nil)

	updated, err := suite.service.Update(ctx, suite.orgID, member.ID, &UpdateMemberRequest{CanViewReal: &grant})
	suite.NoError(err)
	suite.True(updated.CanViewReal)
}

func (suite *MemberServiceTestSuite) TestUpdate_OtherOrganizationIsNotFound() {
	ctx := context.Background()
	other := uuid.New()
	member := &models.Profile{ID: uuid.New(), OrganizationID: &other, Role: models.RoleEmployee}

	suite.profileRepo.On("GetByID", ctx, member.ID).Return(member, nil)

	_, err := suite.service.Update(ctx, suite.orgID, member.ID, &UpdateMemberRequest{})
	suite.ErrorIs(err, common.ErrNotFound)
}

func (suite *MemberServiceTestSuite) TestRemove_Self() {
	actor := uuid.New()
	err := suite.service.Remove(context.Background(), suite.orgID, actor, actor)
	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *MemberServiceTestSuite) TestRemove_IdentityFailureIsNotFatal() {
	ctx := context.Background()
	member := suite.member(models.RoleEmployee)

	suite.profileRepo.On("GetByID", ctx, member.ID).Return(member, nil)
	suite.profileRepo.On("Delete", ctx, suite.orgID, member.ID).Return(nil)
	suite.accounts.On("DeleteAccount", mock.Anything, member.ID).Return(errors.New("identity down"))

	assert.NoError(suite.T(), suite.service.Remove(ctx, suite.orgID, uuid.New(), member.ID))
}

func (suite *MemberServiceTestSuite) TestRemove_CancelledCallerStillDeletesIdentity() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	member := suite.member(models.RoleEmployee)

	suite.profileRepo.On("GetByID", ctx, member.ID).Return(member, nil)
	suite.profileRepo.On("Delete", ctx, suite.orgID, member.ID).Run(func(mock.Arguments) { cancel() }).Return(nil)
	suite.accounts.On("DeleteAccount", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), member.ID).Return(nil).Once()

	suite.NoError(suite.service.Remove(ctx, suite.orgID, uuid.New(), member.ID))
	suite.accounts.AssertExpectations(suite.T())
}
