package services

import (
	"context"
	"strings"

	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type MemberService interface {
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.Profile, error)
	Invite(ctx context.Context, organizationID uuid.UUID, req *InviteMemberRequest) (*models.Profile, error)
	Update(ctx context.Context, organizationID, memberID uuid.UUID, req *UpdateMemberRequest) (*models.Profile, error)
	Remove(ctx context.Context, organizationID, actorID, memberID uuid.UUID) error
}

type memberService struct {
	profileRepo repositories.ProfileRepository
	accounts    AccountManager
	logger      *logrus.Logger
}

func NewMemberService(profileRepo repositories.ProfileRepository, accounts AccountManager) MemberService {
	return &memberService{profileRepo: profileRepo, accounts: accounts, logger: config.GetLogger()}
}

type InviteMemberRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required"`
	Role        string `json:"role" validate:"required"`
	CanViewReal bool   `json:"can_view_real"`
}

type UpdateMemberRequest struct {
	FullName    *string `json:"full_name"`
	Role        *string `json:"role"`
	CanViewReal *bool   `json:"can_view_real"`
}

func (s *memberService) List(ctx context.Context, organizationID uuid.UUID) ([]*models.Profile, error) {
	members, err := s.profileRepo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*models.Profile{}
	}
	return members, nil
}

// Invite creates the identity account and the member profile. The account is deleted
// again when the profile cannot be stored.
func (s *memberService) Invite(ctx context.Context, organizationID uuid.UUID, req *InviteMemberRequest) (*models.Profile, error) {
	if !models.ValidRole(req.Role) {
		return nil, common.Invalid("role must be admin or employee")
	}

	account, err := s.accounts.CreateAccount(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:             account.ID,
		OrganizationID: &organizationID,
		FullName:       account.FullName,
		Email:          account.Email,
		Role:           req.Role,
		CanViewReal:    req.CanViewReal || req.Role == models.RoleAdmin,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if delErr := s.accounts.DeleteAccount(context.WithoutCancel(ctx), account.ID); delErr != nil {
			config.LogError(s.logger, "team", "Invite", "compensation step failed", account.ID.String(), delErr)
		}
		return nil, translate(err, "member")
	}
	return profile, nil
}

func (s *memberService) get(ctx context.Context, organizationID, memberID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, translate(err, "member")
	}
	if profile.OrganizationID == nil || *profile.OrganizationID != organizationID {
		return nil, translate(repositories.ErrNotFound, "member")
	}
	return profile, nil
}

func (s *memberService) Update(ctx context.Context, organizationID, memberID uuid.UUID, req *UpdateMemberRequest) (*models.Profile, error) {
	profile, err := s.get(ctx, organizationID, memberID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, common.Invalid("full name is required")
		}
		profile.FullName = name
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, common.Invalid("role must be admin or employee")
		}
		profile.Role = *req.Role
	}
	if req.CanViewReal != nil {
		profile.CanViewReal = *req.CanViewReal
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, translate(err, "member")
	}
	return profile, nil
}

// Remove deletes the member profile and then its identity account. An identity that
// cannot be deleted is logged and left behind.
func (s *memberService) Remove(ctx context.Context, organizationID, actorID, memberID uuid.UUID) error {
	if actorID == memberID {
		return common.Invalid("you cannot remove yourself")
	}
	if _, err := s.get(ctx, organizationID, memberID); err != nil {
		return err
	}
	if err := s.profileRepo.Delete(ctx, organizationID, memberID); err != nil {
		return translate(err, "member")
	}
	// The profile is gone; finish the identity delete even if the caller goes away.
	if err := s.accounts.DeleteAccount(context.WithoutCancel(ctx), memberID); err != nil {
		config.LogError(s.logger, "team", "Remove", "orphaned identity account", memberID.String(), err)
	}
	return nil
}
