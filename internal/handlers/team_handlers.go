package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

type TeamHandlers struct {
	members services.MemberService
}

func NewTeamHandlers(members services.MemberService) *TeamHandlers {
	return &TeamHandlers{members: members}
}

func (h *TeamHandlers) ListMembers(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	members, err := h.members.List(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServerError(c, "Failed to list members")
	}
	return c.JSON(http.StatusOK, members)
}

// InviteMember godoc
// @Summary   Create a member account in the caller's organization
// @Tags      team
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      services.InviteMemberRequest  true  "Member"
// @Success   201   {object}  models.Profile
// @Router    /team/members [post]
func (h *TeamHandlers) InviteMember(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	var req services.InviteMemberRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	member, err := h.members.Invite(c.Request().Context(), orgID, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *TeamHandlers) UpdateMember(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateMemberRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	member, err := h.members.Update(c.Request().Context(), orgID, id, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, member)
}

func (h *TeamHandlers) RemoveMember(c echo.Context) error {
	orgID, profile, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.members.Remove(c.Request().Context(), orgID, profile.ID, id); err != nil {
		return c.JSON(common.HTTPError(err).Code, common.Failed(err))
	}
	return c.JSON(http.StatusOK, common.Ok("member removed"))
}
