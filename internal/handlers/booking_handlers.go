package handlers

import (
	"net/http"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

const defaultAppointmentWindow = 30 * 24 * time.Hour

type BookingHandlers struct {
	booking services.BookingService
	loc     *time.Location
}

func NewBookingHandlers(booking services.BookingService, loc *time.Location) *BookingHandlers {
	return &BookingHandlers{booking: booking, loc: loc}
}

func (h *BookingHandlers) ListServices(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	offered, err := h.booking.ListServices(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServerError(c, "Failed to list services")
	}
	return c.JSON(http.StatusOK, offered)
}

func (h *BookingHandlers) CreateService(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	var req services.ServiceRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	offered, err := h.booking.CreateService(c.Request().Context(), orgID, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, offered)
}

func (h *BookingHandlers) UpdateService(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req services.ServiceRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	offered, err := h.booking.UpdateService(c.Request().Context(), orgID, id, &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, offered)
}

func (h *BookingHandlers) DeleteService(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.booking.DeleteService(c.Request().Context(), orgID, id); err != nil {
		return common.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandlers) ListHours(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	hours, err := h.booking.ListHours(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServerError(c, "Failed to list working hours")
	}
	return c.JSON(http.StatusOK, hours)
}

type ReplaceHoursRequest struct {
	Hours []services.WorkingHoursRequest `json:"hours" validate:"dive"`
}

// ReplaceHours godoc
// @Summary   Replace the weekly working hours
// @Tags      booking
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body     ReplaceHoursRequest  true  "Weekly schedule"
// @Success   200   {array}  models.WorkingHours
// @Router    /booking/hours [put]
func (h *BookingHandlers) ReplaceHours(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	var req ReplaceHoursRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	hours, err := h.booking.ReplaceHours(c.Request().Context(), orgID, req.Hours)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, hours)
}

func (h *BookingHandlers) ListAppointments(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	from, to, err := dateRange(c, h.loc)
	if err != nil {
		return err
	}
	if from == nil {
		now := time.Now().In(h.loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
		from = &today
	}
	if to == nil {
		end := from.Add(defaultAppointmentWindow)
		to = &end
	}

	appointments, err := h.booking.ListAppointments(c.Request().Context(), orgID, *from, *to)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, appointments)
}

type AppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *BookingHandlers) UpdateAppointmentStatus(c echo.Context) error {
	orgID, _, err := tenant(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AppointmentStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if err := h.booking.UpdateAppointmentStatus(c.Request().Context(), orgID, id, req.Status); err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, common.Ok("appointment updated"))
}

// PublicPage godoc
// @Summary   Branding and active services of a booking page
// @Tags      public
// @Produce   json
// @Param     slug  path      string  true  "Organization slug"
// @Success   200   {object}  models.PublicOrganization
// @Failure   404   {object}  common.ErrorResponse
// @Router    /public/{slug} [get]
func (h *BookingHandlers) PublicPage(c echo.Context) error {
	page, err := h.booking.PublicPage(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// Availability godoc
// @Summary   Free slots for a service on a day
// @Tags      public
// @Produce   json
// @Param     slug        path   string  true  "Organization slug"
// @Param     date        query  string  true  "YYYY-MM-DD"
// @Param     service_id  query  string  true  "Service ID"
// @Success   200  {array}  booking.Slot
// @Router    /public/{slug}/availability [get]
func (h *BookingHandlers) Availability(c echo.Context) error {
	serviceID, err := common.ValidateUUID(c.QueryParam("service_id"), "service_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slots, err := h.booking.Availability(c.Request().Context(), c.Param("slug"), c.QueryParam("date"), serviceID)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

// Book godoc
// @Summary   Request an appointment
// @Tags      public
// @Accept    json
// @Produce   json
// @Param     slug  path      string                             true  "Organization slug"
// @Param     body  body      services.PublicAppointmentRequest  true  "Appointment"
// @Success   201   {object}  models.Appointment
// @Failure   409   {object}  common.ErrorResponse
// @Router    /public/{slug}/appointments [post]
func (h *BookingHandlers) Book(c echo.Context) error {
	var req services.PublicAppointmentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	appointment, err := h.booking.Book(c.Request().Context(), c.Param("slug"), &req)
	if err != nil {
		return common.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, appointment)
}
