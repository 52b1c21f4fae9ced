package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/handler"
	"github.com/medportal/portal-api/internal/middleware"
	"github.com/medportal/portal-api/internal/model"
	appointmentService "github.com/medportal/portal-api/internal/service/appointment"
	apperrors "github.com/medportal/portal-api/pkg/errors"
)

const listingPath = "/api/v1/appointments"

type Handler struct {
	handler.BaseHandler
	service *appointmentService.Service
}

func NewHandler(service *appointmentService.Service, base handler.BaseHandler) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// RegisterRoutes wires the shared listing; booking and transitions are
// role-gated separately.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/appointments", h.List)
}

func (h *Handler) RegisterPatientRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments", h.Book)
}

func (h *Handler) RegisterDoctorRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments/:id/status", h.Transition)
}

// List shows the caller's appointments: history for patients, upcoming
// work for doctors. Any pending flash message rides along and is cleared.
func (h *Handler) List(c *gin.Context) {
	identity := middleware.Identity(c)

	items, err := h.service.List(c.Request.Context(), identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewListingResponse(items, h.PopFlash(c)))
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Validation("invalid booking request"))
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), middleware.Identity(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.FlashAndRedirect(c, "Appointment booked successfully!", listingPath, appointment)
}

func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.Validation("invalid appointment id"))
		return
	}

	var req model.TransitionRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Validation("invalid action specified"))
		return
	}

	appointment, err := h.service.Transition(c.Request.Context(), middleware.Identity(c), id, model.AppointmentAction(req.Action))
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.FlashAndRedirect(c,
		"Appointment status updated successfully to "+string(appointment.Status)+".",
		listingPath, appointment)
}
