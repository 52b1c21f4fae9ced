package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/handler"
	"github.com/medportal/portal-api/internal/middleware"
	"github.com/medportal/portal-api/internal/model"
	prescriptionService "github.com/medportal/portal-api/internal/service/prescription"
	apperrors "github.com/medportal/portal-api/pkg/errors"
)

const listingPath = "/api/v1/appointments"

type Handler struct {
	handler.BaseHandler
	service *prescriptionService.Service
}

func NewHandler(service *prescriptionService.Service, base handler.BaseHandler) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// RegisterRoutes wires the read side; the view branches on the caller's
// role so patients see their copy and doctors their editable one.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/appointments/:id/prescription", h.Get)
}

func (h *Handler) RegisterDoctorRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments/:id/prescription", h.Save)
}

func (h *Handler) Save(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.Validation("invalid appointment id"))
		return
	}

	var req model.SavePrescriptionRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Validation("prescription text cannot be empty"))
		return
	}

	prescription, err := h.service.Save(c.Request.Context(), middleware.Identity(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.FlashAndRedirect(c, "Prescription saved successfully!", listingPath, prescription)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.Validation("invalid appointment id"))
		return
	}

	identity := middleware.Identity(c)

	if identity.IsDoctor() {
		prescription, err := h.service.GetForAppointment(c.Request.Context(), identity, id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(prescription))
		return
	}

	detail, err := h.service.GetForPatient(c.Request.Context(), identity, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}
