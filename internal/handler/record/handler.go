package record

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/handler"
	"github.com/medportal/portal-api/internal/middleware"
	recordService "github.com/medportal/portal-api/internal/service/record"
	apperrors "github.com/medportal/portal-api/pkg/errors"
)

const listingPath = "/api/v1/records"

type Handler struct {
	handler.BaseHandler
	service *recordService.Service
}

func NewHandler(service *recordService.Service, base handler.BaseHandler) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) RegisterPatientRoutes(rg *gin.RouterGroup, uploadLimit gin.HandlerFunc) {
	rg.POST("/records", uploadLimit, h.Upload)
	rg.GET("/records", h.List)
}

func (h *Handler) RegisterDoctorRoutes(rg *gin.RouterGroup) {
	rg.GET("/patients/:id", h.PatientDetail)
}

func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("medical_file")
	if err != nil {
		// MaxBytesReader trips here for oversized bodies before the
		// service sees the file at all.
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(apperrors.Validation("file is too large"))
			return
		}
		_ = c.Error(apperrors.Validation("no file was selected for upload"))
		return
	}
	defer file.Close()

	upload := &recordService.FileUpload{
		Name:   header.Filename,
		Size:   header.Size,
		Reader: file,
	}

	record, err := h.service.Upload(c.Request.Context(), middleware.Identity(c), upload, c.PostForm("description"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.FlashAndRedirect(c, "Medical record uploaded successfully!", listingPath, record)
}

func (h *Handler) List(c *gin.Context) {
	records, err := h.service.ListForPatient(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewListingResponse(records, h.PopFlash(c)))
}

func (h *Handler) PatientDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NotFoundOrUnauthorized("patient"))
		return
	}

	detail, err := h.service.PatientDetail(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}
