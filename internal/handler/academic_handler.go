package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrxnomo/agendaun/internal/models"
	"github.com/astrxnomo/agendaun/internal/service"
	"github.com/astrxnomo/agendaun/pkg/response"
)

type academicService interface {
	ListSedes(ctx context.Context) ([]models.Sede, error)
	ListFacultades(ctx context.Context, sedeID string) ([]models.Facultad, error)
	ListProgramas(ctx context.Context, facultadID string) ([]models.Programa, error)
	CreateSede(ctx context.Context, req service.CreateScopeRequest) (*models.Sede, error)
	CreateFacultad(ctx context.Context, req service.CreateScopeRequest) (*models.Facultad, error)
	CreatePrograma(ctx context.Context, req service.CreateScopeRequest) (*models.Programa, error)
	Delete(ctx context.Context, tier models.ScopeTier, id string) error
	Hierarchy(ctx context.Context) (*models.AcademicHierarchy, error)
}

// AcademicHandler exposes the Sede -> Facultad -> Programa hierarchy.
type AcademicHandler struct {
	service academicService
}

// NewAcademicHandler constructs the handler.
func NewAcademicHandler(svc academicService) *AcademicHandler {
	return &AcademicHandler{service: svc}
}

// Hierarchy godoc
// @Summary Full academic hierarchy
// @Tags Academic
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic/hierarchy [get]
func (h *AcademicHandler) Hierarchy(c *gin.Context) {
	hierarchy, err := h.service.Hierarchy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hierarchy, nil)
}

// ListSedes godoc
// @Summary List sedes
// @Tags Academic
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sedes [get]
func (h *AcademicHandler) ListSedes(c *gin.Context) {
	sedes, err := h.service.ListSedes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sedes, nil)
}

// ListFacultades godoc
// @Summary List facultades of a sede
// @Tags Academic
// @Produce json
// @Param id path string true "Sede ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sedes/{id}/facultades [get]
func (h *AcademicHandler) ListFacultades(c *gin.Context) {
	facultades, err := h.service.ListFacultades(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facultades, nil)
}

// ListProgramas godoc
// @Summary List programas of a facultad
// @Tags Academic
// @Produce json
// @Param id path string true "Facultad ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /facultades/{id}/programas [get]
func (h *AcademicHandler) ListProgramas(c *gin.Context) {
	programas, err := h.service.ListProgramas(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programas, nil)
}

// CreateSede godoc
// @Summary Create sede
// @Tags Academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateScopeRequest true "Sede payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sedes [post]
func (h *AcademicHandler) CreateSede(c *gin.Context) {
	var req service.CreateScopeRequest
	if !bindJSON(c, &req, "invalid sede payload") {
		return
	}
	sede, err := h.service.CreateSede(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sede)
}

// CreateFacultad godoc
// @Summary Create facultad under a sede
// @Tags Academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sede ID"
// @Param payload body service.CreateScopeRequest true "Facultad payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sedes/{id}/facultades [post]
func (h *AcademicHandler) CreateFacultad(c *gin.Context) {
	var req service.CreateScopeRequest
	if !bindJSON(c, &req, "invalid facultad payload") {
		return
	}
	req.ParentID = c.Param("id")
	facultad, err := h.service.CreateFacultad(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, facultad)
}

// CreatePrograma godoc
// @Summary Create programa under a facultad
// @Tags Academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Facultad ID"
// @Param payload body service.CreateScopeRequest true "Programa payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /facultades/{id}/programas [post]
func (h *AcademicHandler) CreatePrograma(c *gin.Context) {
	var req service.CreateScopeRequest
	if !bindJSON(c, &req, "invalid programa payload") {
		return
	}
	req.ParentID = c.Param("id")
	programa, err := h.service.CreatePrograma(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, programa)
}

// DeleteSede godoc
// @Summary Delete sede
// @Tags Academic
// @Security BearerAuth
// @Param id path string true "Sede ID"
// @Success 204
// @Router /sedes/{id} [delete]
func (h *AcademicHandler) DeleteSede(c *gin.Context) {
	h.delete(c, models.TierSede)
}

// DeleteFacultad godoc
// @Summary Delete facultad
// @Tags Academic
// @Security BearerAuth
// @Param id path string true "Facultad ID"
// @Success 204
// @Router /facultades/{id} [delete]
func (h *AcademicHandler) DeleteFacultad(c *gin.Context) {
	h.delete(c, models.TierFacultad)
}

// DeletePrograma godoc
// @Summary Delete programa
// @Tags Academic
// @Security BearerAuth
// @Param id path string true "Programa ID"
// @Success 204
// @Router /programas/{id} [delete]
func (h *AcademicHandler) DeletePrograma(c *gin.Context) {
	h.delete(c, models.TierPrograma)
}

func (h *AcademicHandler) delete(c *gin.Context, tier models.ScopeTier) {
	if err := h.service.Delete(c.Request.Context(), tier, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
