package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrxnomo/agendaun/internal/models"
	"github.com/astrxnomo/agendaun/internal/service"
	"github.com/astrxnomo/agendaun/pkg/response"
)

type etiquetteService interface {
	List(ctx context.Context, slug string) ([]models.Etiquette, error)
	Create(ctx context.Context, slug string, req service.EtiquetteRequest) (*models.Etiquette, error)
	Update(ctx context.Context, id string, req service.EtiquetteRequest) (*models.Etiquette, error)
	Delete(ctx context.Context, id string) error
}

// EtiquetteHandler manages the color labels of a calendar.
type EtiquetteHandler struct {
	service etiquetteService
}

// NewEtiquetteHandler constructs the handler.
func NewEtiquetteHandler(svc etiquetteService) *EtiquetteHandler {
	return &EtiquetteHandler{service: svc}
}

// List godoc
// @Summary List etiquettes of a calendar
// @Tags Etiquettes
// @Produce json
// @Param slug path string true "Calendar slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendars/{slug}/etiquettes [get]
func (h *EtiquetteHandler) List(c *gin.Context) {
	etiquettes, err := h.service.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, etiquettes, nil)
}

// Create godoc
// @Summary Create etiquette
// @Tags Etiquettes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Calendar slug"
// @Param payload body service.EtiquetteRequest true "Etiquette payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /calendars/{slug}/etiquettes [post]
func (h *EtiquetteHandler) Create(c *gin.Context) {
	var req service.EtiquetteRequest
	if !bindJSON(c, &req, "invalid etiquette payload") {
		return
	}

	etiquette, err := h.service.Create(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, etiquette)
}

// Update godoc
// @Summary Update etiquette
// @Tags Etiquettes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Etiquette ID"
// @Param payload body service.EtiquetteRequest true "Etiquette payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /etiquettes/{id} [put]
func (h *EtiquetteHandler) Update(c *gin.Context) {
	var req service.EtiquetteRequest
	if !bindJSON(c, &req, "invalid etiquette payload") {
		return
	}

	etiquette, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, etiquette, nil)
}

// Delete godoc
// @Summary Delete etiquette
// @Tags Etiquettes
// @Security BearerAuth
// @Param id path string true "Etiquette ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /etiquettes/{id} [delete]
func (h *EtiquetteHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
