package handler

import (
	"net/http"

	"comptabilite/internal/middleware"
	"comptabilite/internal/model"
	"comptabilite/internal/service"
	"comptabilite/pkg/response"

	"github.com/gin-gonic/gin"
)

type SectionHandler struct {
	sectionService service.SectionService
}

// NewSectionHandler sets up the routing dependencies for Section endpoints
func NewSectionHandler(sectionService service.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: sectionService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *SectionHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	admin := middleware.RequireRole(model.RoleAdmin)

	section := router.Group("/section", authn)
	{
		section.GET("/all", h.List)
		section.GET("/:id", h.Get)

		section.POST("/add", admin, h.Create)
		section.PUT("/:id", admin, h.Update)
		section.DELETE("/:id", admin, h.Delete)
	}
}

// List handles GET /section/all
// @Summary      List sections
// @Tags         section
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]service.SectionResponse}
// @Router       /section/all [get]
func (h *SectionHandler) List(c *gin.Context) {
	rows, err := h.sectionService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, response.OK(rows))
}

// Get handles GET /section/:id
// @Summary      Get section by id
// @Tags         section
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Section ID"
// @Success      200  {object}  response.Envelope{data=service.SectionResponse}
// @Failure      404  {object}  response.Envelope
// @Router       /section/{id} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	section, err := h.sectionService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(section))
}

// Create handles POST /section/add
// @Summary      Create section
// @Tags         section
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SectionRequest  true  "Section Payload"
// @Success      201      {object}  response.Envelope{data=service.SectionResponse}
// @Failure      400      {object}  response.Envelope
// @Router       /section/add [post]
func (h *SectionHandler) Create(c *gin.Context) {
	var req service.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("label, unit and type are required"))
		return
	}

	created, err := h.sectionService.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OK(created))
}

// Update handles PUT /section/:id
// @Summary      Update section
// @Tags         section
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                     true  "Section ID"
// @Param        payload  body      service.SectionRequest  true  "Section Payload"
// @Success      200      {object}  response.Envelope{data=service.SectionResponse}
// @Failure      400      {object}  response.Envelope
// @Failure      404      {object}  response.Envelope
// @Router       /section/{id} [put]
func (h *SectionHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req service.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("label, unit and type are required"))
		return
	}

	updated, err := h.sectionService.Update(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(updated))
}

// Delete handles DELETE /section/:id. Assignments referencing the
// section are removed with it.
// @Summary      Delete section
// @Tags         section
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Section ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /section/{id} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.sectionService.Delete(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Msg("section supprimée avec succès"))
}
