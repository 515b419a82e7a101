package handler

import (
	"net/http"

	"comptabilite/internal/middleware"
	"comptabilite/internal/model"
	"comptabilite/internal/service"
	"comptabilite/pkg/response"

	"github.com/gin-gonic/gin"
)

type PersonnelHandler struct {
	personnelService service.PersonnelService
	sectionService   service.SectionService
}

// NewPersonnelHandler sets up the routing dependencies for Personnel endpoints
func NewPersonnelHandler(personnelService service.PersonnelService, sectionService service.SectionService) *PersonnelHandler {
	return &PersonnelHandler{personnelService: personnelService, sectionService: sectionService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup. Reads need
// any authenticated principal; writes need the admin role.
func (h *PersonnelHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	admin := middleware.RequireRole(model.RoleAdmin)

	personnel := router.Group("/personnel", authn)
	{
		personnel.GET("/all", h.List)
		personnel.GET("/sections", h.SectionPicker)
		personnel.GET("/:id", h.Get)
		personnel.GET("/:id/sections", h.AssignedSections)

		personnel.POST("/add", admin, h.Create)
		personnel.PUT("/:id", admin, h.Update)
		personnel.DELETE("/:id", admin, h.Delete)
	}
}

// List handles GET /personnel/all
// @Summary      List personnel
// @Description  All personnel with their assigned sections, newest first
// @Tags         personnel
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]service.PersonnelResponse}
// @Router       /personnel/all [get]
func (h *PersonnelHandler) List(c *gin.Context) {
	rows, err := h.personnelService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, response.OK(rows))
}

// SectionPicker handles GET /personnel/sections, the id/label list the
// assignment form consumes.
// @Summary      List sections for assignment
// @Tags         personnel
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]service.SectionSummary}
// @Router       /personnel/sections [get]
func (h *PersonnelHandler) SectionPicker(c *gin.Context) {
	sections, err := h.sectionService.ListPicker(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(sections))
}

// Get handles GET /personnel/:id
// @Summary      Get personnel by id
// @Tags         personnel
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Personnel ID"
// @Success      200  {object}  response.Envelope{data=service.PersonnelResponse}
// @Failure      404  {object}  response.Envelope
// @Router       /personnel/{id} [get]
func (h *PersonnelHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := h.personnelService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(p))
}

// AssignedSections handles GET /personnel/:id/sections
// @Summary      Get the section ids assigned to a personnel
// @Tags         personnel
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Personnel ID"
// @Success      200  {object}  response.Envelope{data=[]int}
// @Failure      404  {object}  response.Envelope
// @Router       /personnel/{id}/sections [get]
func (h *PersonnelHandler) AssignedSections(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ids, err := h.personnelService.SectionIDs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(ids))
}

// Create handles POST /personnel/add
// @Summary      Create personnel
// @Description  Creates a personnel and assigns the given sections atomically
// @Tags         personnel
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PersonnelRequest  true  "Personnel Payload"
// @Success      201      {object}  response.Envelope{data=service.PersonnelResponse}
// @Failure      400      {object}  response.Envelope
// @Router       /personnel/add [post]
func (h *PersonnelHandler) Create(c *gin.Context) {
	var req service.PersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err, "matricule, nom, qualification and affectation are required"))
		return
	}

	created, err := h.personnelService.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OK(created))
}

// Update handles PUT /personnel/:id. The sections field replaces the
// whole assignment set; an absent field clears it.
// @Summary      Update personnel
// @Tags         personnel
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                       true  "Personnel ID"
// @Param        payload  body      service.PersonnelRequest  true  "Personnel Payload"
// @Success      200      {object}  response.Envelope{data=service.PersonnelResponse}
// @Failure      400      {object}  response.Envelope
// @Failure      404      {object}  response.Envelope
// @Router       /personnel/{id} [put]
func (h *PersonnelHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req service.PersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err, "matricule, nom, qualification and affectation are required"))
		return
	}

	updated, err := h.personnelService.Update(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(updated))
}

// Delete handles DELETE /personnel/:id
// @Summary      Delete personnel
// @Tags         personnel
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Personnel ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /personnel/{id} [delete]
func (h *PersonnelHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.personnelService.Delete(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Msg("personnel supprimé avec succès"))
}
