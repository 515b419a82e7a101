package handler

import (
	"net/http"

	"comptabilite/internal/middleware"
	"comptabilite/internal/model"
	"comptabilite/internal/service"
	"comptabilite/pkg/pagination"
	"comptabilite/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	audit := router.Group("/audit", authn, middleware.RequireRole(model.RoleAdmin))
	{
		audit.GET("/logs", h.ListLogs)
	}
}

// ListLogs handles GET /audit/logs
// @Summary      List audit logs
// @Description  Paginated trail of privileged writes, newest first
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number (default 1)"
// @Param        limit  query  int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Envelope{data=object}
// @Router       /audit/logs [get]
func (h *AuditHandler) ListLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(gin.H{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
