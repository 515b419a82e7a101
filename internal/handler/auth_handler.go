package handler

import (
	"net/http"

	"comptabilite/internal/middleware"
	"comptabilite/internal/model"
	"comptabilite/internal/service"
	"comptabilite/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler sets up the routing dependencies for auth endpoints
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup. authn is
// the shared Authenticate guard; role guards compose after it.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)

		auth.GET("/users", authn, h.ListUsers)
		auth.PUT("/users/:id", authn, middleware.RequireRole(model.RoleAdmin), h.UpdateUser)
		auth.DELETE("/users/:id", authn, middleware.RequireRole(model.RoleAdmin), h.DeleteUser)
	}
}

// Signup handles POST /auth/signup
// @Summary      Sign up
// @Description  Creates an account and returns a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SignupRequest  true  "Signup Payload"
// @Success      200      {object}  response.Envelope{data=service.AuthResult}
// @Failure      400      {object}  response.Envelope
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("all fields are required"))
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(result))
}

// Login handles POST /auth/login
// @Summary      Login
// @Description  Authenticates by email and password, returning a token and the user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Envelope{data=service.AuthResult}
// @Failure      401      {object}  response.Envelope
// @Failure      404      {object}  response.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("email and password are required"))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(result))
}

// ListUsers handles GET /auth/users
// @Summary      List users
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]service.UserResponse}
// @Router       /auth/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(users))
}

// UpdateUser handles PUT /auth/users/:id
// @Summary      Update a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                        true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Update Payload"
// @Success      200      {object}  response.Envelope{data=service.UserResponse}
// @Failure      400      {object}  response.Envelope
// @Failure      404      {object}  response.Envelope
// @Router       /auth/users/{id} [put]
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("firstname, lastname et role requis"))
		return
	}

	user, err := h.authService.UpdateUser(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(user))
}

// DeleteUser handles DELETE /auth/users/:id
// @Summary      Delete a user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /auth/users/{id} [delete]
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.authService.DeleteUser(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Msg("utilisateur supprimé avec succès"))
}
