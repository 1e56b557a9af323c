package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userdeck/user-directory-api/internal/api/metrics"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        perPage         query     int     false  "Page size, 1..100 (default 10)"
// @Param        orderBy         query     string  false  "createdAt | name | email | updatedAt"
// @Param        orderDirection  query     string  false  "asc | desc"
// @Param        search          query     string  false  "Substring match on name or email"
// @Param        role            query     string  false  "Exact role filter"
// @Success      200             {object}  listUsersResponse
// @Failure      400             {object}  map[string]string
// @Failure      401             {object}  map[string]string
// @Failure      403             {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	in, err := parseListQuery(c)
	if err != nil {
		return err
	}

	users, meta, err := h.service.List(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listUsersResponse{
		Items: toUserResponses(users),
		Meta:  meta,
	})
}

// Get handles GET /users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id (UUID)"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	req, err := decodeCreateUser(c)
	if err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return err
	}
	metrics.UsersCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update handles PATCH /users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id (UUID)"
// @Param        body  body      updateUserRequest  true  "Fields to update (at least one)"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	in, err := decodeUpdateUser(c)
	if err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id (UUID)"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	metrics.UsersDeletedTotal.Inc()

	return c.NoContent(http.StatusNoContent)
}
