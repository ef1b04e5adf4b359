package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JCROMO11/task-manager-api/internal/auth"
	"github.com/JCROMO11/task-manager-api/internal/dto"
	"github.com/JCROMO11/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHandler handles registration, lookup and login.
type UserHandler struct {
	users   *service.UserService
	limiter *auth.AttemptLimiter
	log     zerolog.Logger
}

// NewUserHandler returns a new UserHandler. limiter may be nil.
func NewUserHandler(users *service.UserService, limiter *auth.AttemptLimiter, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, limiter: limiter, log: log}
}

// Create godoc
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UserCreate  true  "New user"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.UserCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	if taken, err := h.users.ExistsByEmail(ctx, req.Email); err != nil {
		internalError(c, h.log, "check email", err)
		return
	} else if taken {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Email already registered"})
		return
	}
	if taken, err := h.users.ExistsByUsername(ctx, req.Username); err != nil {
		internalError(c, h.log, "check username", err)
		return
	} else if taken {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Username already taken"})
		return
	}

	u, err := h.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Email already registered"})
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Username already taken"})
		case errors.Is(err, service.ErrInvalidInput):
			badRequest(c, err)
		case errors.Is(err, auth.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "password must be at most 72 bytes"})
		default:
			internalError(c, h.log, "register user", err)
		}
		return
	}
	h.log.Info().Int64("user_id", u.ID).Msg("user registered")
	c.JSON(http.StatusCreated, userToResponse(u))
}

// Get godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		internalError(c, h.log, "get user", err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(u))
}

// List godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {array}   dto.UserResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "list users", err)
		return
	}
	c.JSON(http.StatusOK, usersToResponses(list))
}

// Login godoc
// @Summary      Check email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	allowed, wait, err := h.limiter.Allowed(ctx, req.Email)
	if err != nil {
		h.log.Warn().Err(err).Msg("login limiter unavailable")
	}
	if !allowed {
		c.Header("Retry-After", strconv.Itoa(int(wait.Seconds()+0.5)))
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: "too many failed login attempts"})
		return
	}

	u, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if err := h.limiter.Fail(ctx, req.Email); err != nil {
				h.log.Warn().Err(err).Msg("record failed login")
			}
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid email or password"})
			return
		}
		internalError(c, h.log, "authenticate", err)
		return
	}
	if err := h.limiter.Reset(ctx, req.Email); err != nil {
		h.log.Warn().Err(err).Msg("reset login attempts")
	}
	c.JSON(http.StatusOK, userToResponse(u))
}
