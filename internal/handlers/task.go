package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JCROMO11/task-manager-api/internal/dto"
	"github.com/JCROMO11/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type TaskHandler struct {
	tasks *service.TaskService
	users *service.UserService
	log   zerolog.Logger
}

func NewTaskHandler(tasks *service.TaskService, users *service.UserService, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users, log: log}
}

// Create godoc
// @Summary      Create a task for a user
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "User ID"
// @Param        body  body      dto.TaskCreate  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /users/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req dto.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.tasks.Create(c.Request.Context(), userID, taskInput(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			badRequest(c, err)
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			internalError(c, h.log, "create task", err)
		}
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// ListByUser godoc
// @Summary      List a user's tasks
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {array}   dto.TaskResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /users/{id}/tasks [get]
func (h *TaskHandler) ListByUser(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	list, err := h.tasks.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		internalError(c, h.log, "list user tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasksToResponses(list))
}

// List godoc
// @Summary      List all tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   dto.TaskResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.tasks.List(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasksToResponses(list))
}

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Task not found"})
			return
		}
		internalError(c, h.log, "get task", err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Update godoc
// @Summary      Replace a task's title, description, completed flag and due date
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Task ID"
// @Param        body  body      dto.TaskCreate  true  "Task body"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.tasks.Update(c.Request.Context(), id, taskInput(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			badRequest(c, err)
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Task not found"})
		default:
			internalError(c, h.log, "update task", err)
		}
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.tasks.Delete(c.Request.Context(), id)
	if err != nil {
		internalError(c, h.log, "delete task", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Task not found"})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("Task %d deleted successfully", id)})
}

// requireUser parses the :id path param and checks the user exists.
func (h *TaskHandler) requireUser(c *gin.Context) (int64, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return 0, false
	}
	if _, err := h.users.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return 0, false
		}
		internalError(c, h.log, "get task owner", err)
		return 0, false
	}
	return id, true
}

func taskInput(req dto.TaskCreate) service.TaskInput {
	return service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate.Ptr(),
	}
}
