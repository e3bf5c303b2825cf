package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
)

// TaskHandler はタスク関連のハンドラーを管理します。
// パスは /projects/:projectId/tasks 以下です。
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) GetTasksHandler(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context(), c.Param("projectId"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Tasks retrieved successfully", models.NewTaskResponses(tasks))
}

func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), c.Param("projectId"), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Task created successfully", models.NewTaskResponse(task))
}

func (h *TaskHandler) GetTaskByIDHandler(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("projectId"), c.Param("taskId"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Task retrieved successfully", models.NewTaskResponse(task))
}

func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	var req models.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("projectId"), c.Param("taskId"), c.GetString("user_id"), req.Patch())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Task updated successfully", models.NewTaskResponse(task))
}

func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("projectId"), c.Param("taskId"), c.GetString("user_id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Task deleted successfully", nil)
}
