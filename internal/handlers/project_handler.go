package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
)

// ProjectHandler はプロジェクト関連のハンドラーを管理します。
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler は新しいProjectHandlerを作成します。
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// GetProjectsHandler は呼び出し元のプロジェクト一覧を返します。
func (h *ProjectHandler) GetProjectsHandler(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Projects retrieved successfully", models.NewProjectResponses(projects))
}

func (h *ProjectHandler) CreateProjectHandler(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Project created successfully", models.NewProjectResponse(project))
}

func (h *ProjectHandler) GetProjectByIDHandler(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("projectId"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Project retrieved successfully", models.NewProjectResponse(project))
}

// UpdateProjectHandler はプロジェクトを部分更新します。ボディの検証は存在チェックより先です。
func (h *ProjectHandler) UpdateProjectHandler(c *gin.Context) {
	var req models.UpdateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("projectId"), c.GetString("user_id"), req.Patch())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Project updated successfully", models.NewProjectResponse(project))
}

// DeleteProjectHandler はプロジェクトと配下のタスクを削除します。
func (h *ProjectHandler) DeleteProjectHandler(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("projectId"), c.GetString("user_id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Project and associated tasks deleted successfully", nil)
}
