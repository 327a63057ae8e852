package handlers

import (
	"net/http"

	"github.com/dcode-ide/apiserver/internal/logging"
	"github.com/dcode-ide/apiserver/internal/services"
	"github.com/dcode-ide/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// ProjectHandler serves the project endpoints. Every request carries the
// caller's token in its body.
type ProjectHandler struct {
	projectService *services.ProjectService
	userService    *services.UserService
	runService     *services.RunService
	logger         logging.Logger
}

// NewProjectHandler constructs a ProjectHandler. runService may be nil, in
// which case /runProject is not registered.
func NewProjectHandler(
	projectService *services.ProjectService,
	userService *services.UserService,
	runService *services.RunService,
	logger logging.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		userService:    userService,
		runService:     runService,
		logger:         logger,
	}
}

// ProjectRouter registers project routes on the given router.
func ProjectRouter(r chi.Router, handler *ProjectHandler) {
	r.Post("/createProj", handler.CreateProject)
	r.Post("/saveProject", handler.SaveProject)
	r.Post("/getProjects", handler.GetProjects)
	r.Post("/getProject", handler.GetProject)
	r.Post("/deleteProject", handler.DeleteProject)
	r.Post("/editProject", handler.EditProject)
	if handler.runService != nil {
		r.Post("/runProject", handler.RunProject)
	}

	r.Get("/getProjects", EndpointNotice("/getProjects"))
	r.Get("/createProj", EndpointNotice("/createProj"))
}

// resolve loads the user named by token, writing the error response when
// it cannot.
func (h *ProjectHandler) resolve(w http.ResponseWriter, r *http.Request, token string) (types.User, bool) {
	user, err := h.userService.ResolveUser(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, h.logger, err, userNotFound)
		return types.User{}, false
	}
	return user, true
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, found := h.resolve(w, r, req.Token)
	if !found {
		return
	}

	project, err := h.projectService.Create(r.Context(), user, req.Name, req.Language, req.Version)
	if err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, CreateProjectResponse{
		Response:  ok("Project created successfully"),
		ProjectID: project.ID,
	})
}

func (h *ProjectHandler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var req SaveProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, found := h.resolve(w, r, req.Token)
	if !found {
		return
	}

	if err := h.projectService.SaveCode(r.Context(), user, req.ProjectID, *req.Code); err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ok("Project saved successfully"))
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, found := h.resolve(w, r, req.Token)
	if !found {
		return
	}

	projects, err := h.projectService.List(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ProjectListResponse{
		Response: ok("Projects fetched successfully"),
		Projects: projects,
	})
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, found := h.resolve(w, r, req.Token)
	if !found {
		return
	}

	project, err := h.projectService.Get(r.Context(), user, req.ProjectID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ProjectResponse{
		Response: ok("Project fetched successfully"),
		Project:  project,
	})
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, found := h.resolve(w, r, req.Token)
	if !found {
		return
	}

	if err := h.projectService.Delete(r.Context(), user, req.ProjectID); err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ok("Project deleted successfully"))
}

func (h *ProjectHandler) EditProject(w http.ResponseWriter, r *http.Request) {
	var req EditProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, found := h.resolve(w, r, req.Token)
	if !found {
		return
	}

	if err := h.projectService.Rename(r.Context(), user, req.ProjectID, req.Name); err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ok("Project edited successfully"))
}

func (h *ProjectHandler) RunProject(w http.ResponseWriter, r *http.Request) {
	var req RunProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, found := h.resolve(w, r, req.Token)
	if !found {
		return
	}

	result, err := h.runService.Run(r.Context(), user, req.ProjectID, req.Code, req.Stdin)
	if err != nil {
		writeServiceError(w, r, h.logger, err, projectNotFound)
		return
	}

	writeJSON(w, http.StatusOK, RunProjectResponse{
		Response:  ok("Code executed successfully"),
		RunResult: result,
	})
}

type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type ProjectRequest struct {
	Token     string `json:"token" validate:"required"`
	ProjectID string `json:"projectId" validate:"required"`
}

type CreateProjectRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Language string `json:"projLanguage" validate:"required"`
	Version  string `json:"version"`
}

type SaveProjectRequest struct {
	Token     string `json:"token" validate:"required"`
	ProjectID string `json:"projectId" validate:"required"`
	// Code may be empty but must be present.
	Code *string `json:"code" validate:"required"`
}

type EditProjectRequest struct {
	Token     string `json:"token" validate:"required"`
	ProjectID string `json:"projectId" validate:"required"`
	Name      string `json:"name" validate:"required"`
}

type RunProjectRequest struct {
	Token     string  `json:"token" validate:"required"`
	ProjectID string  `json:"projectId" validate:"required"`
	Code      *string `json:"code"`
	Stdin     string  `json:"stdin"`
}

type CreateProjectResponse struct {
	Response
	ProjectID string `json:"projectId"`
}

type ProjectListResponse struct {
	Response
	Projects []types.Project `json:"projects"`
}

type ProjectResponse struct {
	Response
	Project types.Project `json:"project"`
}

type RunProjectResponse struct {
	Response
	types.RunResult
}
