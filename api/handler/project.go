package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/planhub/backend/api/transport"
	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/pkg/httpcontext"
	projectUC "github.com/planhub/backend/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List projects visible to the caller
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.List(stdCtx, principalID,
		string(ctx.QueryArgs().Peek("status")),
		parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, projects)
}

// @Summary Get a project with its tasks
// @Tags projects
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) Get(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, tasks, err := h.uc.Get(stdCtx, principalID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"project": project,
		"tasks":   tasks,
	})
}

// @Summary Create a project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}

	var req transport.ProjectCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.Create(stdCtx, principalID, projectUC.CreateInput{
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		StartDate:      transport.ParseTime(req.StartDate),
		EndDate:        transport.ParseTime(req.EndDate),
		Deadline:       transport.ParseTime(req.Deadline),
		GanttData:      req.GanttData,
		MermaidDiagram: req.MermaidDiagram,
		MarkdownNotes:  req.MarkdownNotes,
		Tags:           req.Tags,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, project)
}

// @Summary Update a project
// @Tags projects
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) Update(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	var req transport.ProjectUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.Update(stdCtx, principalID, id, projectUC.Patch{
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		StartDate:      transport.ParseTimePtr(req.StartDate),
		EndDate:        transport.ParseTimePtr(req.EndDate),
		Deadline:       transport.ParseTimePtr(req.Deadline),
		Tags:           req.Tags,
		GanttData:      req.GanttData,
		MermaidDiagram: req.MermaidDiagram,
		MarkdownNotes:  req.MarkdownNotes,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Update the planning payload (diagram/notes)
// @Tags projects
// @Router /api/v1/projects/{id}/diagram [put]
func (h *ProjectHandler) UpdateDiagram(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	var req transport.DiagramRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.Update(stdCtx, principalID, id, projectUC.Patch{
		GanttData:      req.GanttData,
		MermaidDiagram: req.MermaidDiagram,
		MarkdownNotes:  req.MarkdownNotes,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Delete a project and all of its tasks
// @Tags projects
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, principalID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "project deleted"})
}

// @Summary Add a member
// @Tags projects
// @Router /api/v1/projects/{id}/members [post]
func (h *ProjectHandler) AddMember(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	var req transport.MemberRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.MemberID == "" {
		h.respondInvalid(ctx, "missing member id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.AddMember(stdCtx, principalID, id, req.MemberID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			// Duplicate membership is a soft condition; report it without
			// failing the request.
			h.respondJSON(ctx, http.StatusOK, transport.NewError(string(domain.ErrCodeConflict), err.Error()))
			return
		}
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Remove a member
// @Tags projects
// @Router /api/v1/projects/{id}/members/{memberId} [delete]
func (h *ProjectHandler) RemoveMember(ctx *fasthttp.RequestCtx) {
	principalID := h.principalID(ctx)
	if principalID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	memberID, _ := ctx.UserValue("memberId").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.RemoveMember(stdCtx, principalID, id, memberID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	return n
}
