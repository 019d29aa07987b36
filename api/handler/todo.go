package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/pkg/httpcontext"
	todoUC "github.com/fastygo/todos/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List todos
// @Tags todos
// @Router /api/v1/todos [get]
func (h *TodoHandler) ListTodos(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	status, err := todoUC.ParseStatusFilter(string(args.Peek("status")))
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}
	opts := todoUC.ListOptions{
		Status:         status,
		Category:       string(args.Peek("category")),
		SortByPriority: string(args.Peek("sort")) == "priority",
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.List(stdCtx, opts)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(res.Todos, transport.ListMeta{
		Stats:  res.Stats,
		Status: string(opts.Status),
	}))
}

// @Summary Todo counts
// @Tags todos
// @Router /api/v1/stats [get]
func (h *TodoHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Get todo
// @Tags todos
// @Router /api/v1/todos/{id} [get]
func (h *TodoHandler) GetTodo(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todo, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todo)
}

// @Summary Create todo
// @Tags todos
// @Router /api/v1/todos [post]
func (h *TodoHandler) CreateTodo(ctx *fasthttp.RequestCtx) {
	var req transport.TodoRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	input, err := req.ToInput()
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	created, err := h.uc.Add(stdCtx, input)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update todo
// @Tags todos
// @Router /api/v1/todos/{id} [patch]
func (h *TodoHandler) UpdateTodo(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.TodoPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	patch, err := req.ToPatch()
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	updated, err := h.uc.Update(stdCtx, id, patch)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Toggle todo completion
// @Tags todos
// @Router /api/v1/todos/{id}/toggle [post]
func (h *TodoHandler) ToggleTodo(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todo, err := h.uc.Toggle(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todo)
}

// @Summary Delete todo
// @Tags todos
// @Router /api/v1/todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
