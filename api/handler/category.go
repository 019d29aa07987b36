package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/pkg/httpcontext"
	categoryUC "github.com/fastygo/todos/usecase/category"
)

type CategoryHandler struct {
	baseHandler
	uc *categoryUC.UseCase
}

func NewCategoryHandler(uc *categoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List categories
// @Tags categories
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, categories)
}

// @Summary Get category
// @Tags categories
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) GetCategory(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	category, err := h.uc.Get(stdCtx, domain.CategoryID(id))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, category)
}

// @Summary Create category
// @Tags categories
// @Router /api/v1/categories [post]
func (h *CategoryHandler) CreateCategory(ctx *fasthttp.RequestCtx) {
	var req transport.CategoryRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Add(stdCtx, req.ToInput())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update category
// @Tags categories
// @Router /api/v1/categories/{id} [patch]
func (h *CategoryHandler) UpdateCategory(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.CategoryPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, domain.CategoryID(id), req.ToPatch())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete category
// @Tags categories
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, domain.CategoryID(id)); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
