package router

import (
	"encoding/json"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todos/api/handler"
	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/domain"
)

type Handlers struct {
	Todo     *apiHandler.TodoHandler
	Category *apiHandler.CategoryHandler
	Health   *apiHandler.HealthHandler
}

// Middleware wraps a handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, panicHandler func(*fasthttp.RequestCtx, interface{})) *router.Router {
	r := router.New()
	r.PanicHandler = panicHandler
	r.NotFound = respondStatus(fasthttp.StatusNotFound, string(domain.ErrCodeNotFound), "route not found")
	r.MethodNotAllowed = respondStatus(fasthttp.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")

	r.GET("/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")

	v1.GET("/todos", handlers.Todo.ListTodos)
	v1.POST("/todos", handlers.Todo.CreateTodo)
	v1.GET("/todos/{id}", handlers.Todo.GetTodo)
	v1.PATCH("/todos/{id}", handlers.Todo.UpdateTodo)
	v1.DELETE("/todos/{id}", handlers.Todo.DeleteTodo)
	v1.POST("/todos/{id}/toggle", handlers.Todo.ToggleTodo)
	v1.GET("/stats", handlers.Todo.Stats)

	v1.GET("/categories", handlers.Category.ListCategories)
	v1.POST("/categories", handlers.Category.CreateCategory)
	v1.GET("/categories/{id}", handlers.Category.GetCategory)
	v1.PATCH("/categories/{id}", handlers.Category.UpdateCategory)
	v1.DELETE("/categories/{id}", handlers.Category.DeleteCategory)

	return r
}

// Handler returns the router's handler wrapped by middlewares, outermost first.
func Handler(r *router.Router, middlewares ...Middleware) fasthttp.RequestHandler {
	h := r.Handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func respondStatus(status int, code, message string) fasthttp.RequestHandler {
	body, _ := json.Marshal(transport.NewError(code, message, nil))
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(status)
		ctx.SetBody(body)
	}
}
