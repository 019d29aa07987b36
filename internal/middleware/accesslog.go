package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/pkg/httpcontext"
)

// AccessLog logs one line per request with its status and latency.
func AccessLog(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			reqID := httpcontext.RequestID(ctx)

			next(ctx)
			// ctx.Error resets response headers.
			ctx.Response.Header.Set(httpcontext.HeaderRequestID, reqID)

			status := ctx.Response.StatusCode()
			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
			}
			if status >= fasthttp.StatusInternalServerError {
				logger.Warn("request served", fields...)
				return
			}
			logger.Info("request served", fields...)
		}
	}
}

// Recover turns a handler panic into a 500 response.
func Recover(logger *zap.Logger) func(*fasthttp.RequestCtx, interface{}) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx *fasthttp.RequestCtx, rcv interface{}) {
		logger.Error("handler panicked",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.ByteString("path", ctx.Path()),
			zap.Any("panic", rcv),
		)
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"status":"error","code":"INTERNAL","error":"internal error"}`)
	}
}
