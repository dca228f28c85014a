package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/middleware"
	"go.uber.org/zap"
)

// Response 成功响应
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// fail 按错误码映射 HTTP 状态；非 AppError 视为内部错误
func (r *Router) fail(c *gin.Context, err error) {
	var ae *apperr.AppError
	if !errors.As(err, &ae) {
		ae = apperr.Wrap(err, apperr.ErrUnknown)
	}
	status := ae.HTTPStatus()
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Bool("retryable", apperr.IsRetryable(ae)),
			zap.Error(err),
		}
		if apperr.IsCritical(ae) {
			r.log.Error("请求处理失败", fields...)
		} else {
			r.log.Warn("请求处理失败", fields...)
		}
	}

	out := *ae
	out.Stack = nil
	c.AbortWithStatusJSON(status, apperr.NewErrorResponse(&out, middleware.GetRequestID(c)))
}

func (r *Router) badRequest(c *gin.Context, err error) {
	r.fail(c, apperr.Wrap(err, apperr.ErrInvalidParam, err.Error()))
}
