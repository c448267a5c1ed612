package shared

import (
	"errors"
	"net/http"

	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// WriteError 将服务层错误映射为统一的 HTTP 响应。
func WriteError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		response.BadRequest(c, verr.Error())
		return
	}
	var serr *service.StateConflictError
	if errors.As(err, &serr) {
		response.BadRequest(c, serr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrAddressNotFound),
		errors.Is(err, service.ErrChatContactNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrVariationNotFound),
		errors.Is(err, service.ErrBatchNotFound),
		errors.Is(err, service.ErrBranchNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrCustomerCodeTaken),
		errors.Is(err, service.ErrChatContactLinked),
		errors.Is(err, service.ErrProductCodeTaken),
		errors.Is(err, service.ErrStockInsufficient):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrOrderCreateFailed):
		RequestLog(c).Errorw("handler_error", "error", err)
		response.Error(c, http.StatusInternalServerError, "Failed to create order")
	case errors.Is(err, service.ErrOrderUpdateFailed):
		RequestLog(c).Errorw("handler_error", "error", err)
		response.Error(c, http.StatusInternalServerError, "Failed to update order")
	default:
		RequestLog(c).Errorw("handler_error", "error", err)
		response.InternalError(c)
	}
}
