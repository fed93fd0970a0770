package apperrors

import (
	"contentgen_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// Debug управляет тем, видит ли клиент текст внутренних ошибок.
// Выставляется из конфига при старте (только для development).
var Debug = false

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError - основная логика обработки ошибок для Gin
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		// Детали 5xx уходят только в лог
		if cause := appErr.Unwrap(); cause != nil {
			logger.CtxWithError(c.Request.Context(), "Server error", cause, "code", appErr.Code)
		} else {
			logger.CtxError(c.Request.Context(), "Server error", "code", appErr.Code, "message", appErr.Message)
		}
		if !h.Debug {
			appErr = appErr.WithDetails(nil)
		}
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: Debug}
	handler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
