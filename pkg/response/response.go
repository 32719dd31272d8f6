package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/config"
	"HRCore/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// statusByCode 未列出的业务错误码默认 400
var statusByCode = map[string]int{
	errors.Unauthorized.Code:                    http.StatusUnauthorized,
	errors.InvalidCredentials.Code:              http.StatusUnauthorized,
	errors.ErrInvalidToken.Code:                 http.StatusUnauthorized,
	errors.ErrInvalidTokenClaims.Code:           http.StatusUnauthorized,
	errors.ErrInvalidTokenType.Code:             http.StatusUnauthorized,
	errors.ErrUserIDNotFound.Code:               http.StatusUnauthorized,
	errors.ErrUnexpectedSigningMethod.Code:      http.StatusUnauthorized,
	errors.AccountDisabled.Code:                 http.StatusForbidden,
	errors.Forbidden.Code:                       http.StatusForbidden,
	errors.NotFound.Code:                        http.StatusNotFound,
	errors.EmployeeNotFound.Code:                http.StatusNotFound,
	errors.LocationNotFound.Code:                http.StatusNotFound,
	errors.WorkScheduleNotFound.Code:            http.StatusNotFound,
	errors.CheckInNotFound.Code:                 http.StatusNotFound,
	errors.JustificationNotFound.Code:           http.StatusNotFound,
	errors.LeaveNotFound.Code:                   http.StatusNotFound,
	errors.PermissionNotFound.Code:              http.StatusNotFound,
	errors.HolidayNotFound.Code:                 http.StatusNotFound,
	errors.PolicyNotFound.Code:                  http.StatusNotFound,
	errors.EmployeeDuplicate.Code:               http.StatusConflict,
	errors.AccountDuplicate.Code:                http.StatusConflict,
	errors.HolidayDuplicate.Code:                http.StatusConflict,
	errors.LeaveNotInExpectedState.Code:         http.StatusConflict,
	errors.JustificationResolved.Code:           http.StatusConflict,
	errors.BalanceLocked.Code:                   http.StatusConflict,
	errors.TooManyRequests.Code:                 http.StatusTooManyRequests,
	errors.InternalError.Code:                   http.StatusInternalServerError,
	errors.ErrTokenGeneratorNotInitialized.Code: http.StatusInternalServerError,
	errors.ErrDatabaseConnectionNil.Code:        http.StatusInternalServerError,
	errors.ErrMessageBrokerNotReady.Code:        http.StatusServiceUnavailable,
}

// StatusOf 返回错误对应的 HTTP 状态码
func StatusOf(err error) int {
	def, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[def.Code]; ok {
		return status
	}
	return http.StatusBadRequest
}

func toDetail(err error) ErrorDetail {
	if def, ok := errors.As(err); ok {
		return ErrorDetail{Code: def.Code, Message: def.Message}
	}
	message := errors.InternalError.Message
	if !config.Cfg.IsProduction() {
		message = err.Error()
	}
	return ErrorDetail{Code: errors.InternalError.Code, Message: message}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(StatusOf(err), ErrorResponse{Error: toDetail(err)})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details interface{}) {
	detail := toDetail(err)
	detail.Details = details
	c.JSON(StatusOf(err), ErrorResponse{Error: detail})
}

// ValidationError 校验失败，details 为字段级错误列表
func ValidationError(ctx context.Context, c *app.RequestContext, details interface{}) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: "Validation failed",
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Data: data})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: meta})
}

func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Data: data})
}

func Accepted(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusAccepted, SuccessResponse{Data: data})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
