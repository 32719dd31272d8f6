package errors

import (
	stderrors "errors"
	"fmt"
)

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

func (d Definition) Error() string {
	return d.Message
}

// Is 按错误码比较，便于 WithMessage 生成的副本仍能被 errors.Is 识别
func (d Definition) Is(target error) bool {
	t, ok := target.(Definition)
	return ok && t.Code == d.Code
}

// WithMessage 返回同错误码、自定义信息的副本
func (d Definition) WithMessage(format string, args ...interface{}) Definition {
	return Definition{Code: d.Code, Message: fmt.Sprintf(format, args...)}
}

// As 从错误链中提取 Definition
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}

// 通用错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	InvalidDate     = Definition{Code: "INVALID_DATE", Message: "Date must use the YYYY-MM-DD format"}
	NotFound        = Definition{Code: "NOT_FOUND", Message: "Resource not found"}
	Forbidden       = Definition{Code: "FORBIDDEN", Message: "Operation not allowed for the current account"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	InternalError   = Definition{Code: "INTERNAL_ERROR", Message: "Internal server error"}
)

// 认证相关错误。
var (
	Unauthorized       = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidCredentials = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password"}
	AccountDisabled    = Definition{Code: "ACCOUNT_DISABLED", Message: "Account disabled"}
	AccountDuplicate   = Definition{Code: "ACCOUNT_DUPLICATE", Message: "Username or employee already has an account"}

	ErrTokenGeneratorNotInitialized = Definition{Code: "TOKEN_GENERATOR_NOT_INITIALIZED", Message: "Token generator not initialized"}
	ErrUnexpectedSigningMethod      = Definition{Code: "TOKEN_UNEXPECTED_SIGNING_METHOD", Message: "Unexpected signing method"}
	ErrInvalidToken                 = Definition{Code: "TOKEN_INVALID", Message: "Invalid token"}
	ErrInvalidTokenClaims           = Definition{Code: "TOKEN_INVALID_CLAIMS", Message: "Invalid token claims"}
	ErrInvalidTokenType             = Definition{Code: "TOKEN_INVALID_TYPE", Message: "Invalid token type"}
	ErrUserIDNotFound               = Definition{Code: "TOKEN_USER_ID_NOT_FOUND", Message: "User ID not found in token"}
)

// 员工与组织错误。
var (
	EmployeeNotFound     = Definition{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}
	EmployeeDuplicate    = Definition{Code: "EMPLOYEE_DUPLICATE", Message: "Employee number, CURP, RFC or NSS already registered"}
	LocationNotFound     = Definition{Code: "LOCATION_NOT_FOUND", Message: "Location not found"}
	WorkScheduleNotFound = Definition{Code: "WORK_SCHEDULE_NOT_FOUND", Message: "Work schedule not found"}
)

// 考勤模块错误。
var (
	CheckInNotFound       = Definition{Code: "CHECKIN_NOT_FOUND", Message: "Check-in not found"}
	CoordinatesIncomplete = Definition{Code: "COORDINATES_INCOMPLETE", Message: "Latitude and longitude must be sent together"}
	GeofenceDataMissing   = Definition{Code: "GEOFENCE_DATA_MISSING", Message: "Check-in has no coordinates or no location to evaluate"}
	JustificationNotFound = Definition{Code: "JUSTIFICATION_NOT_FOUND", Message: "Justification not found"}
	JustificationResolved = Definition{Code: "JUSTIFICATION_NOT_PENDING", Message: "Justification is not pending"}
)

// 假期申请模块错误。
var (
	LeaveNotFound           = Definition{Code: "LEAVE_NOT_FOUND", Message: "Leave request not found"}
	LeaveInvalidRange       = Definition{Code: "LEAVE_INVALID_RANGE", Message: "End date must not be before start date"}
	LeaveNoBusinessDays     = Definition{Code: "LEAVE_NO_BUSINESS_DAYS", Message: "The requested range contains no business days"}
	LeaveNotInExpectedState = Definition{Code: "LEAVE_NOT_IN_EXPECTED_STATE", Message: "Request is not in the expected state"}
	PermissionNotFound      = Definition{Code: "PERMISSION_NOT_FOUND", Message: "Permission request not found"}
	PermissionTypeNotFound  = Definition{Code: "PERMISSION_TYPE_NOT_FOUND", Message: "Permission type not found or inactive"}
	PermissionHoursInvalid  = Definition{Code: "PERMISSION_HOURS_INVALID", Message: "Hours must be non-negative and use a single day"}
	PermissionEvidence      = Definition{Code: "PERMISSION_REASON_REQUIRED", Message: "This permission type requires a reason"}
)

// 节假日、政策与余额错误。
var (
	HolidayNotFound       = Definition{Code: "HOLIDAY_NOT_FOUND", Message: "Holiday not found"}
	HolidayDuplicate      = Definition{Code: "HOLIDAY_DUPLICATE", Message: "A holiday already exists on that date"}
	HolidayRuleInvalid    = Definition{Code: "HOLIDAY_RULE_INVALID", Message: "Recurrence rule is invalid"}
	HolidayImportInvalid  = Definition{Code: "HOLIDAY_IMPORT_INVALID", Message: "Holiday sheet could not be read"}
	PolicyNotFound        = Definition{Code: "POLICY_NOT_FOUND", Message: "Policy tier not found"}
	PolicyRangeInvalid    = Definition{Code: "POLICY_RANGE_INVALID", Message: "years_to must be greater than or equal to years_from"}
	BalanceLocked         = Definition{Code: "BALANCE_LOCKED", Message: "Balance is being recomputed by another process"}
	CalendarRangeTooLarge = Definition{Code: "CALENDAR_RANGE_TOO_LARGE", Message: "Date range is too large"}
)

// 消息队列错误。
var (
	SkipMessage              = Definition{Code: "SKIP_MESSAGE", Message: "Message skipped"}
	ErrDatabaseConnectionNil = Definition{Code: "DATABASE_CONNECTION_NIL", Message: "Database connection is nil"}
	ErrMessageBrokerNotReady = Definition{Code: "MESSAGE_BROKER_NOT_READY", Message: "Message broker not initialized"}
)

// SkipMessageError 消费者返回此错误时消息被确认且不重新入队
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

func NewSkipMessageError(format string, args ...interface{}) error {
	return &SkipMessageError{Reason: fmt.Sprintf(format, args...)}
}

func IsSkipMessageError(err error) bool {
	var target *SkipMessageError
	return stderrors.As(err, &target)
}

// Lookup 提供错误码查询能力。
var Lookup = buildLookup(
	InvalidRequest, InvalidDate, NotFound, Forbidden, TooManyRequests, InternalError,
	Unauthorized, InvalidCredentials, AccountDisabled, AccountDuplicate,
	ErrTokenGeneratorNotInitialized, ErrUnexpectedSigningMethod, ErrInvalidToken,
	ErrInvalidTokenClaims, ErrInvalidTokenType, ErrUserIDNotFound,
	EmployeeNotFound, EmployeeDuplicate, LocationNotFound, WorkScheduleNotFound,
	CheckInNotFound, CoordinatesIncomplete, GeofenceDataMissing,
	JustificationNotFound, JustificationResolved,
	LeaveNotFound, LeaveInvalidRange, LeaveNoBusinessDays, LeaveNotInExpectedState,
	PermissionNotFound, PermissionTypeNotFound, PermissionHoursInvalid, PermissionEvidence,
	HolidayNotFound, HolidayDuplicate, HolidayRuleInvalid, HolidayImportInvalid,
	PolicyNotFound, PolicyRangeInvalid, BalanceLocked, CalendarRangeTooLarge,
	SkipMessage, ErrDatabaseConnectionNil, ErrMessageBrokerNotReady,
)

func buildLookup(defs ...Definition) map[string]Definition {
	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		m[d.Code] = d
	}
	return m
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
