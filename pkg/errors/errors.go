// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 凭证错误 (2xxx)
	CodeCredentialMissing  ErrorCode = "2001"
	CodeCredentialInvalid  ErrorCode = "2002"
	CodeCredentialNotFound ErrorCode = "2003"

	// 资源错误 (3xxx)
	CodeProjectNotFound    ErrorCode = "3001"
	CodeEpisodeNotFound    ErrorCode = "3002"
	CodeScriptItemNotFound ErrorCode = "3003"
	CodeAssetNotFound      ErrorCode = "3004"
	CodeRunNotFound        ErrorCode = "3005"

	// 业务错误 (4xxx)
	CodeGenerationFailed      ErrorCode = "4001"
	CodeCapabilityUnsupported ErrorCode = "4002"
	CodeMalformedModelOutput  ErrorCode = "4003"
	CodeMediaTimeout          ErrorCode = "4004"
	CodeResultURLMissing      ErrorCode = "4005"
	CodeReferenceNotReady     ErrorCode = "4006"
	CodeLLMCallFailed         ErrorCode = "4007"

	// 外部服务错误 (5xxx)
	CodeDatabaseError     ErrorCode = "5001"
	CodeCacheError        ErrorCode = "5002"
	CodeStorageError      ErrorCode = "5003"
	CodeProviderError     ErrorCode = "5004"
	CodeAssetDownloadFail ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息，返回副本以免污染预定义错误
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误，返回副本以免污染预定义错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeCapabilityUnsupported, CodeReferenceNotReady:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeCredentialMissing, CodeCredentialInvalid:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeProjectNotFound, CodeEpisodeNotFound,
		CodeScriptItemNotFound, CodeAssetNotFound, CodeRunNotFound,
		CodeCredentialNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeMediaTimeout:
		return http.StatusGatewayTimeout
	case CodeProviderError, CodeAssetDownloadFail:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrCredentialMissing  = New(CodeCredentialMissing, "API credential missing")
	ErrCredentialNotFound = New(CodeCredentialNotFound, "API key not found")

	ErrProjectNotFound    = New(CodeProjectNotFound, "project not found")
	ErrEpisodeNotFound    = New(CodeEpisodeNotFound, "episode not found")
	ErrScriptItemNotFound = New(CodeScriptItemNotFound, "script item not found")
	ErrAssetNotFound      = New(CodeAssetNotFound, "asset not found")
	ErrRunNotFound        = New(CodeRunNotFound, "run not found")

	ErrGenerationFailed      = New(CodeGenerationFailed, "generation failed")
	ErrCapabilityUnsupported = New(CodeCapabilityUnsupported, "capability not supported by platform")
	ErrMalformedModelOutput  = New(CodeMalformedModelOutput, "model output is not valid structured data")
	ErrMediaTimeout          = New(CodeMediaTimeout, "media task polling timed out")
	ErrResultURLMissing      = New(CodeResultURLMissing, "media task completed but result URL not found")
	ErrReferenceNotReady     = New(CodeReferenceNotReady, "referenced item does not have a generated image yet")
	ErrLLMCallFailed         = New(CodeLLMCallFailed, "LLM call failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
