package service

type ErrorCode string

const (
	ErrorCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrorCodeUnspecified       ErrorCode = "UNSPECIFIED"
	ErrorCodeInvalidBody       ErrorCode = "INVALID_BODY"
	ErrorCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorCodeAlreadyApplied    ErrorCode = "ALREADY_APPLIED"
	ErrorCodeProjectIncomplete ErrorCode = "PROJECT_INCOMPLETE"
	ErrorCodeUpstream          ErrorCode = "UPSTREAM_FAILED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}
