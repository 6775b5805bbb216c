package errors

import "errors"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 业务错误分类 ==========

// Kind 错误分类，闭合集合：调用方只能拿到这五种之一
type Kind int

const (
	KindInput          Kind = iota // 调用方参数错误
	KindAccessDenied               // 租户上下文缺失或越权访问
	KindNotFound                   // 资源不存在（与越权访问对外不可区分）
	KindConflict                   // 本租户内自然键重复
	KindInfrastructure             // 存储等基础设施错误，可重试
)

// AppError 带分类的业务错误
type AppError struct {
	Kind    Kind
	Message string
	Err     error // 底层错误，仅用于日志
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ========== 构造函数 ==========

func NewInput(message string) *AppError {
	return &AppError{Kind: KindInput, Message: message}
}

func NewAccessDenied(message string) *AppError {
	return &AppError{Kind: KindAccessDenied, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewInfrastructure(err error) *AppError {
	return &AppError{Kind: KindInfrastructure, Message: "服务器内部错误", Err: err}
}

// ========== 分类判断 ==========

func kindOf(err error) (Kind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

func IsInput(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInput
}

func IsAccessDenied(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAccessDenied
}

func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

func IsConflict(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConflict
}

func IsInfrastructure(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInfrastructure
}

// HTTPCode 错误分类对应的错误码
func HTTPCode(err error) int {
	k, ok := kindOf(err)
	if !ok {
		return CodeServerError
	}
	switch k {
	case KindInput:
		return CodeInvalidParam
	case KindAccessDenied:
		return CodeForbidden
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	default:
		return CodeServerError
	}
}
