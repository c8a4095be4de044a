// Package apperr 业务错误分类
// 所有返回给调用方的错误都归入固定的几类，HTTP 层只按类别映射状态码，
// 存储层的原始错误不会透传给客户端。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindUnauthorized Kind = "unauthorized"
	KindStore        Kind = "store"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error // 原始错误，仅用于日志
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同类别的哨兵（无 Message）视为匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

// ==================== 类别哨兵 ====================

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrStore        = &Error{Kind: KindStore}
)

// ==================== 构造函数 ====================

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Store 包装存储层错误
func Store(err error) *Error {
	return &Error{Kind: KindStore, Message: "internal server error", Err: err}
}

// Validationf 格式化校验错误
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// ==================== 辅助函数 ====================

// KindOf 获取错误类别，非业务错误一律按存储错误处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// HTTPStatus 错误类别对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回可以展示给客户端的错误信息
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindStore {
		return e.Message
	}
	return "internal server error"
}
