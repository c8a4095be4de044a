package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"line_price_portal/internal/apperr"
)

// PostgreSQL 错误码
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// TranslateError 将存储层错误归类为业务错误
// 唯一约束冲突 -> Conflict，外键不存在 -> Validation，其余 -> Store
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperr.Error{Kind: apperr.KindConflict, Message: "record already exists", Err: err}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &apperr.Error{Kind: apperr.KindValidation, Message: "referenced record does not exist", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &apperr.Error{Kind: apperr.KindConflict, Message: "record already exists", Err: err}
		case pgForeignKeyViolation:
			return &apperr.Error{Kind: apperr.KindValidation, Message: "referenced record does not exist", Err: err}
		}
	}

	// sqlite 未开启 TranslateError 时的兜底
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &apperr.Error{Kind: apperr.KindConflict, Message: "record already exists", Err: err}
	}

	return apperr.Store(err)
}

// IsUniqueViolation 是否唯一约束冲突
func IsUniqueViolation(err error) bool {
	return apperr.KindOf(TranslateError(err)) == apperr.KindConflict
}
