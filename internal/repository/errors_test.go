package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"line_price_portal/internal/apperr"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"gorm duplicated", gorm.ErrDuplicatedKey, apperr.KindConflict},
		{"pg unique", &pgconn.PgError{Code: "23505"}, apperr.KindConflict},
		{"pg fk", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), apperr.KindValidation},
		{"sqlite unique", errors.New("UNIQUE constraint failed: branches.code"), apperr.KindConflict},
		{"other", errors.New("connection refused"), apperr.KindStore},
		{"already classified", apperr.NotFound("x"), apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apperr.KindOf(TranslateError(tt.err))
			if got != tt.want {
				t.Errorf("kind = %s, want %s", got, tt.want)
			}
		})
	}

	if TranslateError(nil) != nil {
		t.Error("TranslateError(nil) 应返回 nil")
	}
}
