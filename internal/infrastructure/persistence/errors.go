package persistence

import (
	"errors"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate renders SELECT ... FOR UPDATE on postgres. The sqlite dialector drops it.
var lockForUpdate = clause.Locking{Strength: "UPDATE"}

// translateError maps GORM errors to domain errors. The database must be
// opened with TranslateError so driver duplicate-key errors arrive as gorm.ErrDuplicatedKey.
func translateError(err error, resource string, id uuid.UUID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if id == uuid.Nil {
			return shared.ErrNotFound
		}
		return shared.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.WrapDomainError(shared.ErrAlreadyExists, err)
	}
	return err
}
