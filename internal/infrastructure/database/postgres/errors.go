// internal/infrastructure/database/postgres/errors.go
package postgres

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto nf and leaves other errors alone
func notFound(err error, nf *apperror.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}

// duplicate maps unique-index violations onto a conflict
func duplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(msg).Wrap(err)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
