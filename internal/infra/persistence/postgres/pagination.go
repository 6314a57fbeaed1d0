package postgres

import (
	"coderr/internal/domain/repository"

	"gorm.io/gorm"
)

func paginate(db *gorm.DB, page repository.PageRequest) *gorm.DB {
	if page.IsUnpaged() {
		return db
	}

	return db.Limit(page.Limit).Offset(page.Offset)
}
