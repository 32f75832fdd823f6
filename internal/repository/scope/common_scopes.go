package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// Limit caps a listing, falling back to def when n is not positive.
func Limit(n, def int) func(*gorm.DB) *gorm.DB {
	if n <= 0 {
		n = def
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}
