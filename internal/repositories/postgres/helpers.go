package postgres

import (
	"gorm.io/gorm/clause"
)

// forUpdate is the row lock used when swapping rotation generations
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
