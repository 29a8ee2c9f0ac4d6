package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the ledger database. An empty host selects an embedded
// SQLite file so the service can run without a Postgres instance.
func Connect(dsn string, host string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if host == "" {
		dialector = sqlite.Open("aibot.db")
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}
