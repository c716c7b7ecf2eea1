// Package historydb persists audit results so an operator can inspect a
// namespace's verification history across watcher restarts. The core
// never requires it; the watcher uses it when a DSN is configured.
package historydb

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

// NewStore connects to postgres, or starts in no-db mode when the DSN is
// empty so local runs need no database.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		return &Store{DB: nil}, nil
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := gdb.AutoMigrate(&AuditRecordModel{}); err != nil {
		return nil, fmt.Errorf("migrate audit history: %w", err)
	}
	return &Store{DB: gdb}, nil
}

func (s *Store) Enabled() bool {
	return s != nil && s.DB != nil
}
