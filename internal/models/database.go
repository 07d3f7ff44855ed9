package models

import (
	"fmt"

	"github.com/taskhive/taskhive/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate runs schema migration on the given connection. Besides AutoMigrate
// it creates the partial unique index that guards pending-invite uniqueness;
// duplicate invite creation racing past the application-level check fails
// here instead of producing two pending invites.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Profile{},
		&RefreshToken{},
		&Workspace{},
		&WorkspaceMember{},
		&WorkspaceInvite{},
		&Tag{},
		&Task{},
		&TaskTag{},
		&Subtask{},
		&Comment{},
		&Attachment{},
		&ActivityLog{},
	); err != nil {
		return err
	}

	// Partial indexes are supported by sqlite and postgres. MySQL has no
	// partial index; the application-level pending-invite check still applies.
	dialect := db.Dialector.Name()
	if dialect == "sqlite" || dialect == "postgres" {
		stmt := `CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_invite
			ON workspace_invites (workspace_id, email)
			WHERE accepted_at IS NULL`
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create pending invite index: %w", err)
		}
	}

	return nil
}

func GetDB() *gorm.DB {
	return DB
}
