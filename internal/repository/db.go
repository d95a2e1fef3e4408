package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// NewDB creates a new MySQL database connection pool with the given DSN.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the users and tasks tables if they do not exist.
// The UNIQUE constraint on users.email is what actually enforces signup
// uniqueness under concurrency; the application-level duplicate check only
// translates the constraint violation into a friendly error. The binary
// collation on email keeps uniqueness and lookups case-sensitive.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT AUTO_INCREMENT PRIMARY KEY,
			email         VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
			name          VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id          BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id     BIGINT NOT NULL,
			title       VARCHAR(255) NOT NULL,
			description TEXT NULL,
			status      BOOLEAN NOT NULL DEFAULT FALSE,
			priority    ENUM('Low','Medium','High') NOT NULL DEFAULT 'Medium',
			created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  TIMESTAMP NULL DEFAULT NULL,
			KEY idx_tasks_user (user_id),
			CONSTRAINT fk_tasks_user FOREIGN KEY (user_id) REFERENCES users (id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
