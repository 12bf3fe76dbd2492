// Drops every application table, including the migration bookkeeping
// table, so the next server start runs migrations from scratch.
//
// Usage: DATABASE_URL=... go run scripts/reset_db.go
package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	dropSQL := `
		DROP TABLE IF EXISTS archive_jobs CASCADE;
		DROP TABLE IF EXISTS files CASCADE;
		DROP TABLE IF EXISTS folders CASCADE;
		DROP TABLE IF EXISTS goose_db_version CASCADE;
	`

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	log.Println("All tables dropped. Restart the server to re-run migrations.")
}
