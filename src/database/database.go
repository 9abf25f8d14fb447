package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/ordena/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateProductTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		stock INTEGER NOT NULL DEFAULT 0,
		unit_price REAL NOT NULL DEFAULT 0,
		units_sold INTEGER NOT NULL DEFAULT 0,
		current_rank INTEGER NOT NULL,
		suggested_rank INTEGER,
		rank_delta INTEGER NOT NULL DEFAULT 0,
		score REAL NOT NULL DEFAULT 0,
		justification TEXT DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analysis_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analyzed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		total_products INTEGER NOT NULL,
		changes_count INTEGER NOT NULL,
		total_units_sold INTEGER NOT NULL,
		total_stock INTEGER NOT NULL,
		inventory_value REAL NOT NULL,
		average_units_sold REAL NOT NULL
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateProductTable adds columns introduced after the first release to an
// existing products table. Additive only; sqlite cannot drop columns cheaply.
func migrateProductTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='products'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'products' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'products' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'products' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'products' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(products)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'products'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'products': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'products'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'products': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'products'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'products': %v", err)
		}
		return
	}

	if _, ok := columnExists["rank_delta"]; !ok {
		_, err := DB.Exec("ALTER TABLE products ADD COLUMN rank_delta INTEGER NOT NULL DEFAULT 0")
		if err != nil {
			logger.L.Error("Error adding 'rank_delta' column to 'products' table", "error", err)
		} else {
			logger.L.Info("Added 'rank_delta' column to 'products' table")
		}
	}
	if _, ok := columnExists["score"]; !ok {
		_, err := DB.Exec("ALTER TABLE products ADD COLUMN score REAL NOT NULL DEFAULT 0")
		if err != nil {
			logger.L.Error("Error adding 'score' column to 'products' table", "error", err)
		} else {
			logger.L.Info("Added 'score' column to 'products' table")
		}
	}
	if _, ok := columnExists["justification"]; !ok {
		_, err := DB.Exec("ALTER TABLE products ADD COLUMN justification TEXT DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'justification' column to 'products' table", "error", err)
		} else {
			logger.L.Info("Added 'justification' column to 'products' table")
		}
	}
	if _, ok := columnExists["updated_at"]; !ok {
		_, err := DB.Exec("ALTER TABLE products ADD COLUMN updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
		if err != nil {
			logger.L.Error("Error adding 'updated_at' column to 'products' table", "error", err)
		} else {
			logger.L.Info("Added 'updated_at' column to 'products' table")
		}
	}
}
