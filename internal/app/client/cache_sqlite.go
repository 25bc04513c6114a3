package client

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jobtag/internal/domain/application"
)

// SnapshotCache хранит последний снимок списка заявок для офлайн-просмотра.
// Это не источник истины: при следующем Mount снимок перезаписывается.
type SnapshotCache struct {
	db *sql.DB
}

// CachedSnapshot - снимок владельца на момент SavedAt.
type CachedSnapshot struct {
	OwnerID string
	SavedAt time.Time
	Records []application.Application
}

func NewSnapshotCache(path string) (*SnapshotCache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	cache := &SnapshotCache{db: db}

	if err := cache.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return cache, nil
}

func (c *SnapshotCache) initTables() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			owner_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (owner_id, position)
		);

		CREATE TABLE IF NOT EXISTS snapshot_meta (
			owner_id TEXT PRIMARY KEY,
			saved_at DATETIME NOT NULL,
			count INTEGER NOT NULL
		);
	`)

	return err
}

// Save заменяет снимок владельца целиком, сохраняя порядок записей.
func (c *SnapshotCache) Save(ownerID string, records []application.Application) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("ошибка очистки снимка: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO snapshots (owner_id, position, id, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("ошибка сериализации заявки %s: %w", rec.ID, err)
		}
		if _, err := stmt.Exec(ownerID, i, rec.ID, string(payload)); err != nil {
			return fmt.Errorf("ошибка сохранения заявки %s: %w", rec.ID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO snapshot_meta (owner_id, saved_at, count) VALUES (?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET saved_at = excluded.saved_at, count = excluded.count
	`, ownerID, time.Now().UTC(), len(records))
	if err != nil {
		return fmt.Errorf("ошибка сохранения метаданных снимка: %w", err)
	}

	return tx.Commit()
}

// Load возвращает снимок владельца. Если снимка нет, ok = false.
func (c *SnapshotCache) Load(ownerID string) (CachedSnapshot, bool, error) {
	snap := CachedSnapshot{OwnerID: ownerID}

	err := c.db.QueryRow(`SELECT saved_at FROM snapshot_meta WHERE owner_id = ?`, ownerID).Scan(&snap.SavedAt)
	if err == sql.ErrNoRows {
		return CachedSnapshot{}, false, nil
	}
	if err != nil {
		return CachedSnapshot{}, false, fmt.Errorf("ошибка чтения метаданных снимка: %w", err)
	}

	rows, err := c.db.Query(`SELECT payload FROM snapshots WHERE owner_id = ? ORDER BY position`, ownerID)
	if err != nil {
		return CachedSnapshot{}, false, fmt.Errorf("ошибка чтения снимка: %w", err)
	}
	defer rows.Close()

	snap.Records = []application.Application{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return CachedSnapshot{}, false, fmt.Errorf("ошибка сканирования: %w", err)
		}
		var rec application.Application
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return CachedSnapshot{}, false, fmt.Errorf("ошибка десериализации заявки: %w", err)
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return CachedSnapshot{}, false, err
	}

	return snap, true, nil
}

func (c *SnapshotCache) Close() error {
	return c.db.Close()
}
