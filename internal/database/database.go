package database

import (
	"database/sql"
	"log"
	"time"

	"anzeigen-bot/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Notification é uma notificação já entregue
type Notification struct {
	ID        int64
	Recipient string
	ListingID string
	Title     string
	Price     *int
	URL       string
	SentAt    time.Time
}

// New cria uma nova instância do banco de dados
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Println("Banco de dados inicializado com sucesso")
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipient TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		title TEXT,
		price INTEGER,
		url TEXT,
		search TEXT,
		sent_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient, listing_id);
	`

	_, err := db.conn.Exec(createTableSQL)
	return err
}

// RecordNotification registra uma notificação entregue.
// O histórico é apenas informativo e não participa da deduplicação.
func (db *DB) RecordNotification(recipient string, n models.Notification) error {
	var price sql.NullInt64
	if n.Listing.Price != nil {
		price = sql.NullInt64{Int64: int64(*n.Listing.Price), Valid: true}
	}

	_, err := db.conn.Exec(
		"INSERT INTO notifications (recipient, listing_id, title, price, url, search, sent_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		recipient, n.Listing.ID, n.Listing.Title, price, n.URL, n.Search, db.now().UTC(),
	)
	return err
}

// RecentNotifications retorna as últimas notificações, da mais recente para a mais antiga
func (db *DB) RecentNotifications(limit int) ([]Notification, error) {
	rows, err := db.conn.Query(
		"SELECT id, recipient, listing_id, title, price, url, sent_at FROM notifications ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var title, url sql.NullString
		var price sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Recipient, &n.ListingID, &title, &price, &url, &n.SentAt); err != nil {
			return nil, err
		}
		n.Title = title.String
		n.URL = url.String
		if price.Valid {
			p := int(price.Int64)
			n.Price = &p
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountNotifications retorna o total de notificações registradas
func (db *DB) CountNotifications() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count)
	return count, err
}
