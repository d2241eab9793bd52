package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/nisthasiemens/docshare/internal/model"
	"github.com/nisthasiemens/docshare/internal/repository"
)

// compile-time check that *ChatDB implements repository.ChatRepository
var _ repository.ChatRepository = (*ChatDB)(nil)

// ChatDB is the chat repository, backed by the chat_messages table. It
// shares the connection pool with the parent DB.
type ChatDB struct {
	conn *sql.DB
}

// Chat returns the chat repository view of the database.
func (db *DB) Chat() *ChatDB {
	return &ChatDB{conn: db.conn}
}

// Append adds a message to the end of the chat log. The log is append-only:
// there is no update or delete, and no retention cap.
func (db *ChatDB) Append(ctx context.Context, msg *model.ChatMessage) error {
	msg.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO chat_messages (id, time_stamp, user_name, message)
		 VALUES (?, ?, ?, ?)`,
		msg.ID,
		msg.TimeStamp,
		msg.UserName,
		msg.Message,
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending chat message: %w", err)
	}

	return nil
}

// List returns the full chat log in insertion order. Insertion order, not
// timestamp order — the stored timestamp is a display string and is never
// used for sorting.
func (db *ChatDB) List(ctx context.Context) ([]model.ChatMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, time_stamp, user_name, message
		 FROM chat_messages
		 ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing chat messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.TimeStamp, &m.UserName, &m.Message); err != nil {
			return nil, fmt.Errorf("sqlite: scanning chat row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating chat messages: %w", err)
	}

	return messages, nil
}
