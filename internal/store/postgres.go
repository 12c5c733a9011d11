package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"fieldtel/pkg/telemetry"
)

const uniqueViolationCode = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, msg *telemetry.Message) error {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("failed to encode measurement data: %w", err)
	}

	query := `
		INSERT INTO messages (id, session_guid, sequence_number, machine_id, data)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(ctx, query, msg.ID, msg.SessionGUID, msg.SequenceNumber, msg.MachineID, data)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: session %s sequence %d", ErrDuplicateSequence, msg.SessionGUID, msg.SequenceNumber)
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*telemetry.Message, error) {
	query := `
		SELECT id, session_guid, sequence_number, machine_id, data
		FROM messages
		WHERE id = $1
	`

	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query message: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) ListBySession(ctx context.Context, sessionGUID string) ([]telemetry.Message, error) {
	query := `
		SELECT id, session_guid, sequence_number, machine_id, data
		FROM messages
		WHERE session_guid = $1
		ORDER BY sequence_number ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionGUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session messages: %w", err)
	}
	defer rows.Close()

	var messages []telemetry.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*telemetry.Message, error) {
	var msg telemetry.Message
	var data []byte

	if err := row.Scan(&msg.ID, &msg.SessionGUID, &msg.SequenceNumber, &msg.MachineID, &data); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &msg.Data); err != nil {
		return nil, fmt.Errorf("failed to decode measurement data: %w", err)
	}

	return &msg, nil
}
