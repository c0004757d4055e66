package store

import (
	"context"
	"fmt"

	"github.com/roach88/propdeps/internal/ir"
)

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, type_name, label, spec_hash, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.TypeName,
		sess.Label,
		sess.SpecHash,
		sess.EngineVersion,
		sess.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteAssignment inserts an assignment record.
// The value is serialized to canonical JSON; floats are rejected.
//
// Note: The session must exist (foreign key constraint).
func (s *Store) WriteAssignment(ctx context.Context, a ir.Assignment) error {
	valueJSON, err := marshalValue(a.Value)
	if err != nil {
		return fmt.Errorf("write assignment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assignments
		(session_id, seq, property, value, changed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		a.SessionID,
		a.Seq,
		a.Property,
		valueJSON,
		a.Changed,
	)
	if err != nil {
		return fmt.Errorf("write assignment: %w", err)
	}
	return nil
}

// WriteNotification inserts a notification record.
//
// Note: The session must exist (foreign key constraint).
func (s *Store) WriteNotification(ctx context.Context, n ir.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications
		(session_id, seq, cause, property, kind)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		n.SessionID,
		n.Seq,
		n.Cause,
		n.Property,
		string(n.Kind),
	)
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// WriteNotifications inserts a batch of notifications in one transaction.
// Either all records are written or none are.
func (s *Store) WriteNotifications(ctx context.Context, ns []ir.Notification) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications
		(session_id, seq, cause, property, kind)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare notification insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range ns {
		if _, err = stmt.ExecContext(ctx, n.SessionID, n.Seq, n.Cause, n.Property, string(n.Kind)); err != nil {
			return fmt.Errorf("write notification %d: %w", n.Seq, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit notifications: %w", err)
	}
	return nil
}
