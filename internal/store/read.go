package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/propdeps/internal/ir"
)

// ReadSession retrieves a single session by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.Session, error) {
	var sess ir.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type_name, label, spec_hash, engine_version, ir_version
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.TypeName, &sess.Label, &sess.SpecHash, &sess.EngineVersion, &sess.IRVersion)
	if err != nil {
		return ir.Session{}, err
	}
	return sess, nil
}

// ListSessions returns all sessions ordered by ID. UUIDv7 IDs sort by
// creation time.
//
// Returns an empty slice (not nil) if there are no sessions.
func (s *Store) ListSessions(ctx context.Context) ([]ir.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type_name, label, spec_hash, engine_version, ir_version
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.Session{}
	for rows.Next() {
		var sess ir.Session
		if err := rows.Scan(&sess.ID, &sess.TypeName, &sess.Label, &sess.SpecHash, &sess.EngineVersion, &sess.IRVersion); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadAssignments returns a session's assignments ordered by seq.
func (s *Store) ReadAssignments(ctx context.Context, sessionID string) ([]ir.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, property, value, changed
		FROM assignments
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	assignments := []ir.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}

// ReadNotifications returns a session's notifications ordered by seq.
func (s *Store) ReadNotifications(ctx context.Context, sessionID string) ([]ir.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, cause, property, kind
		FROM notifications
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []ir.Notification{}
	for rows.Next() {
		var n ir.Notification
		var kind string
		if err := rows.Scan(&n.SessionID, &n.Seq, &n.Cause, &n.Property, &kind); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = ir.NotificationKind(kind)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, nil
}

// CountNotifications returns how many times property was notified in a
// session.
func (s *Store) CountNotifications(ctx context.Context, sessionID, property string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE session_id = ? AND property = ?
	`, sessionID, property).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

func scanAssignment(rows *sql.Rows) (ir.Assignment, error) {
	var a ir.Assignment
	var valueJSON string
	if err := rows.Scan(&a.SessionID, &a.Seq, &a.Property, &valueJSON, &a.Changed); err != nil {
		return ir.Assignment{}, fmt.Errorf("scan assignment: %w", err)
	}
	v, err := unmarshalValue(valueJSON)
	if err != nil {
		return ir.Assignment{}, err
	}
	a.Value = v
	return a, nil
}
