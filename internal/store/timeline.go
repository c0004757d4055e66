package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/propdeps/internal/ir"
)

// TimelineEventType distinguishes assignments from notifications.
type TimelineEventType int

const (
	EventAssignment TimelineEventType = iota
	EventNotification
)

// String returns the event type as a string.
func (t TimelineEventType) String() string {
	switch t {
	case EventAssignment:
		return "assignment"
	case EventNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// TimelineEvent is one entry of a session timeline.
type TimelineEvent struct {
	Type         TimelineEventType
	Seq          int64
	Assignment   *ir.Assignment
	Notification *ir.Notification
}

// ReadTimeline returns a session's assignments and notifications merged
// into one seq-ordered stream.
//
// Returns sql.ErrNoRows (wrapped) if the session does not exist.
func (s *Store) ReadTimeline(ctx context.Context, sessionID string) ([]TimelineEvent, error) {
	if _, err := s.ReadSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}

	assignments, err := s.ReadAssignments(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	notifications, err := s.ReadNotifications(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	events := make([]TimelineEvent, 0, len(assignments)+len(notifications))
	for i := range assignments {
		events = append(events, TimelineEvent{
			Type:       EventAssignment,
			Seq:        assignments[i].Seq,
			Assignment: &assignments[i],
		})
	}
	for i := range notifications {
		events = append(events, TimelineEvent{
			Type:         EventNotification,
			Seq:          notifications[i].Seq,
			Notification: &notifications[i],
		})
	}

	// Seq is unique per session across both tables; type breaks ties from
	// hand-written data.
	slices.SortStableFunc(events, func(a, b TimelineEvent) int {
		if a.Seq != b.Seq {
			if a.Seq < b.Seq {
				return -1
			}
			return 1
		}
		return int(a.Type) - int(b.Type)
	})

	return events, nil
}

// LastSeq returns the highest seq used in a session, or 0 for an empty
// session. Used to resume a session's logical clock.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			(SELECT COALESCE(MAX(seq), 0) FROM assignments WHERE session_id = ?),
			(SELECT COALESCE(MAX(seq), 0) FROM notifications WHERE session_id = ?)
		)
	`, sessionID, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq for session: %w", err)
	}
	return seq, nil
}
