package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cubeworld/supportbot/internal/queue"
)

var ErrTicketNotFound = errors.New("ticket not found")

const (
	TicketOpen   = "open"
	TicketClosed = "closed"

	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

type UserRecord struct {
	ID             string
	Platform       string
	PlatformUserID string
}

type TicketRecord struct {
	ID              string
	UserID          string
	Status          string
	NeedsSpecialist bool
	ClosedAt        time.Time
}

type MessageRecord struct {
	ID        string
	TicketID  string
	UserID    string
	Direction string
	Content   string
	CreatedAt time.Time
}

// EnsureUser returns the user for (platform, platform user id), creating the
// row on first contact.
func (s *Store) EnsureUser(ctx context.Context, platform, platformUserID string) (UserRecord, error) {
	platform = strings.TrimSpace(platform)
	platformUserID = strings.TrimSpace(platformUserID)
	if platform == "" || platformUserID == "" {
		return UserRecord{}, fmt.Errorf("ensure user: empty platform or user id")
	}

	record := UserRecord{Platform: platform, PlatformUserID: platformUserID}
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id FROM users WHERE platform = ? AND platform_user_id = ?`,
		platform, platformUserID,
	).Scan(&record.ID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, fmt.Errorf("lookup user: %w", err)
	}

	record.ID = uuid.NewString()
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (id, platform, platform_user_id) VALUES (?, ?, ?)`,
		record.ID, platform, platformUserID,
	); err != nil {
		return UserRecord{}, fmt.Errorf("insert user: %w", err)
	}
	return record, nil
}

// OpenTicket returns the user's open ticket, creating one when none exists.
func (s *Store) OpenTicket(ctx context.Context, userID string) (TicketRecord, error) {
	record := TicketRecord{UserID: userID, Status: TicketOpen}
	var needsSpecialist int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, needs_specialist FROM tickets WHERE user_id = ? AND status = ? ORDER BY created_at LIMIT 1`,
		userID, TicketOpen,
	).Scan(&record.ID, &needsSpecialist)
	if err == nil {
		record.NeedsSpecialist = needsSpecialist != 0
		return record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return TicketRecord{}, fmt.Errorf("lookup open ticket: %w", err)
	}

	record.ID = uuid.NewString()
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tickets (id, user_id, status) VALUES (?, ?, ?)`,
		record.ID, userID, TicketOpen,
	); err != nil {
		return TicketRecord{}, fmt.Errorf("insert ticket: %w", err)
	}
	return record, nil
}

func (s *Store) InsertMessage(ctx context.Context, ticketID, userID, direction, content string) error {
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO messages (id, ticket_id, user_id, direction, content, created_at_unix) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), ticketID, userID, direction, content, time.Now().UTC().Unix(),
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *Store) MarkSpecialistRequested(ctx context.Context, ticketID string) error {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE tickets SET needs_specialist = 1 WHERE id = ?`,
		ticketID,
	)
	if err != nil {
		return fmt.Errorf("mark specialist: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *Store) CloseTicket(ctx context.Context, ticketID string) error {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE tickets SET status = ?, closed_at_unix = ? WHERE id = ? AND status = ?`,
		TicketClosed, time.Now().UTC().Unix(), ticketID, TicketOpen,
	)
	if err != nil {
		return fmt.Errorf("close ticket: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// ListTickets returns tickets filtered by status, newest first. An empty
// status returns every ticket.
func (s *Store) ListTickets(ctx context.Context, status string, limit int) ([]TicketRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, user_id, status, needs_specialist, closed_at_unix
		 FROM tickets WHERE (? = '' OR status = ?) ORDER BY rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, status, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var records []TicketRecord
	for rows.Next() {
		var record TicketRecord
		var needsSpecialist int
		var closedAt sql.NullInt64
		if err := rows.Scan(&record.ID, &record.UserID, &record.Status, &needsSpecialist, &closedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		record.NeedsSpecialist = needsSpecialist != 0
		if closedAt.Valid {
			record.ClosedAt = time.Unix(closedAt.Int64, 0).UTC()
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ListMessages returns a ticket's messages in insertion order.
func (s *Store) ListMessages(ctx context.Context, ticketID string) ([]MessageRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, ticket_id, user_id, direction, content, created_at_unix
		 FROM messages WHERE ticket_id = ? ORDER BY created_at_unix, id`,
		ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var records []MessageRecord
	for rows.Next() {
		var record MessageRecord
		var content sql.NullString
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.TicketID, &record.UserID, &record.Direction, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		record.Content = content.String
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}

// Persist implements queue.Sink: ensure the user, attach the message to the
// user's open ticket, then apply the ticketing flags.
func (s *Store) Persist(ctx context.Context, item queue.Item) error {
	user, err := s.EnsureUser(ctx, item.Platform, item.UserID)
	if err != nil {
		return err
	}
	ticket, err := s.OpenTicket(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.InsertMessage(ctx, ticket.ID, user.ID, DirectionIncoming, item.Text); err != nil {
		return err
	}
	if item.CallSpecialist {
		if err := s.MarkSpecialistRequested(ctx, ticket.ID); err != nil {
			return err
		}
	}
	if item.CloseTicket {
		if err := s.CloseTicket(ctx, ticket.ID); err != nil {
			return err
		}
	}
	return nil
}
