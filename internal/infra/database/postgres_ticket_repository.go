package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moderation_relay_bot/internal/domain/ticket"

	"github.com/lib/pq" // for error codes and driver registration
)

// Aliases for the shared repository sentinels.
var ErrTicketNotFound = ticket.ErrNotFound
var ErrDuplicateTicketID = ticket.ErrDuplicateID

type PostgresTicketRepository struct {
	db *sql.DB
}

func NewPostgresTicketRepository(db *sql.DB) *PostgresTicketRepository {
	return &PostgresTicketRepository{db: db}
}

func (r *PostgresTicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := `INSERT INTO tickets (id, submitter_ref, category, preview, content_chat, content_msg, status, outcome, claimed_by, claimed_by_id)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.SubmitterRef, t.Category, t.Preview,
		t.Content.ChatID, t.Content.MessageID,
		t.Status, t.Outcome, t.ClaimedBy, t.ClaimedByID,
	).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTicketID
		}
		return fmt.Errorf("error creating ticket: %w", err)
	}
	return nil
}

func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	query := `SELECT id, submitter_ref, category, preview, content_chat, content_msg,
                      status, outcome, claimed_by, claimed_by_id, created_at, claimed_at
               FROM tickets WHERE id = $1`

	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("error getting ticket by id: %w", err)
	}

	views, err := r.listViews(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Views = views
	return t, nil
}

func (r *PostgresTicketRepository) AddView(ctx context.Context, id string, view ticket.ModeratorView) error {
	query := `INSERT INTO ticket_views (ticket_id, destination, message_id)
               VALUES ($1, $2, $3)
               ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, id, view.Destination, view.MessageID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("error adding ticket view: %w", err)
	}
	return nil
}

// ClaimPending is the single conditional write that implements the atomic
// claim: the WHERE clause on status makes concurrent claims on one ticket id
// resolve to exactly one winner inside the database.
func (r *PostgresTicketRepository) ClaimPending(ctx context.Context, id string, newStatus ticket.Status, outcome ticket.OutcomeKind, moderatorID int64, moderatorName string) (bool, error) {
	query := `UPDATE tickets
               SET status = $2, outcome = $3, claimed_by_id = $4, claimed_by = $5, claimed_at = NOW()
               WHERE id = $1 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, id, newStatus, outcome, moderatorID, moderatorName, ticket.StatusPending)
	if err != nil {
		return false, fmt.Errorf("error claiming ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading claim result: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresTicketRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading delete result: %w", err)
	}
	if affected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *PostgresTicketRepository) ListAwaitingReasonBefore(ctx context.Context, cutoff time.Time) ([]*ticket.Ticket, error) {
	query := `SELECT id, submitter_ref, category, preview, content_chat, content_msg,
                      status, outcome, claimed_by, claimed_by_id, created_at, claimed_at
               FROM tickets
               WHERE status = $1 AND claimed_at < $2
               ORDER BY claimed_at ASC` // oldest claims first

	rows, err := r.db.QueryContext(ctx, query, ticket.StatusAwaitingReason, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying stale tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*ticket.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning stale ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stale tickets: %w", err)
	}
	return tickets, nil
}

func (r *PostgresTicketRepository) listViews(ctx context.Context, id string) ([]ticket.ModeratorView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT destination, message_id FROM ticket_views WHERE ticket_id = $1 ORDER BY destination`, id)
	if err != nil {
		return nil, fmt.Errorf("error querying ticket views: %w", err)
	}
	defer rows.Close()

	views := make([]ticket.ModeratorView, 0)
	for rows.Next() {
		var v ticket.ModeratorView
		if err := rows.Scan(&v.Destination, &v.MessageID); err != nil {
			return nil, fmt.Errorf("error scanning ticket view: %w", err)
		}
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket views: %w", err)
	}
	return views, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*ticket.Ticket, error) {
	t := &ticket.Ticket{}
	var claimedAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.SubmitterRef, &t.Category, &t.Preview,
		&t.Content.ChatID, &t.Content.MessageID,
		&t.Status, &t.Outcome, &t.ClaimedBy, &t.ClaimedByID,
		&t.CreatedAt, &claimedAt,
	)
	if err != nil {
		return nil, err
	}
	if claimedAt.Valid {
		t.ClaimedAt = claimedAt.Time
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	return hasPqCode(err, "23505")
}

func isForeignKeyViolation(err error) bool {
	return hasPqCode(err, "23503")
}

func hasPqCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
