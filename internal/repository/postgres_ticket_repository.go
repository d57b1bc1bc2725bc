package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civicguard/internal/domain"
)

type postgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates the pgx-backed repository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

const ticketColumns = `id, issue_class, severity, lat, lng, address, status,
               authority_name, authority_ticket_id, contact, media_url, dispatched,
               created_at, updated_at`

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, issue_class, severity, lat, lng, address, status, authority_name, authority_ticket_id, contact, media_url, dispatched)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.IssueClass,
		ticket.Severity,
		ticket.Lat,
		ticket.Lng,
		ticket.Address,
		ticket.Status,
		ticket.AuthorityName,
		ticket.AuthorityTicketID,
		ticket.Contact,
		ticket.MediaURL,
		ticket.Dispatched,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	ticket, err := r.fetchSingle(ctx, query, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ticket, err
}

func (r *postgresTicketRepository) Update(ctx context.Context, id string, changes TicketChanges) (*domain.Ticket, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if changes.Status != nil {
		args = append(args, *changes.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if changes.Address != nil {
		args = append(args, *changes.Address)
		sets = append(sets, fmt.Sprintf("address=$%d", len(args)))
	}
	if changes.AuthorityName != nil {
		args = append(args, *changes.AuthorityName)
		sets = append(sets, fmt.Sprintf("authority_name=$%d", len(args)))
	}
	if changes.AuthorityTicketID != nil {
		args = append(args, *changes.AuthorityTicketID)
		sets = append(sets, fmt.Sprintf("authority_ticket_id=$%d", len(args)))
	}
	if changes.Dispatched != nil {
		args = append(args, *changes.Dispatched)
		sets = append(sets, fmt.Sprintf("dispatched=$%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)

	ticket, err := r.fetchSingle(ctx, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ticket, err
}

func (r *postgresTicketRepository) List(ctx context.Context, filter TicketFilter) (int, []domain.Ticket, error) {
	clampPage(&filter)

	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.IssueClass != nil {
		args = append(args, *filter.IssueClass)
		clauses = append(clauses, fmt.Sprintf("issue_class=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items, err := scanTickets(rows)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *postgresTicketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.IssueClass,
		&ticket.Severity,
		&ticket.Lat,
		&ticket.Lng,
		&ticket.Address,
		&ticket.Status,
		&ticket.AuthorityName,
		&ticket.AuthorityTicketID,
		&ticket.Contact,
		&ticket.MediaURL,
		&ticket.Dispatched,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.IssueClass,
			&ticket.Severity,
			&ticket.Lat,
			&ticket.Lng,
			&ticket.Address,
			&ticket.Status,
			&ticket.AuthorityName,
			&ticket.AuthorityTicketID,
			&ticket.Contact,
			&ticket.MediaURL,
			&ticket.Dispatched,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
