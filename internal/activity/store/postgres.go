package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flagdesk/internal/activity"
	"flagdesk/internal/blacklist/query"
	id "flagdesk/pkg/domain"
)

// Postgres persists activity events in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const eventColumns = `id, user_id, action, resource_type, resource_id, details, created_at`

// Append implements activity.Sink.
func (s *Postgres) Append(ctx context.Context, event activity.Event) error {
	const stmt = `
		INSERT INTO activity_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, stmt,
		uuid.UUID(event.ID),
		uuid.UUID(event.UserID),
		event.Action,
		event.ResourceType,
		nullString(event.ResourceID),
		nullString(event.Details),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}

// FindMany returns the page of events matching every predicate.
func (s *Postgres) FindMany(ctx context.Context, predicates query.Set, order query.Order, limit, offset int) ([]activity.Event, error) {
	where, args := compile(predicates)
	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}
	stmt := `SELECT ` + eventColumns + ` FROM activity_events` + where +
		fmt.Sprintf(" ORDER BY created_at %s, id %s LIMIT $%d OFFSET $%d",
			direction, direction, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	events := []activity.Event{}
	for rows.Next() {
		var (
			event      activity.Event
			rawID      uuid.UUID
			rawUser    uuid.UUID
			resourceID sql.NullString
			details    sql.NullString
			createdAt  time.Time
		)
		if err := rows.Scan(&rawID, &rawUser, &event.Action, &event.ResourceType, &resourceID, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		event.ID = id.ActivityID(rawID)
		event.UserID = id.UserID(rawUser)
		event.ResourceID = resourceID.String
		event.Details = details.String
		event.Timestamp = createdAt
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	return events, nil
}

// Count returns how many events match every predicate.
func (s *Postgres) Count(ctx context.Context, predicates query.Set) (int, error) {
	where, args := compile(predicates)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_events`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count activity events: %w", err)
	}
	return count, nil
}

func compile(predicates query.Set) (string, []any) {
	if len(predicates) == 0 {
		return "", nil
	}
	var (
		clauses []string
		args    []any
	)
	for _, p := range predicates {
		switch p.Op {
		case query.OpEq:
			args = append(args, p.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", p.Field, len(args)))
		case query.OpGte:
			args = append(args, p.Value)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", p.Field, len(args)))
		case query.OpLte:
			args = append(args, p.Value)
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", p.Field, len(args)))
		case query.OpSearch:
			needle, _ := p.Value.(string)
			args = append(args, "%"+escapeLike(needle)+"%")
			var alternatives []string
			for _, field := range p.Fields {
				alternatives = append(alternatives, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, field, len(args)))
			}
			clauses = append(clauses, "("+strings.Join(alternatives, " OR ")+")")
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
