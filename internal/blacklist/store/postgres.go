package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"flagdesk/internal/blacklist/models"
	"flagdesk/internal/blacklist/query"
	id "flagdesk/pkg/domain"
	"flagdesk/pkg/platform/sentinel"
)

// Postgres persists entries in PostgreSQL via database/sql.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed entry store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const entryColumns = `id, company_id, creator_user_id, first_name, last_name, id_number,
	phone, email, face_image_url, id_document_urls, reason, status, is_blacklisted,
	blacklist_score, created_at, updated_at`

// Insert stores a new entry.
func (s *Postgres) Insert(ctx context.Context, entry *models.Entry) error {
	const stmt = `
		INSERT INTO blacklist_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.db.ExecContext(ctx, stmt,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.CompanyID),
		uuid.UUID(entry.CreatorUserID),
		entry.FirstName,
		entry.LastName,
		entry.IDNumber,
		entry.Phone,
		entry.Email,
		entry.FaceImageURL,
		pq.Array(entry.IDDocumentURLs),
		entry.Reason,
		string(entry.Status),
		entry.IsBlacklisted,
		entry.BlacklistScore,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// FindByID returns the entry or sentinel.ErrNotFound.
func (s *Postgres) FindByID(ctx context.Context, entryID id.EntryID) (*models.Entry, error) {
	stmt := `SELECT ` + entryColumns + ` FROM blacklist_entries WHERE id = $1`
	entry, err := scanEntry(s.db.QueryRowContext(ctx, stmt, uuid.UUID(entryID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	return entry, nil
}

// FindMany returns the page of entries matching every predicate.
func (s *Postgres) FindMany(ctx context.Context, predicates query.Set, order query.Order, limit, offset int) ([]*models.Entry, error) {
	where, args := compilePredicates(predicates)

	stmt := `SELECT ` + entryColumns + ` FROM blacklist_entries` + where +
		orderClause(order) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Count returns how many entries match every predicate.
func (s *Postgres) Count(ctx context.Context, predicates query.Set) (int, error) {
	where, args := compilePredicates(predicates)
	stmt := `SELECT COUNT(*) FROM blacklist_entries` + where

	var count int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Execute runs a validate-then-mutate update with the row locked, so
// concurrent mutations of the same entry serialize instead of losing
// writes.
func (s *Postgres) Execute(ctx context.Context, entryID id.EntryID, validate func(*models.Entry) error, mutate func(*models.Entry)) (*models.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin entry update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt := `SELECT ` + entryColumns + ` FROM blacklist_entries WHERE id = $1 FOR UPDATE`
	entry, err := scanEntry(tx.QueryRowContext(ctx, stmt, uuid.UUID(entryID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock entry: %w", err)
	}

	if validate != nil {
		if err := validate(entry); err != nil {
			return nil, err
		}
	}
	mutate(entry)

	const update = `
		UPDATE blacklist_entries
		SET first_name = $2, last_name = $3, id_number = $4, phone = $5, email = $6,
			face_image_url = $7, id_document_urls = $8, reason = $9, status = $10,
			is_blacklisted = $11, blacklist_score = $12, updated_at = $13
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(entry.ID),
		entry.FirstName,
		entry.LastName,
		entry.IDNumber,
		entry.Phone,
		entry.Email,
		entry.FaceImageURL,
		pq.Array(entry.IDDocumentURLs),
		entry.Reason,
		string(entry.Status),
		entry.IsBlacklisted,
		entry.BlacklistScore,
		entry.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit entry update: %w", err)
	}
	return entry, nil
}

// Delete hard-deletes the entry, reporting whether it existed.
func (s *Postgres) Delete(ctx context.Context, entryID id.EntryID) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blacklist_entries WHERE id = $1`, uuid.UUID(entryID))
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		entry      models.Entry
		rawID      uuid.UUID
		rawCompany uuid.UUID
		rawCreator uuid.UUID
		documents  pq.StringArray
		rawStatus  string
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(
		&rawID,
		&rawCompany,
		&rawCreator,
		&entry.FirstName,
		&entry.LastName,
		&entry.IDNumber,
		&entry.Phone,
		&entry.Email,
		&entry.FaceImageURL,
		&documents,
		&entry.Reason,
		&rawStatus,
		&entry.IsBlacklisted,
		&entry.BlacklistScore,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	entry.ID = id.EntryID(rawID)
	entry.CompanyID = id.CompanyID(rawCompany)
	entry.CreatorUserID = id.UserID(rawCreator)
	entry.IDDocumentURLs = []string(documents)
	entry.Status = models.Status(rawStatus)
	entry.CreatedAt = createdAt
	entry.UpdatedAt = updatedAt
	return &entry, nil
}

// compilePredicates turns a predicate set into a WHERE clause. Field names
// come from this package's constants, never from callers, so interpolating
// them is safe.
func compilePredicates(predicates query.Set) (string, []any) {
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
			args = append(args, eqValue(p.Value))
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

func eqValue(v any) any {
	if companyID, ok := v.(id.CompanyID); ok {
		return uuid.UUID(companyID)
	}
	return v
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func orderClause(order query.Order) string {
	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}
	clause := fmt.Sprintf(" ORDER BY %s %s", order.Field, direction)
	if order.TiebreakField != "" {
		clause += fmt.Sprintf(", %s %s", order.TiebreakField, direction)
	}
	return clause
}
