package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/xavierca1/lead-system/internal/entity"
)

const leadColumns = `id, name, email, phone, owner_email, value, source, notes, stage, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Create insere o lead e devolve o ID gerado.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) (string, error) {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	id := uuid.New().String()
	_, err := r.DB.ExecContext(ctx, query,
		id,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		lead.Owner,
		nullFloat(lead.Value),
		nullString(lead.Source),
		nullString(lead.Notes),
		string(lead.Stage),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		if isNumericOverflow(err) {
			return "", entity.ErrValueOutOfRange
		}
		return "", fmt.Errorf("insert lead: %w", err)
	}

	return id, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Query(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Stage != nil {
		// linhas migradas ainda guardam o nome antigo do estágio
		var marks []string
		for _, name := range entity.StoredNames(*filter.Stage) {
			args = append(args, name)
			marks = append(marks, fmt.Sprintf("$%d", len(args)))
		}
		conds = append(conds, "stage IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.Owner != "" {
		args = append(args, filter.Owner)
		conds = append(conds, fmt.Sprintf("owner_email = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// UpdateStage returns false when no lead has the given id.
func (r *LeadRepository) UpdateStage(ctx context.Context, id string, stage entity.Stage) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	query := `UPDATE leads SET stage = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, string(stage), id)
	if err != nil {
		return false, fmt.Errorf("update lead stage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateFields writes only the fields present in fields. Returns false when no
// lead has the given id.
func (r *LeadRepository) UpdateFields(ctx context.Context, id string, fields entity.LeadFields) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	var (
		sets []string
		args []any
	)
	if fields.Value != nil {
		args = append(args, *fields.Value)
		sets = append(sets, fmt.Sprintf("value = $%d", len(args)))
	}
	if fields.Notes != nil {
		args = append(args, nullString(*fields.Notes))
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if isNumericOverflow(err) {
			return false, entity.ErrValueOutOfRange
		}
		return false, fmt.Errorf("update lead fields: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l                           entity.Lead
		email, phone, source, notes sql.NullString
		value                       sql.NullFloat64
		stage                       string
	)
	err := row.Scan(
		&l.ID,
		&l.Name,
		&email,
		&phone,
		&l.Owner,
		&value,
		&source,
		&notes,
		&stage,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Email = email.String
	l.Phone = phone.String
	l.Source = source.String
	l.Notes = notes.String
	if value.Valid {
		v := value.Float64
		l.Value = &v
	}

	st, ok := entity.ParseStage(stage)
	if !ok {
		log.Printf("lead %s com stage desconhecido no banco: %q", l.ID, stage)
		st = entity.Stage(stage)
	}
	l.Stage = st

	return &l, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
