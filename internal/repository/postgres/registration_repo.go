package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventregistration/internal/domain"
)

const uniqueViolation = "23505"

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository returns a domain.RegistrationRepository implemented with Postgres.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	metadata, err := marshalMetadata(reg.Metadata)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO registrations
			(full_name, email, phone, company, plus_one, plus_one_full_name,
			 status, edit_token, edit_token_expires_at, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		reg.FullName, reg.Email, reg.Phone, reg.Company, reg.PlusOne, reg.PlusOneFullName,
		reg.Status, reg.EditToken, reg.EditTokenExpiresAt, metadata, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByToken(ctx context.Context, token string) (*domain.Registration, error) {
	query := `
		SELECT id, full_name, email, phone, company, plus_one, plus_one_full_name,
		       status, edit_token, edit_token_expires_at, metadata, created_at, updated_at
		FROM registrations
		WHERE edit_token = $1
	`
	reg := &domain.Registration{}
	var metadata []byte
	err := r.DB.QueryRowContext(ctx, query, token).Scan(
		&reg.ID, &reg.FullName, &reg.Email, &reg.Phone, &reg.Company,
		&reg.PlusOne, &reg.PlusOneFullName, &reg.Status, &reg.EditToken,
		&reg.EditTokenExpiresAt, &metadata, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalMetadata(metadata, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) UpdateByID(ctx context.Context, id string, upd *domain.RegistrationUpdate, newToken string, newExpiresAt, updatedAt time.Time) error {
	query := `
		UPDATE registrations
		SET full_name = $1, phone = $2, company = $3,
		    plus_one = $4, plus_one_full_name = $5,
		    status = $6, edit_token = $7, edit_token_expires_at = $8, updated_at = $9
		WHERE id = $10
	`
	res, err := r.DB.ExecContext(ctx, query,
		upd.FullName, upd.Phone, upd.Company, upd.PlusOne, upd.PlusOneFullName,
		domain.StatusUpdated, newToken, newExpiresAt, updatedAt, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Registration, error) {
	query := `
		SELECT id, full_name, email, phone, company, plus_one, plus_one_full_name,
		       status, edit_token, edit_token_expires_at, metadata, created_at, updated_at
		FROM registrations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		reg := &domain.Registration{}
		var metadata []byte
		if err := rows.Scan(
			&reg.ID, &reg.FullName, &reg.Email, &reg.Phone, &reg.Company,
			&reg.PlusOne, &reg.PlusOneFullName, &reg.Status, &reg.EditToken,
			&reg.EditTokenExpiresAt, &metadata, &reg.CreatedAt, &reg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := unmarshalMetadata(metadata, reg); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (r *registrationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

func unmarshalMetadata(raw []byte, reg *domain.Registration) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &reg.Metadata); err != nil {
		return fmt.Errorf("unmarshal metadata: %w", err)
	}
	return nil
}
