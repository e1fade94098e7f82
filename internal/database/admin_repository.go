package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// AdminRepository handles back-office accounts
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetByEmail returns the admin or nil
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT admin_id, name, email, password_hash, role, express_id, permanent_code, created_at
		FROM admins
		WHERE LOWER(email) = LOWER($1)`

	var admin models.Admin
	err := r.db.GetContext(ctx, &admin, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}
