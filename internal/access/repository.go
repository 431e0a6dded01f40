package access

import (
	"context"
	"database/sql"
	"errors"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, email, fullName string, reason *string) (*AccessRequest, error)
	GetByID(ctx context.Context, id string) (*AccessRequest, error)
	List(ctx context.Context) ([]*AccessRequest, error)
	// MarkReviewed transitions a pending request to the given status. It
	// fails with a State error when the request was already reviewed.
	MarkReviewed(ctx context.Context, id, status string, adminNotes *string) (*AccessRequest, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const requestColumns = "id, email, full_name, reason, status, admin_notes, created_at, reviewed_at"

func scanRequest(row interface{ Scan(...interface{}) error }) (*AccessRequest, error) {
	var r AccessRequest
	err := row.Scan(
		&r.ID, &r.Email, &r.FullName, &r.Reason,
		&r.Status, &r.AdminNotes, &r.CreatedAt, &r.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *repository) Create(ctx context.Context, email, fullName string, reason *string) (*AccessRequest, error) {
	log := logger.FromCtx(ctx)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO access_requests (email, full_name, reason)
		VALUES ($1, $2, $3)
		RETURNING `+requestColumns+`
	`, email, fullName, reason)

	req, err := scanRequest(row)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return nil, apperr.New(apperr.Validation, "an access request for this email already exists")
	}
	if err != nil {
		log.Error("DB query failed CreateAccessRequest", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to create access request", err)
	}

	return req, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*AccessRequest, error) {
	log := logger.FromCtx(ctx)

	row := r.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM access_requests
		WHERE id = $1
	`, id)

	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "access request not found")
	}
	if err != nil {
		log.Error("DB query failed GetAccessRequest", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to fetch access request", err)
	}

	return req, nil
}

func (r *repository) List(ctx context.Context) ([]*AccessRequest, error) {
	log := logger.FromCtx(ctx)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestColumns+`
		FROM access_requests
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Error("DB query failed ListAccessRequests", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to list access requests", err)
	}
	defer rows.Close()

	requests := []*AccessRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Upstream, "failed to list access requests", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// MarkReviewed guards the transition in SQL: the WHERE clause only matches a
// pending row, so two concurrent reviews cannot both win.
func (r *repository) MarkReviewed(ctx context.Context, id, status string, adminNotes *string) (*AccessRequest, error) {
	log := logger.FromCtx(ctx)

	row := r.db.QueryRowContext(ctx, `
		UPDATE access_requests
		SET status = $2, admin_notes = $3, reviewed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns+`
	`, id, status, adminNotes)

	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the id is unknown or the request was reviewed already;
		// disambiguate for the caller.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.New(apperr.State, "this request has already been reviewed")
	}
	if err != nil {
		log.Error("DB query failed MarkReviewed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to update access request", err)
	}

	return req, nil
}
