package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"agencyhub/internal/model"
)

type NotificationAttemptRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationAttemptRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationAttemptRepository {
	return &NotificationAttemptRepository{db: db, logger: logger}
}

func (r *NotificationAttemptRepository) Insert(ctx context.Context, a *model.NotificationAttempt) error {
	query := `
		INSERT INTO notification_attempts (lead_id, project_id, audience, provider, to_number, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		a.LeadID,
		a.ProjectID,
		a.Audience,
		a.Provider,
		a.ToNumber,
		a.Status,
		a.Error,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to record notification attempt", zap.Error(err))
		return translate("insert notification attempt", err)
	}
	return nil
}

// FindByLeadID returns attempts for a lead and for the project converted
// from it, oldest first.
func (r *NotificationAttemptRepository) FindByLeadID(ctx context.Context, leadID string) ([]model.NotificationAttempt, error) {
	query := `
		SELECT a.id, a.lead_id, a.project_id, a.audience, a.provider, a.to_number, a.status, a.error, a.created_at
		FROM notification_attempts a
		WHERE a.lead_id = $1
		   OR a.project_id IN (SELECT id FROM projects WHERE lead_id = $1)
		ORDER BY a.created_at ASC
	`

	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, translate("list notification attempts", err)
	}
	defer rows.Close()

	var attempts []model.NotificationAttempt
	for rows.Next() {
		var a model.NotificationAttempt
		if err := rows.Scan(
			&a.ID,
			&a.LeadID,
			&a.ProjectID,
			&a.Audience,
			&a.Provider,
			&a.ToNumber,
			&a.Status,
			&a.Error,
			&a.CreatedAt,
		); err != nil {
			return nil, translate("scan notification attempt", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, translate("list notification attempts", rows.Err())
}
