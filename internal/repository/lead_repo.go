package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/internal/model"
	"agencyhub/pkg/otel"
)

type LeadRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLeadRepository(db *pgxpool.Pool, logger *zap.Logger) *LeadRepository {
	return &LeadRepository{
		db:     db,
		logger: logger,
	}
}

const leadColumns = `id, short_id, name, address, service_type, phone_number, project_description,
	features, budget, ai_analysis, submitted_at, processed, converted_project_id`

func scanLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	err := row.Scan(
		&l.ID,
		&l.ShortID,
		&l.Name,
		&l.Address,
		&l.ServiceType,
		&l.PhoneNumber,
		&l.ProjectDescription,
		&l.Features,
		&l.Budget,
		&l.AIAnalysis,
		&l.SubmittedAt,
		&l.Processed,
		&l.ConvertedProjectID,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) Insert(ctx context.Context, l *model.Lead) error {
	r.logger.Debug("Inserting lead",
		zap.String("id", l.ID),
		zap.String("short_id", l.ShortID),
	)

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	err := otel.Query(ctx, "leads.insert", query, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			l.ID,
			l.ShortID,
			l.Name,
			l.Address,
			l.ServiceType,
			l.PhoneNumber,
			l.ProjectDescription,
			l.Features,
			l.Budget,
			l.AIAnalysis,
			l.SubmittedAt,
			l.Processed,
			l.ConvertedProjectID,
		)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to insert lead", zap.String("id", l.ID), zap.Error(err))
		return translate("insert lead", err)
	}

	r.logger.Info("Lead inserted successfully",
		zap.String("id", l.ID),
		zap.String("short_id", l.ShortID),
	)
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	var lead *model.Lead
	err := otel.Query(ctx, "leads.find_by_id", query, func(ctx context.Context) error {
		var err error
		lead, err = scanLead(r.db.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		return nil, translate("find lead", err)
	}
	return lead, nil
}

// FindAll returns every lead, newest first.
func (r *LeadRepository) FindAll(ctx context.Context) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY submitted_at DESC`

	var leads []model.Lead
	err := otel.Query(ctx, "leads.find_all", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			l, err := scanLead(rows)
			if err != nil {
				return err
			}
			leads = append(leads, *l)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to list leads", zap.Error(err))
		return nil, translate("list leads", err)
	}
	return leads, nil
}

// Update applies patch and returns the stored row.
func (r *LeadRepository) Update(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, error) {
	query := `
		UPDATE leads SET
			processed            = COALESCE($2, processed),
			ai_analysis          = COALESCE($3, ai_analysis),
			converted_project_id = COALESCE($4, converted_project_id)
		WHERE id = $1
		RETURNING ` + leadColumns

	var lead *model.Lead
	err := otel.Query(ctx, "leads.update", query, func(ctx context.Context) error {
		var err error
		lead, err = scanLead(r.db.QueryRow(ctx, query, id, patch.Processed, patch.AIAnalysis, patch.ConvertedProjectID))
		return err
	})
	if err != nil {
		return nil, translate("update lead", err)
	}

	r.logger.Info("Lead updated", zap.String("id", id))
	return lead, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM leads WHERE id = $1`

	var affected int64
	err := otel.Query(ctx, "leads.delete", query, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return translate("delete lead", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete lead: %w", apperr.ErrNotFound)
	}

	r.logger.Info("Lead deleted", zap.String("id", id))
	return nil
}

func (r *LeadRepository) ShortIDExists(ctx context.Context, shortID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE short_id = $1)`, shortID).Scan(&exists)
	if err != nil {
		return false, translate("check lead short id", err)
	}
	return exists, nil
}
