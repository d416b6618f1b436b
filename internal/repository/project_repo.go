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

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = `id, short_id, client_name, project_name, description, status,
	estimated_completion, client_phone, lead_id, created_at, updated_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.ShortID,
		&p.ClientName,
		&p.ProjectName,
		&p.Description,
		&p.Status,
		&p.EstimatedCompletion,
		&p.ClientPhone,
		&p.LeadID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert stores p and fills in its timestamps.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.String("id", p.ID),
		zap.String("short_id", p.ShortID),
	)

	query := `
		INSERT INTO projects (id, short_id, client_name, project_name, description, status,
			estimated_completion, client_phone, lead_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := otel.Query(ctx, "projects.insert", query, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query,
			p.ID,
			p.ShortID,
			p.ClientName,
			p.ProjectName,
			p.Description,
			p.Status,
			p.EstimatedCompletion,
			p.ClientPhone,
			p.LeadID,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		r.logger.Error("Failed to insert project", zap.String("id", p.ID), zap.Error(err))
		return translate("insert project", err)
	}

	r.logger.Info("Project inserted successfully",
		zap.String("id", p.ID),
		zap.String("short_id", p.ShortID),
	)
	return nil
}

func (r *ProjectRepository) findOne(ctx context.Context, op, where string, arg interface{}) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + where

	var project *model.Project
	err := otel.Query(ctx, op, query, func(ctx context.Context) error {
		var err error
		project, err = scanProject(r.db.QueryRow(ctx, query, arg))
		return err
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return project, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	return r.findOne(ctx, "projects.find_by_id", "id = $1", id)
}

// FindByShortID matches case-insensitively.
func (r *ProjectRepository) FindByShortID(ctx context.Context, shortID string) (*model.Project, error) {
	return r.findOne(ctx, "projects.find_by_short_id", "short_id = UPPER($1)", shortID)
}

func (r *ProjectRepository) FindByLeadID(ctx context.Context, leadID string) (*model.Project, error) {
	return r.findOne(ctx, "projects.find_by_lead_id", "lead_id = $1", leadID)
}

// FindAll returns every project, newest first.
func (r *ProjectRepository) FindAll(ctx context.Context) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`

	var projects []model.Project
	err := otel.Query(ctx, "projects.find_all", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			projects = append(projects, *p)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, translate("list projects", err)
	}
	return projects, nil
}

// Update writes every mutable column of p. short_id and lead_id are fixed
// at creation.
func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
		UPDATE projects SET
			client_name = $2,
			project_name = $3,
			description = $4,
			status = $5,
			estimated_completion = $6,
			client_phone = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := otel.Query(ctx, "projects.update", query, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query,
			p.ID,
			p.ClientName,
			p.ProjectName,
			p.Description,
			p.Status,
			p.EstimatedCompletion,
			p.ClientPhone,
		).Scan(&p.UpdatedAt)
	})
	if err != nil {
		return translate("update project", err)
	}

	r.logger.Info("Project updated",
		zap.String("id", p.ID),
		zap.String("status", string(p.Status)),
	)
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`

	var affected int64
	err := otel.Query(ctx, "projects.delete", query, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return translate("delete project", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete project: %w", apperr.ErrNotFound)
	}

	r.logger.Info("Project deleted", zap.String("id", id))
	return nil
}

func (r *ProjectRepository) ShortIDExists(ctx context.Context, shortID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE short_id = $1)`, shortID).Scan(&exists)
	if err != nil {
		return false, translate("check project short id", err)
	}
	return exists, nil
}
