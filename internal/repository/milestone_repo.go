package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/internal/model"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{
		db:     db,
		logger: logger,
	}
}

const milestoneColumns = `id, project_id, title, description, status, due_date, completed_at,
	order_index, created_at, updated_at`

func scanMilestone(row pgx.Row) (*model.ProjectMilestone, error) {
	var m model.ProjectMilestone
	err := row.Scan(
		&m.ID,
		&m.ProjectID,
		&m.Title,
		&m.Description,
		&m.Status,
		&m.DueDate,
		&m.CompletedAt,
		&m.OrderIndex,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Insert stores m. A negative OrderIndex appends after the last milestone.
func (r *MilestoneRepository) Insert(ctx context.Context, m *model.ProjectMilestone) error {
	r.logger.Debug("Inserting milestone",
		zap.String("project_id", m.ProjectID),
		zap.String("title", m.Title),
		zap.Int("order_index", m.OrderIndex),
	)

	query := `
		INSERT INTO project_milestones (id, project_id, title, description, status, due_date, completed_at, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			CASE WHEN $8 >= 0 THEN $8
			     ELSE (SELECT COALESCE(MAX(order_index) + 1, 0) FROM project_milestones WHERE project_id = $2)
			END)
		RETURNING order_index, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		m.ID,
		m.ProjectID,
		m.Title,
		m.Description,
		m.Status,
		m.DueDate,
		m.CompletedAt,
		m.OrderIndex,
	).Scan(&m.OrderIndex, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return translate("insert milestone", err)
	}

	r.logger.Info("Milestone inserted successfully",
		zap.String("id", m.ID),
		zap.String("project_id", m.ProjectID),
	)
	return nil
}

func (r *MilestoneRepository) FindByID(ctx context.Context, id string) (*model.ProjectMilestone, error) {
	m, err := scanMilestone(r.db.QueryRow(ctx, `SELECT `+milestoneColumns+` FROM project_milestones WHERE id = $1`, id))
	if err != nil {
		return nil, translate("find milestone", err)
	}
	return m, nil
}

// FindByProjectID lists milestones by order_index ascending.
func (r *MilestoneRepository) FindByProjectID(ctx context.Context, projectID string) ([]model.ProjectMilestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM project_milestones
		WHERE project_id = $1
		ORDER BY order_index ASC, created_at ASC
	`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to find milestones", zap.Error(err))
		return nil, translate("list milestones", err)
	}
	defer rows.Close()

	var milestones []model.ProjectMilestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			r.logger.Error("Failed to scan milestone", zap.Error(err))
			return nil, translate("scan milestone", err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, translate("list milestones", rows.Err())
}

func (r *MilestoneRepository) Update(ctx context.Context, m *model.ProjectMilestone) error {
	query := `
		UPDATE project_milestones SET
			title = $2,
			description = $3,
			status = $4,
			due_date = $5,
			completed_at = $6,
			order_index = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		m.ID,
		m.Title,
		m.Description,
		m.Status,
		m.DueDate,
		m.CompletedAt,
		m.OrderIndex,
	).Scan(&m.UpdatedAt)
	if err != nil {
		return translate("update milestone", err)
	}
	return nil
}

func (r *MilestoneRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM project_milestones WHERE id = $1`, id)
	if err != nil {
		return translate("delete milestone", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete milestone: %w", apperr.ErrNotFound)
	}
	return nil
}
