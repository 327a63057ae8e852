package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/dcode-ide/apiserver/types"
)

// ProjectRepository handles persistence for projects in PostgreSQL.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, language, code, owner_id, version, created_at, updated_at`

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]types.Project, error) {
	const query = `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		if missingRow(err) {
			return []types.Project{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	projects := make([]types.Project, 0)
	for rows.Next() {
		var project types.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Language,
			&project.Code,
			&project.OwnerID,
			&project.Version,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id, ownerID string) (types.Project, error) {
	const query = `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1 AND owner_id = $2`
	return scanProject(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (types.Project, error) {
	const query = `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1`
	return scanProject(r.db.QueryRowContext(ctx, query, id))
}

func (r *ProjectRepository) Create(ctx context.Context, project types.Project) (types.Project, error) {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	const query = `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.Name,
		project.Language,
		project.Code,
		project.OwnerID,
		project.Version,
		project.CreatedAt,
		project.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return types.Project{}, ErrDuplicate
		}
		return types.Project{}, err
	}
	return project, nil
}

func (r *ProjectRepository) UpdateCode(ctx context.Context, id, ownerID, code string) error {
	const query = `
		UPDATE projects
		SET code = $1,
			updated_at = $2
		WHERE id = $3 AND owner_id = $4`
	return execAffectingOne(ctx, r.db, query, code, time.Now(), id, ownerID)
}

func (r *ProjectRepository) UpdateName(ctx context.Context, id, ownerID, name string) error {
	const query = `
		UPDATE projects
		SET name = $1,
			updated_at = $2
		WHERE id = $3 AND owner_id = $4`
	return execAffectingOne(ctx, r.db, query, name, time.Now(), id, ownerID)
}

func (r *ProjectRepository) Delete(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM projects WHERE id = $1 AND owner_id = $2`
	return execAffectingOne(ctx, r.db, query, id, ownerID)
}

func scanProject(row *sql.Row) (types.Project, error) {
	var project types.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Language,
		&project.Code,
		&project.OwnerID,
		&project.Version,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if missingRow(err) {
			return types.Project{}, ErrNotFound
		}
		return types.Project{}, err
	}
	return project, nil
}

func execAffectingOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		if missingRow(err) {
			return ErrNotFound
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
