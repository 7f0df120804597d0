package repository

import (
	"context"

	"shiftmatch/internal/database"
	"shiftmatch/internal/domain/job"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (job.Branch, error)
}

type PostgresBranchRepository struct {
	db database.DB
}

func NewPostgresBranchRepository(db database.DB) *PostgresBranchRepository {
	return &PostgresBranchRepository{db: db}
}

func (r *PostgresBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (job.Branch, error) {
	var b job.Branch
	err := r.db.QueryRow(ctx,
		`SELECT br.id, br.business_id, bz.name, br.name, br.address, br.latitude, br.longitude, br.created_at
		 FROM branches br
		 JOIN businesses bz ON bz.id = br.business_id
		 WHERE br.id = $1`,
		id,
	).Scan(&b.ID, &b.BusinessID, &b.BusinessName, &b.Name, &b.Address, &b.Latitude, &b.Longitude, &b.CreatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return job.Branch{}, ErrNotFound
		}
		return job.Branch{}, errors.Wrap(err, "find branch")
	}
	return b, nil
}
