package presentations

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPresentationRepository persists presentations through go-repository-bun.
type BunPresentationRepository struct {
	db   *bun.DB
	repo repository.Repository[*Presentation]
}

func NewBunPresentationRepository(db *bun.DB) *BunPresentationRepository {
	return NewBunPresentationRepositoryWithCache(db, nil, nil)
}

// NewBunPresentationRepositoryWithCache constructs the repository with an
// optional read-through cache layer.
func NewBunPresentationRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPresentationRepository {
	base := NewPresentationRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunPresentationRepository{db: db, repo: wrapped}
}

func (r *BunPresentationRepository) Create(ctx context.Context, record *Presentation) (*Presentation, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("presentation repository error: %w", err)
	}
	return created, nil
}

func (r *BunPresentationRepository) GetByID(ctx context.Context, id uuid.UUID) (*Presentation, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "presentation", id.String())
	}
	return record, nil
}

func (r *BunPresentationRepository) Update(ctx context.Context, record *Presentation) (*Presentation, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "presentation", record.ID.String())
	}
	return updated, nil
}

// Delete removes the presentation and all of its version rows in a single
// transaction. The version delete runs first so the foreign key holds on
// engines without ON DELETE CASCADE.
func (r *BunPresentationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PresentationVersion)(nil)).
			Where("?TableAlias.presentation_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*Presentation)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete presentation: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("presentation repository error: %w", err)
	}
	return affected > 0, nil
}

// BunVersionRepository persists ledger rows through go-repository-bun.
type BunVersionRepository struct {
	repo repository.Repository[*PresentationVersion]
}

func NewBunVersionRepository(db *bun.DB) *BunVersionRepository {
	return NewBunVersionRepositoryWithCache(db, nil, nil)
}

func NewBunVersionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunVersionRepository {
	base := NewVersionRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunVersionRepository{repo: wrapped}
}

func (r *BunVersionRepository) Create(ctx context.Context, record *PresentationVersion) (*PresentationVersion, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("version repository error: %w", err)
	}
	return created, nil
}

func (r *BunVersionRepository) ListByPresentation(ctx context.Context, presentationID uuid.UUID) ([]*PresentationVersion, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.presentation_id = ?", presentationID).
				OrderExpr("?TableAlias.version_id DESC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("version repository error: %w", err)
	}
	return records, nil
}

func (r *BunVersionRepository) Get(ctx context.Context, presentationID uuid.UUID, versionID string) (*PresentationVersion, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.presentation_id = ?", presentationID).
				Where("?TableAlias.version_id = ?", versionID)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("version repository error: %w", err)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "version", Key: fmt.Sprintf("%s:%s", presentationID, versionID)}
	}
	return records[0], nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

var (
	_ PresentationRepository = (*BunPresentationRepository)(nil)
	_ VersionRepository      = (*BunVersionRepository)(nil)
)
