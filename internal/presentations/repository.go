package presentations

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PresentationRepository abstracts storage for live presentation documents.
type PresentationRepository interface {
	Create(ctx context.Context, record *Presentation) (*Presentation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Presentation, error)
	Update(ctx context.Context, record *Presentation) (*Presentation, error)
	// Delete removes the presentation and its version rows. The returned
	// bool reports whether a row existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// VersionRepository abstracts the append-only version ledger. There is no
// update or delete for individual versions; rows only leave the ledger when
// their presentation is deleted.
type VersionRepository interface {
	Create(ctx context.Context, record *PresentationVersion) (*PresentationVersion, error)
	// ListByPresentation returns all versions newest first. Unknown
	// presentation ids yield an empty slice, not an error.
	ListByPresentation(ctx context.Context, presentationID uuid.UUID) ([]*PresentationVersion, error)
	Get(ctx context.Context, presentationID uuid.UUID, versionID string) (*PresentationVersion, error)
}

func NewPresentationRepository(db *bun.DB) repository.Repository[*Presentation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Presentation]{
		NewRecord: func() *Presentation { return &Presentation{} },
		GetID: func(p *Presentation) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Presentation, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(p *Presentation) string {
			if p == nil {
				return ""
			}
			return p.ID.String()
		},
	})
}

func NewVersionRepository(db *bun.DB) repository.Repository[*PresentationVersion] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PresentationVersion]{
		NewRecord: func() *PresentationVersion { return &PresentationVersion{} },
		GetID: func(v *PresentationVersion) uuid.UUID {
			return v.ID
		},
		SetID: func(v *PresentationVersion, id uuid.UUID) {
			v.ID = id
		},
		GetIdentifier: func() string {
			return "version_id"
		},
		GetIdentifierValue: func(v *PresentationVersion) string {
			if v == nil {
				return ""
			}
			return v.VersionID
		},
	})
}
