package presentations

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Slide is a single slide in a presentation deck. Content carries the
// layout-specific fields (headings, bullet lists, image refs) as an opaque
// document; the service only validates the envelope.
type Slide struct {
	Layout          string         `json:"layout"`
	Content         map[string]any `json:"content,omitempty"`
	BackgroundColor string         `json:"background_color,omitempty"`
	BackgroundImage string         `json:"background_image,omitempty"`
}

// Presentation is the live, mutable presentation document. Slides persist
// as a single JSON column; slide edits always rewrite the whole array.
type Presentation struct {
	bun.BaseModel `bun:"table:presentations,alias:p"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Slides       []Slide   `bun:"slides,type:jsonb,notnull" json:"slides"`
	RestoredFrom *string   `bun:"restored_from" json:"restored_from,omitempty"`
	CreatedBy    string    `bun:"created_by" json:"created_by,omitempty"`
	UpdatedBy    string    `bun:"updated_by" json:"updated_by,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Versions []*PresentationVersion `bun:"rel:has-many,join:id=presentation_id" json:"versions,omitempty"`
}

// Clone deep-copies the presentation so snapshots and cache entries never
// alias live slide maps.
func (p *Presentation) Clone() *Presentation {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Slides = cloneSlides(p.Slides)
	if p.RestoredFrom != nil {
		restored := *p.RestoredFrom
		clone.RestoredFrom = &restored
	}
	clone.Versions = nil
	return &clone
}

// PresentationVersion is one append-only ledger entry: a full snapshot of
// the presentation as it existed when the version was recorded. Rows are
// never updated after insert.
type PresentationVersion struct {
	bun.BaseModel `bun:"table:presentation_versions,alias:pv"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PresentationID uuid.UUID `bun:"presentation_id,notnull,type:uuid" json:"presentation_id"`
	VersionID      string    `bun:"version_id,notnull" json:"version_id"`
	Snapshot       Snapshot  `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	CreatedBy      string    `bun:"created_by" json:"created_by,omitempty"`
	ChangeSummary  *string   `bun:"change_summary" json:"change_summary,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Snapshot is the frozen document stored inside a version record.
type Snapshot struct {
	Title        string    `json:"title"`
	Slides       []Slide   `json:"slides"`
	RestoredFrom *string   `json:"restored_from,omitempty"`
	UpdatedBy    string    `json:"updated_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VersionMeta is the listing projection of a version record: everything
// except the snapshot payload.
type VersionMeta struct {
	VersionID     string     `json:"version_id"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatedBy     string     `json:"created_by,omitempty"`
	ChangeSummary *string    `json:"change_summary,omitempty"`
	SlideCount    int        `json:"slide_count"`
}

// SlidePatch carries a partial slide edit. Nil pointer fields are left
// unchanged; Content keys merge into the existing content map.
type SlidePatch struct {
	Layout          *string        `json:"layout,omitempty"`
	Content         map[string]any `json:"content,omitempty"`
	BackgroundColor *string        `json:"background_color,omitempty"`
	BackgroundImage *string        `json:"background_image,omitempty"`
}

func cloneSlides(slides []Slide) []Slide {
	if slides == nil {
		return nil
	}
	out := make([]Slide, len(slides))
	for i, slide := range slides {
		out[i] = slide
		if slide.Content != nil {
			content := make(map[string]any, len(slide.Content))
			for k, v := range slide.Content {
				content[k] = v
			}
			out[i].Content = content
		}
	}
	return out
}
