// Package layout provides a presentation document service: durable CRUD
// for slide decks, an append-only version ledger with point-in-time
// restore, a TTL document cache, and a best-effort mirror store for
// disaster recovery.
package layout

import (
	"context"

	"github.com/slidekit/layout/internal/di"
	"github.com/slidekit/layout/internal/httpapi"
	"github.com/slidekit/layout/internal/presentations"
	"github.com/slidekit/layout/pkg/interfaces"
)

// Service exports the presentation document service contract.
type Service = presentations.Service

// LedgerService exports the version ledger contract.
type LedgerService = presentations.LedgerService

// Presentation exports the live document model.
type Presentation = presentations.Presentation

// Slide exports the slide model.
type Slide = presentations.Slide

// Snapshot exports the frozen version payload.
type Snapshot = presentations.Snapshot

// VersionMeta exports the version listing projection.
type VersionMeta = presentations.VersionMeta

// Request types re-exported for embedders.
type (
	CreateRequest      = presentations.CreateRequest
	CreateResult       = presentations.CreateResult
	UpdateRequest      = presentations.UpdateRequest
	UpdateSlideRequest = presentations.UpdateSlideRequest
	SlidePatch         = presentations.SlidePatch
	RecordRequest      = presentations.RecordRequest
	RestoreRequest     = presentations.RestoreRequest
)

// Module represents the top level layout service runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a layout module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Presentations returns the document service.
func (m *Module) Presentations() Service {
	return m.container.Service()
}

// Versions returns the version ledger service.
func (m *Module) Versions() LedgerService {
	return m.container.Service()
}

// HTTPAPI returns the REST surface registrar.
func (m *Module) HTTPAPI() *httpapi.API {
	return m.container.HTTPAPI()
}

// LoggerProvider returns the configured logging provider.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.container.LoggerProvider()
}

// Close releases module resources.
func (m *Module) Close(ctx context.Context) error {
	return m.container.Close(ctx)
}
