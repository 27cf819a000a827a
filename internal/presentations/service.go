package presentations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slidekit/layout/internal/cache"
	"github.com/slidekit/layout/internal/idgen"
	"github.com/slidekit/layout/internal/logging"
	"github.com/slidekit/layout/internal/mirror"
	"github.com/slidekit/layout/pkg/interfaces"
)

// Service exposes presentation document use-cases.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Presentation, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Presentation, error)
	UpdateSlide(ctx context.Context, id uuid.UUID, index int, req UpdateSlideRequest) (*Presentation, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// LedgerService exposes the append-only version history.
type LedgerService interface {
	Record(ctx context.Context, presentationID uuid.UUID, req RecordRequest) (*VersionMeta, error)
	ListVersions(ctx context.Context, presentationID uuid.UUID) ([]VersionMeta, error)
	GetSnapshot(ctx context.Context, presentationID uuid.UUID, versionID string) (*Snapshot, error)
	Restore(ctx context.Context, presentationID uuid.UUID, versionID string, req RestoreRequest) (*Presentation, error)
}

// CreateRequest captures the information required to create a presentation.
type CreateRequest struct {
	Title     string
	Slides    []Slide
	CreatedBy string
}

// CreateResult is returned from Create: the stored document plus the
// shareable URL derived from its title.
type CreateResult struct {
	Presentation *Presentation
	ShareURL     string
}

// UpdateRequest captures a partial document update. Nil pointer fields are
// left unchanged.
type UpdateRequest struct {
	Title         *string
	Slides        *[]Slide
	UpdatedBy     string
	ChangeSummary *string
	// SkipVersion suppresses the automatic pre-update snapshot.
	SkipVersion bool
}

// UpdateSlideRequest captures a partial edit of a single slide.
type UpdateSlideRequest struct {
	Patch         SlidePatch
	UpdatedBy     string
	ChangeSummary *string
	SkipVersion   bool
}

// RecordRequest captures an explicit version record request.
type RecordRequest struct {
	CreatedBy     string
	ChangeSummary *string
}

// RestoreRequest captures a restore of a prior version. CreateBackup nil
// defaults to true: the current live state is versioned before it is
// overwritten.
type RestoreRequest struct {
	CreateBackup *bool
	RestoredBy   string
}

// VersionIDGenerator mints ledger identifiers for a given instant.
type VersionIDGenerator func(now time.Time) string

type service struct {
	repo     PresentationRepository
	versions VersionRepository

	documents cache.Cache
	cacheTTL  time.Duration

	mirror        mirror.Store
	mirrorTimeout time.Duration
	mirrorSync    bool

	logger interfaces.Logger
	links  *ShareLinker

	clock      func() time.Time
	nextID     func() uuid.UUID
	nextVerID  VersionIDGenerator
	versioning bool
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides presentation id generation.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.nextID = generator
		}
	}
}

// WithVersionIDGenerator overrides version id generation.
func WithVersionIDGenerator(generator VersionIDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.nextVerID = generator
		}
	}
}

// WithVersioningEnabled toggles automatic pre-update snapshots.
func WithVersioningEnabled(enabled bool) ServiceOption {
	return func(s *service) {
		s.versioning = enabled
	}
}

// WithCache injects the document cache consulted on reads.
func WithCache(c cache.Cache) ServiceOption {
	return func(s *service) {
		if c != nil {
			s.documents = c
		}
	}
}

// WithCacheTTL overrides the TTL applied to cached documents.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMirror injects the secondary store that shadows writes.
func WithMirror(store mirror.Store) ServiceOption {
	return func(s *service) {
		if store != nil {
			s.mirror = store
		}
	}
}

// WithMirrorTimeout bounds each mirror upload.
func WithMirrorTimeout(timeout time.Duration) ServiceOption {
	return func(s *service) {
		if timeout > 0 {
			s.mirrorTimeout = timeout
		}
	}
}

// WithSynchronousMirror makes mirror writes block the calling operation.
// Used by tests; production keeps the fire-and-forget default.
func WithSynchronousMirror() ServiceOption {
	return func(s *service) {
		s.mirrorSync = true
	}
}

// WithLogger attaches the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShareLinker overrides share URL generation, e.g. to root links at a
// public hostname.
func WithShareLinker(links *ShareLinker) ServiceOption {
	return func(s *service) {
		if links != nil {
			s.links = links
		}
	}
}

// API aggregates the document service and the version ledger; the concrete
// service implements both over the same repositories.
type API interface {
	Service
	LedgerService
}

// NewService wires the presentation store and version ledger over the
// supplied repositories.
func NewService(repo PresentationRepository, versions VersionRepository, opts ...ServiceOption) API {
	s := &service{
		repo:          repo,
		versions:      versions,
		documents:     cache.NewNull(),
		cacheTTL:      cache.DefaultTTL,
		mirror:        mirror.NewNoop(),
		mirrorTimeout: 5 * time.Second,
		logger:        logging.NoOp(),
		links:         NewShareLinker(""),
		clock:         time.Now,
		nextID:        idgen.PresentationID,
		nextVerID:     idgen.VersionID,
		versioning:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := validateDocument(req.Title, req.Slides); err != nil {
		return nil, err
	}

	now := s.clock()
	record := &Presentation{
		ID:        s.nextID(),
		Title:     req.Title,
		Slides:    cloneSlides(req.Slides),
		CreatedBy: req.CreatedBy,
		UpdatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if record.Slides == nil {
		record.Slides = []Slide{}
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.mirrorDocument(created)
	s.logger.Info("presentation created", "id", created.ID.String(), "slides", len(created.Slides))

	return &CreateResult{
		Presentation: created,
		ShareURL:     s.links.ShareURL(created),
	}, nil
}

// Get loads a presentation: cache first, then the primary store, then the
// mirror. A mirror hit repopulates the primary store and the cache.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Presentation, error) {
	if id == uuid.Nil {
		return nil, ErrPresentationRequired
	}

	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}

	record, err := s.repo.GetByID(ctx, id)
	if err == nil {
		s.cacheSet(ctx, record)
		return record, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	recovered := s.mirrorGet(ctx, id)
	if recovered == nil {
		return nil, err
	}

	s.logger.Warn("presentation recovered from mirror", "id", id.String())
	if restored, repoErr := s.repo.Create(ctx, recovered); repoErr == nil {
		recovered = restored
	} else {
		s.logger.Error("repopulate primary from mirror failed", "id", id.String(), "error", repoErr)
	}
	s.cacheSet(ctx, recovered)
	return recovered, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Presentation, error) {
	if id == uuid.Nil {
		return nil, ErrPresentationRequired
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if req.Title != nil {
		next.Title = *req.Title
	}
	if req.Slides != nil {
		next.Slides = cloneSlides(*req.Slides)
		if next.Slides == nil {
			next.Slides = []Slide{}
		}
	}
	if err := validateDocument(next.Title, next.Slides); err != nil {
		return nil, err
	}

	if s.versioning && !req.SkipVersion {
		if _, err := s.recordVersion(ctx, current, req.UpdatedBy, req.ChangeSummary); err != nil {
			return nil, err
		}
	}

	// The state is no longer the product of a restore.
	next.RestoredFrom = nil
	next.UpdatedBy = req.UpdatedBy
	next.UpdatedAt = s.clock()

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, id)
	s.mirrorDocument(updated)
	return updated, nil
}

func (s *service) UpdateSlide(ctx context.Context, id uuid.UUID, index int, req UpdateSlideRequest) (*Presentation, error) {
	if id == uuid.Nil {
		return nil, ErrPresentationRequired
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(current.Slides) {
		return nil, &SlideIndexError{Index: index, SlideCount: len(current.Slides)}
	}

	next := current.Clone()
	slide := next.Slides[index]
	if req.Patch.Layout != nil {
		slide.Layout = *req.Patch.Layout
	}
	if len(req.Patch.Content) > 0 {
		if slide.Content == nil {
			slide.Content = make(map[string]any, len(req.Patch.Content))
		}
		for k, v := range req.Patch.Content {
			slide.Content[k] = v
		}
	}
	if req.Patch.BackgroundColor != nil {
		slide.BackgroundColor = *req.Patch.BackgroundColor
	}
	if req.Patch.BackgroundImage != nil {
		slide.BackgroundImage = *req.Patch.BackgroundImage
	}
	next.Slides[index] = slide

	if err := validateDocument(next.Title, next.Slides); err != nil {
		return nil, err
	}

	if s.versioning && !req.SkipVersion {
		if _, err := s.recordVersion(ctx, current, req.UpdatedBy, req.ChangeSummary); err != nil {
			return nil, err
		}
	}

	next.RestoredFrom = nil
	next.UpdatedBy = req.UpdatedBy
	next.UpdatedAt = s.clock()

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, id)
	s.mirrorDocument(updated)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, ErrPresentationRequired
	}

	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}

	s.cacheInvalidate(ctx, id)
	s.mirrorDelete(id)
	s.logger.Info("presentation deleted", "id", id.String())
	return true, nil
}

// Record captures the current live state as a new ledger entry.
func (s *service) Record(ctx context.Context, presentationID uuid.UUID, req RecordRequest) (*VersionMeta, error) {
	if presentationID == uuid.Nil {
		return nil, ErrPresentationRequired
	}
	if !s.versioning {
		return nil, ErrVersioningDisabled
	}

	current, err := s.repo.GetByID(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	return s.recordVersion(ctx, current, req.CreatedBy, req.ChangeSummary)
}

func (s *service) ListVersions(ctx context.Context, presentationID uuid.UUID) ([]VersionMeta, error) {
	if presentationID == uuid.Nil {
		return nil, ErrPresentationRequired
	}

	records, err := s.versions.ListByPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	metas := make([]VersionMeta, 0, len(records))
	for _, rec := range records {
		metas = append(metas, versionMeta(rec))
	}
	return metas, nil
}

func (s *service) GetSnapshot(ctx context.Context, presentationID uuid.UUID, versionID string) (*Snapshot, error) {
	if presentationID == uuid.Nil {
		return nil, ErrPresentationRequired
	}
	if versionID == "" {
		return nil, ErrVersionRequired
	}

	record, err := s.versions.Get(ctx, presentationID, versionID)
	if err != nil {
		return nil, err
	}
	snapshot := record.Snapshot
	snapshot.Slides = cloneSlides(snapshot.Slides)
	return &snapshot, nil
}

// Restore overwrites the live document with a prior snapshot. Unless the
// request opts out, the current live state is recorded first so the restore
// itself can be undone.
func (s *service) Restore(ctx context.Context, presentationID uuid.UUID, versionID string, req RestoreRequest) (*Presentation, error) {
	if presentationID == uuid.Nil {
		return nil, ErrPresentationRequired
	}
	if versionID == "" {
		return nil, ErrVersionRequired
	}

	target, err := s.versions.Get(ctx, presentationID, versionID)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, presentationID)
	if err != nil {
		return nil, err
	}

	backup := req.CreateBackup == nil || *req.CreateBackup
	if backup && s.versioning {
		summary := fmt.Sprintf("backup before restore of %s", versionID)
		if _, err := s.recordVersion(ctx, current, req.RestoredBy, &summary); err != nil {
			return nil, err
		}
	}

	next := current.Clone()
	next.Title = target.Snapshot.Title
	next.Slides = cloneSlides(target.Snapshot.Slides)
	if next.Slides == nil {
		next.Slides = []Slide{}
	}
	restoredFrom := versionID
	next.RestoredFrom = &restoredFrom
	next.UpdatedBy = req.RestoredBy
	next.UpdatedAt = s.clock()

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, presentationID)
	s.mirrorDocument(updated)
	s.logger.Info("presentation restored", "id", presentationID.String(), "version", versionID)
	return updated, nil
}

// recordVersion freezes the supplied document into a new ledger row. The
// snapshot is schema-checked before insert; the ledger never repairs rows
// after the fact.
func (s *service) recordVersion(ctx context.Context, record *Presentation, createdBy string, summary *string) (*VersionMeta, error) {
	now := s.clock()
	snapshot := Snapshot{
		Title:        record.Title,
		Slides:       cloneSlides(record.Slides),
		RestoredFrom: record.RestoredFrom,
		UpdatedBy:    record.UpdatedBy,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if snapshot.Slides == nil {
		snapshot.Slides = []Slide{}
	}
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	version := &PresentationVersion{
		ID:             s.nextID(),
		PresentationID: record.ID,
		VersionID:      s.nextVerID(now),
		Snapshot:       snapshot,
		CreatedBy:      createdBy,
		ChangeSummary:  summary,
		CreatedAt:      now,
	}
	created, err := s.versions.Create(ctx, version)
	if err != nil {
		return nil, err
	}

	s.mirrorVersion(created)
	meta := versionMeta(created)
	return &meta, nil
}

func versionMeta(rec *PresentationVersion) VersionMeta {
	return VersionMeta{
		VersionID:     rec.VersionID,
		CreatedAt:     rec.CreatedAt,
		CreatedBy:     rec.CreatedBy,
		ChangeSummary: rec.ChangeSummary,
		SlideCount:    len(rec.Snapshot.Slides),
	}
}

func cacheKey(id uuid.UUID) string {
	return "presentations:" + id.String()
}

// cacheGet returns the cached document or nil. Cache failures are logged
// and treated as misses.
func (s *service) cacheGet(ctx context.Context, id uuid.UUID) *Presentation {
	data, err := s.documents.Get(ctx, cacheKey(id))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("cache get failed", "id", id.String(), "error", err)
		}
		return nil
	}
	var record Presentation
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("cache entry corrupt", "id", id.String(), "error", err)
		if delErr := s.documents.Delete(ctx, cacheKey(id)); delErr != nil {
			s.logger.Debug("cache delete failed", "id", id.String(), "error", delErr)
		}
		return nil
	}
	return &record
}

func (s *service) cacheSet(ctx context.Context, record *Presentation) {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("cache encode failed", "id", record.ID.String(), "error", err)
		return
	}
	if err := s.documents.Set(ctx, cacheKey(record.ID), data, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", "id", record.ID.String(), "error", err)
	}
}

func (s *service) cacheInvalidate(ctx context.Context, id uuid.UUID) {
	if err := s.documents.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("cache invalidate failed", "id", id.String(), "error", err)
	}
}

func (s *service) mirrorGet(ctx context.Context, id uuid.UUID) *Presentation {
	data, err := s.mirror.Get(ctx, mirror.PresentationKey(id.String()))
	if err != nil {
		if !errors.Is(err, mirror.ErrObjectNotFound) {
			s.logger.Warn("mirror read failed", "id", id.String(), "error", err)
		}
		return nil
	}
	var record Presentation
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("mirror object corrupt", "id", id.String(), "error", err)
		return nil
	}
	return &record
}

func (s *service) mirrorDocument(record *Presentation) {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("mirror encode failed", "id", record.ID.String(), "error", err)
		return
	}
	s.mirrorPut(mirror.PresentationKey(record.ID.String()), data)
}

func (s *service) mirrorVersion(record *PresentationVersion) {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("mirror encode failed", "version", record.VersionID, "error", err)
		return
	}
	s.mirrorPut(mirror.VersionKey(record.PresentationID.String(), record.VersionID), data)
}

// mirrorPut dispatches one upload. Failures are logged, never returned:
// the primary store is authoritative and a lagging mirror is acceptable.
func (s *service) mirrorPut(key string, data []byte) {
	upload := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()
		if err := s.mirror.Put(ctx, key, data); err != nil {
			s.logger.Warn("mirror write failed", "key", key, "error", err)
		}
	}
	if s.mirrorSync {
		upload()
		return
	}
	go upload()
}

func (s *service) mirrorDelete(id uuid.UUID) {
	remove := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()
		if err := s.mirror.Delete(ctx, mirror.PresentationKey(id.String())); err != nil {
			s.logger.Warn("mirror delete failed", "id", id.String(), "error", err)
		}
	}
	if s.mirrorSync {
		remove()
		return
	}
	go remove()
}
