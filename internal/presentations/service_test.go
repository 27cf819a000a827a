package presentations_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slidekit/layout/internal/cache"
	"github.com/slidekit/layout/internal/mirror"
	"github.com/slidekit/layout/internal/presentations"
)

type fixture struct {
	svc      presentations.API
	repo     *presentations.MemoryPresentationRepository
	versions *presentations.MemoryVersionRepository
	cache    *cache.Memory
	mirror   *mirror.FS
	now      *time.Time
}

func newFixture(t *testing.T, opts ...presentations.ServiceOption) *fixture {
	t.Helper()

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	versions := presentations.NewMemoryVersionRepository()
	repo := presentations.NewMemoryPresentationRepository(versions)
	documents := cache.NewMemory(cache.WithClock(func() time.Time { return now }))
	store, err := mirror.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("mirror.NewFS failed: %v", err)
	}

	base := []presentations.ServiceOption{
		presentations.WithClock(func() time.Time { return now }),
		presentations.WithCache(documents),
		presentations.WithMirror(store),
		presentations.WithSynchronousMirror(),
	}
	svc := presentations.NewService(repo, versions, append(base, opts...)...)

	return &fixture{
		svc:      svc,
		repo:     repo,
		versions: versions,
		cache:    documents,
		mirror:   store,
		now:      &now,
	}
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func mustCreate(t *testing.T, svc presentations.API, title string, slides []presentations.Slide) *presentations.Presentation {
	t.Helper()
	result, err := svc.Create(context.Background(), presentations.CreateRequest{
		Title:     title,
		Slides:    slides,
		CreatedBy: "author",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return result.Presentation
}

func strptr(s string) *string { return &s }

// Scenario A: a created presentation loads back with its slide intact.
func TestCreateThenLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Q4 Review", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	loaded, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Title != "Q4 Review" {
		t.Fatalf("unexpected title %q", loaded.Title)
	}
	if len(loaded.Slides) != 1 {
		t.Fatalf("expected 1 slide, got %d", len(loaded.Slides))
	}
	if loaded.Slides[0].Layout != "L25" {
		t.Fatalf("unexpected layout %q", loaded.Slides[0].Layout)
	}
	if loaded.Slides[0].Content["slide_title"] != "Hi" {
		t.Fatalf("unexpected slide content %v", loaded.Slides[0].Content)
	}
}

// P1: slide order survives the round trip.
func TestCreatePreservesSlideOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slides := []presentations.Slide{
		{Layout: "L1", Content: map[string]any{"n": "first"}},
		{Layout: "L2", Content: map[string]any{"n": "second"}},
		{Layout: "L3", Content: map[string]any{"n": "third"}},
	}
	created := mustCreate(t, f.svc, "Ordered", slides)

	loaded, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if loaded.Slides[i].Content["n"] != want {
			t.Fatalf("slide %d out of order: %v", i, loaded.Slides[i].Content)
		}
	}
}

func TestCreateReturnsShareURL(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Create(context.Background(), presentations.CreateRequest{
		Title:  "Q4 Review Plans",
		Slides: []presentations.Slide{{Layout: "L25"}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	want := "/presentations/" + result.Presentation.ID.String() + "/q4-review-plans"
	if !strings.HasSuffix(result.ShareURL, want) {
		t.Fatalf("unexpected share url %q, want suffix %q", result.ShareURL, want)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		title  string
		slides []presentations.Slide
	}{
		{"missing layout", "Deck", []presentations.Slide{{Content: map[string]any{"a": 1}}}},
		{"bad background color", "Deck", []presentations.Slide{{Layout: "L25", BackgroundColor: "not-a-color"}}},
		{"bad background image", "Deck", []presentations.Slide{{Layout: "L25", BackgroundImage: "::nope"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, presentations.CreateRequest{Title: tc.title, Slides: tc.slides})
			if !errors.Is(err, presentations.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateAllowsBlankTitle(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Create(context.Background(), presentations.CreateRequest{
		Title:  "",
		Slides: []presentations.Slide{{Layout: "L25"}},
	})
	if err != nil {
		t.Fatalf("blank title should be accepted: %v", err)
	}
	if !strings.HasSuffix(result.ShareURL, "/presentations/"+result.Presentation.ID.String()) {
		t.Fatalf("expected id-only share url, got %q", result.ShareURL)
	}
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	if !presentations.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

// Scenario B: updating a slide records the pre-update state.
func TestUpdateSlideRecordsPreUpdateSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Q4 Review", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	f.advance(time.Minute)
	updated, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "Updated"}},
		UpdatedBy: "editor",
	})
	if err != nil {
		t.Fatalf("UpdateSlide failed: %v", err)
	}
	if updated.Slides[0].Content["slide_title"] != "Updated" {
		t.Fatalf("live state not updated: %v", updated.Slides[0].Content)
	}

	metas, err := f.svc.ListVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("expected 1 version, got %d", len(metas))
	}

	snapshot, err := f.svc.GetSnapshot(ctx, created.ID, metas[0].VersionID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snapshot.Slides[0].Content["slide_title"] != "Hi" {
		t.Fatalf("snapshot should hold pre-update content, got %v", snapshot.Slides[0].Content)
	}
}

// Scenario C: restore brings back the snapshot and marks provenance.
func TestRestoreRevertsLiveState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Q4 Review", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	f.advance(time.Minute)
	if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "Updated"}},
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("UpdateSlide failed: %v", err)
	}

	metas, err := f.svc.ListVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	versionID := metas[0].VersionID

	f.advance(time.Minute)
	restored, err := f.svc.Restore(ctx, created.ID, versionID, presentations.RestoreRequest{RestoredBy: "editor"})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Slides[0].Content["slide_title"] != "Hi" {
		t.Fatalf("restore did not revert content: %v", restored.Slides[0].Content)
	}
	if restored.RestoredFrom == nil || *restored.RestoredFrom != versionID {
		t.Fatalf("restoredFrom not set, got %v", restored.RestoredFrom)
	}

	loaded, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Slides[0].Content["slide_title"] != "Hi" {
		t.Fatalf("load after restore returned %v", loaded.Slides[0].Content)
	}
}

func TestRestoreCreatesSafetyBackupByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	f.advance(time.Minute)
	if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "Updated"}},
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("UpdateSlide failed: %v", err)
	}

	metas, _ := f.svc.ListVersions(ctx, created.ID)
	target := metas[0].VersionID

	f.advance(time.Minute)
	if _, err := f.svc.Restore(ctx, created.ID, target, presentations.RestoreRequest{RestoredBy: "editor"}); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	metas, err := f.svc.ListVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected safety backup + original version, got %d", len(metas))
	}

	// Newest first: the safety backup holds the pre-restore live state.
	backup, err := f.svc.GetSnapshot(ctx, created.ID, metas[0].VersionID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if backup.Slides[0].Content["slide_title"] != "Updated" {
		t.Fatalf("safety backup should hold pre-restore state, got %v", backup.Slides[0].Content)
	}
}

// P4: restore with createBackup=false is idempotent.
func TestRestoreIdempotentWithoutBackup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	f.advance(time.Minute)
	if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "Updated"}},
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("UpdateSlide failed: %v", err)
	}
	metas, _ := f.svc.ListVersions(ctx, created.ID)
	target := metas[0].VersionID

	noBackup := false
	f.advance(time.Minute)
	first, err := f.svc.Restore(ctx, created.ID, target, presentations.RestoreRequest{
		CreateBackup: &noBackup,
		RestoredBy:   "editor",
	})
	if err != nil {
		t.Fatalf("first Restore failed: %v", err)
	}
	second, err := f.svc.Restore(ctx, created.ID, target, presentations.RestoreRequest{
		CreateBackup: &noBackup,
		RestoredBy:   "editor",
	})
	if err != nil {
		t.Fatalf("second Restore failed: %v", err)
	}

	if first.Title != second.Title || !reflect.DeepEqual(first.Slides, second.Slides) {
		t.Fatalf("restore not idempotent: %v vs %v", first.Slides, second.Slides)
	}
	if *second.RestoredFrom != target {
		t.Fatalf("restoredFrom drifted: %v", second.RestoredFrom)
	}
	if metas, _ = f.svc.ListVersions(ctx, created.ID); len(metas) != 1 {
		t.Fatalf("no new versions expected, got %d", len(metas))
	}
}

// P2: snapshots are immutable regardless of later updates.
func TestUpdateClearsRestoredFrom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Q4 Review", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	f.advance(time.Minute)
	if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "Updated"}},
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("UpdateSlide failed: %v", err)
	}

	versions, err := f.svc.ListVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}

	f.advance(time.Minute)
	restored, err := f.svc.Restore(ctx, created.ID, versions[0].VersionID, presentations.RestoreRequest{RestoredBy: "editor"})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.RestoredFrom == nil {
		t.Fatal("expected RestoredFrom set after restore")
	}

	f.advance(time.Minute)
	title := "Renamed"
	afterUpdate, err := f.svc.Update(ctx, created.ID, presentations.UpdateRequest{
		Title:     &title,
		UpdatedBy: "editor",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if afterUpdate.RestoredFrom != nil {
		t.Fatalf("expected RestoredFrom cleared by update, got %q", *afterUpdate.RestoredFrom)
	}

	f.advance(time.Minute)
	if _, err := f.svc.Restore(ctx, created.ID, versions[0].VersionID, presentations.RestoreRequest{RestoredBy: "editor"}); err != nil {
		t.Fatalf("second Restore failed: %v", err)
	}
	f.advance(time.Minute)
	afterSlideEdit, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "Edited"}},
		UpdatedBy: "editor",
	})
	if err != nil {
		t.Fatalf("UpdateSlide failed: %v", err)
	}
	if afterSlideEdit.RestoredFrom != nil {
		t.Fatalf("expected RestoredFrom cleared by slide edit, got %q", *afterSlideEdit.RestoredFrom)
	}
}

func TestSnapshotImmutableAfterLaterUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	meta, err := f.svc.Record(ctx, created.ID, presentations.RecordRequest{CreatedBy: "author"})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	before, err := f.svc.GetSnapshot(ctx, created.ID, meta.VersionID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	encodedBefore, _ := json.Marshal(before)

	for i := 0; i < 3; i++ {
		f.advance(time.Minute)
		if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
			Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "pass", "i": i}},
			UpdatedBy: "editor",
		}); err != nil {
			t.Fatalf("UpdateSlide failed: %v", err)
		}
	}

	after, err := f.svc.GetSnapshot(ctx, created.ID, meta.VersionID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	encodedAfter, _ := json.Marshal(after)
	if string(encodedBefore) != string(encodedAfter) {
		t.Fatalf("snapshot changed:\nbefore %s\nafter  %s", encodedBefore, encodedAfter)
	}
}

// P3: an update invalidates the cache; the old value is never served.
func TestUpdateInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	// Prime the cache.
	if _, err := f.svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	title := "Renamed"
	if _, err := f.svc.Update(ctx, created.ID, presentations.UpdateRequest{
		Title:     &title,
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	loaded, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Title != "Renamed" {
		t.Fatalf("stale cache served: %q", loaded.Title)
	}
}

// Scenario D: sequential updates with TTL expiry in between never produce
// a stale merge.
func TestSequentialUpdatesAcrossTTLExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	f.advance(time.Minute)
	if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "first"}},
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if _, err := f.svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Let the cached entry expire before the second update.
	f.advance(cache.DefaultTTL + time.Minute)
	if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "second"}},
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	loaded, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Slides[0].Content["slide_title"] != "second" {
		t.Fatalf("expected only second update visible, got %v", loaded.Slides[0].Content)
	}
}

// P5: deleting a presentation removes its ledger rows; listing stays lenient.
func TestDeleteCascadesToVersions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})
	if _, err := f.svc.Record(ctx, created.ID, presentations.RecordRequest{CreatedBy: "author"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	deleted, err := f.svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report success")
	}

	metas, err := f.svc.ListVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListVersions after delete failed: %v", err)
	}
	if len(metas) != 0 {
		t.Fatalf("expected empty ledger after delete, got %d", len(metas))
	}

	if _, err := f.svc.Get(ctx, created.ID); !presentations.IsNotFound(err) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestDeleteMissingReturnsFalse(t *testing.T) {
	f := newFixture(t)

	deleted, err := f.svc.Delete(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Delete on missing id should not error: %v", err)
	}
	if deleted {
		t.Fatal("expected false for missing presentation")
	}
}

func TestListVersionsUnknownIDReturnsEmpty(t *testing.T) {
	f := newFixture(t)

	metas, err := f.svc.ListVersions(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(metas) != 0 {
		t.Fatalf("expected empty slice, got %d", len(metas))
	}
}

func TestListVersionsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "v0"}},
	})

	for i := 1; i <= 3; i++ {
		f.advance(time.Minute)
		if _, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
			Patch:     presentations.SlidePatch{Content: map[string]any{"slide_title": "v" + string(rune('0'+i))}},
			UpdatedBy: "editor",
		}); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	metas, err := f.svc.ListVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(metas))
	}
	for i := 1; i < len(metas); i++ {
		if metas[i-1].VersionID < metas[i].VersionID {
			t.Fatalf("versions not newest first: %s before %s", metas[i-1].VersionID, metas[i].VersionID)
		}
	}
	// Newest snapshot is the pre-update state of the last update.
	newest, err := f.svc.GetSnapshot(ctx, created.ID, metas[0].VersionID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if newest.Slides[0].Content["slide_title"] != "v2" {
		t.Fatalf("unexpected newest snapshot %v", newest.Slides[0].Content)
	}
}

func TestUpdateSkipVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{{Layout: "L25"}})

	title := "Renamed"
	if _, err := f.svc.Update(ctx, created.ID, presentations.UpdateRequest{
		Title:       &title,
		UpdatedBy:   "editor",
		SkipVersion: true,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	metas, err := f.svc.ListVersions(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(metas) != 0 {
		t.Fatalf("SkipVersion should suppress snapshot, got %d versions", len(metas))
	}
}

func TestVersioningDisabledSuppressesSnapshots(t *testing.T) {
	f := newFixture(t, presentations.WithVersioningEnabled(false))
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{{Layout: "L25"}})

	title := "Renamed"
	if _, err := f.svc.Update(ctx, created.ID, presentations.UpdateRequest{
		Title:     &title,
		UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	metas, _ := f.svc.ListVersions(ctx, created.ID)
	if len(metas) != 0 {
		t.Fatalf("expected no versions with versioning disabled, got %d", len(metas))
	}

	if _, err := f.svc.Record(ctx, created.ID, presentations.RecordRequest{CreatedBy: "author"}); !errors.Is(err, presentations.ErrVersioningDisabled) {
		t.Fatalf("expected ErrVersioningDisabled, got %v", err)
	}
}

func TestUpdateSlideOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{{Layout: "L25"}})

	for _, index := range []int{-1, 1, 99} {
		_, err := f.svc.UpdateSlide(ctx, created.ID, index, presentations.UpdateSlideRequest{
			Patch:     presentations.SlidePatch{Layout: strptr("L1")},
			UpdatedBy: "editor",
		})
		if !errors.Is(err, presentations.ErrSlideIndexInvalid) {
			t.Fatalf("index %d: expected ErrSlideIndexInvalid, got %v", index, err)
		}
	}
}

func TestUpdateSlideMergesContentKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi", "notes": "keep me"}},
	})

	updated, err := f.svc.UpdateSlide(ctx, created.ID, 0, presentations.UpdateSlideRequest{
		Patch: presentations.SlidePatch{
			Content:         map[string]any{"slide_title": "Updated"},
			BackgroundColor: strptr("#ff8800"),
		},
		UpdatedBy: "editor",
	})
	if err != nil {
		t.Fatalf("UpdateSlide failed: %v", err)
	}
	slide := updated.Slides[0]
	if slide.Content["slide_title"] != "Updated" {
		t.Fatalf("patched key not applied: %v", slide.Content)
	}
	if slide.Content["notes"] != "keep me" {
		t.Fatalf("unpatched key lost: %v", slide.Content)
	}
	if slide.Layout != "L25" {
		t.Fatalf("layout should be unchanged, got %q", slide.Layout)
	}
	if slide.BackgroundColor != "#ff8800" {
		t.Fatalf("background color not applied: %q", slide.BackgroundColor)
	}
}

func TestGetFallsBackToMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := mustCreate(t, f.svc, "Deck", []presentations.Slide{
		{Layout: "L25", Content: map[string]any{"slide_title": "Hi"}},
	})

	// Drop the primary row directly, leaving the mirror object in place.
	if _, err := f.repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("direct delete failed: %v", err)
	}
	f.cache.Delete(ctx, "presentations:"+created.ID.String())

	recovered, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected mirror fallback, got %v", err)
	}
	if recovered.Title != "Deck" {
		t.Fatalf("unexpected recovered document %+v", recovered)
	}

	// The fallback repopulates the primary store.
	if _, err := f.repo.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("primary not repopulated: %v", err)
	}
}

func TestMirrorFailureDoesNotFailWrites(t *testing.T) {
	versions := presentations.NewMemoryVersionRepository()
	repo := presentations.NewMemoryPresentationRepository(versions)
	svc := presentations.NewService(repo, versions,
		presentations.WithMirror(failingMirror{}),
		presentations.WithSynchronousMirror(),
	)

	result, err := svc.Create(context.Background(), presentations.CreateRequest{
		Title:  "Deck",
		Slides: []presentations.Slide{{Layout: "L25"}},
	})
	if err != nil {
		t.Fatalf("Create should swallow mirror failures: %v", err)
	}
	if result.Presentation == nil {
		t.Fatal("expected created presentation")
	}
}

type failingMirror struct{}

func (failingMirror) Put(context.Context, string, []byte) error {
	return errors.New("bucket unavailable")
}

func (failingMirror) Get(context.Context, string) ([]byte, error) {
	return nil, mirror.ErrObjectNotFound
}

func (failingMirror) Delete(context.Context, string) error {
	return errors.New("bucket unavailable")
}
