package store_test

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshore/metbook/internal/models"
	"github.com/kshore/metbook/internal/photo"
	"github.com/kshore/metbook/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// steppingClock returns a clock advancing one second per call, so every
// processed photo gets a distinct filename.
func steppingClock() func() time.Time {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

// writeTestPNG writes a small square PNG and returns its path.
func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
	return path
}

type peopleEnv struct {
	st      *store.PeopleStore
	docPath string
	imgDir  string
	srcPNG  string
}

func newPeopleEnv(t *testing.T) *peopleEnv {
	t.Helper()
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "images")
	proc := photo.NewProcessor(imgDir, 24, testLogger(), photo.WithClock(steppingClock()))
	docPath := filepath.Join(dir, "people_data.json")

	st := store.NewPeopleStore(docPath, proc, testLogger())
	require.NoError(t, st.Load())

	return &peopleEnv{
		st:      st,
		docPath: docPath,
		imgDir:  imgDir,
		srcPNG:  writeTestPNG(t, dir, "upload.png"),
	}
}

// diskFiles returns all file paths under the images dir, sorted.
func (e *peopleEnv) diskFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.imgDir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var out []string
	for _, entry := range entries {
		out = append(out, filepath.Join(e.imgDir, entry.Name()))
	}
	sort.Strings(out)
	return out
}

// ownedFiles returns the union of photo paths across all records, sorted.
func (e *peopleEnv) ownedFiles() []string {
	var out []string
	for _, p := range e.st.People() {
		out = append(out, p.Photos...)
	}
	sort.Strings(out)
	return out
}

// requireNoOrphans asserts the on-disk file set equals exactly the union of
// photos across all records.
func (e *peopleEnv) requireNoOrphans(t *testing.T) {
	t.Helper()
	require.Equal(t, e.ownedFiles(), e.diskFiles(t))
}

func (e *peopleEnv) meet(t *testing.T, name, date, location string) models.Person {
	t.Helper()
	p, _, err := e.st.RecordMeeting(store.MeetingParams{
		Name:      name,
		PhotoFile: e.srcPNG,
		Location:  location,
		Date:      date,
		Country:   "United States",
		State:     "New York",
	})
	require.NoError(t, err)
	return p
}

func TestPeopleStore_LoadMissingDocument(t *testing.T) {
	env := newPeopleEnv(t)
	assert.Empty(t, env.st.People())
}

func TestPeopleStore_RecordMeetingCreates(t *testing.T) {
	env := newPeopleEnv(t)

	p, created, err := env.st.RecordMeeting(store.MeetingParams{
		Name:      "Ada Lovelace",
		PhotoFile: env.srcPNG,
		Location:  "London",
		Date:      "2024-01-15",
		Country:   "United Kingdom",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "United Kingdom", p.Country)
	assert.Empty(t, p.State, "state only applies to United States")
	require.Len(t, p.Photos, 1)
	assert.FileExists(t, p.Photos[0])
	require.Len(t, p.Meetings, 1)
	env.requireNoOrphans(t)
}

func TestPeopleStore_RecordMeetingAppendsCaseInsensitive(t *testing.T) {
	env := newPeopleEnv(t)

	env.meet(t, "Ada Lovelace", "2024-02-01", "London")
	p, created, err := env.st.RecordMeeting(store.MeetingParams{
		Name:      "ADA LOVELACE",
		PhotoFile: env.srcPNG,
		Location:  "Cambridge",
		Date:      "2024-01-01",
	})
	require.NoError(t, err)
	assert.False(t, created, "existing name (any casing) must never create a duplicate record")
	require.Len(t, env.st.People(), 1)

	assert.Equal(t, "Ada Lovelace", p.Name, "original casing wins")
	require.Len(t, p.Photos, 2)
	require.Len(t, p.Meetings, 2)
	assert.Equal(t, "2024-01-01", p.Meetings[0].Date, "meetings stay sorted ascending")
	assert.Equal(t, "2024-02-01", p.Meetings[1].Date)
	env.requireNoOrphans(t)
}

func TestPeopleStore_RecordMeetingValidatesBeforeSideEffects(t *testing.T) {
	env := newPeopleEnv(t)

	_, _, err := env.st.RecordMeeting(store.MeetingParams{
		Name:      "Ada",
		PhotoFile: env.srcPNG,
		Location:  "", // missing required field
		Date:      "2024-01-01",
	})
	require.Error(t, err)
	assert.Empty(t, env.st.People(), "partial records are never written")
	assert.Empty(t, env.diskFiles(t), "no file side effect before validation passes")
	assert.NoFileExists(t, env.docPath)
}

func TestPeopleStore_RoundTrip(t *testing.T) {
	env := newPeopleEnv(t)
	env.meet(t, "Ada", "2024-01-01", "London")
	env.meet(t, "Grace", "2024-02-02", "Arlington")
	want := env.st.People()

	reloaded := store.NewPeopleStore(env.docPath, nil, testLogger())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, want, reloaded.People(), "order and fields preserved across save/load")
}

func TestPeopleStore_SchemaUpgradePersisted(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "people_data.json")
	legacy := `[{"name":"Old Timer","photo":"images/Old Timer_20230101_080000.jpg","dates":["2023-01-01"],"location_met":"Austin"}]`
	require.NoError(t, os.WriteFile(docPath, []byte(legacy), 0o644))

	st := store.NewPeopleStore(docPath, nil, testLogger())
	require.NoError(t, st.Load())

	people := st.People()
	require.Len(t, people, 1)
	assert.Equal(t, []string{"images/Old Timer_20230101_080000.jpg"}, people[0].Photos)
	require.Len(t, people[0].Meetings, 1)
	assert.Equal(t, models.Meeting{Date: "2023-01-01", Location: "Austin"}, people[0].Meetings[0])

	// The upgrade is persisted: the document on disk now carries only the
	// canonical shape.
	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.NotContains(t, raw[0], "photo")
	assert.NotContains(t, raw[0], "dates")
	assert.NotContains(t, raw[0], "location_met")
	assert.Contains(t, raw[0], "photos")
	assert.Contains(t, raw[0], "meetings")

	// A second load sees only the new shape and rewrites nothing.
	before, err := os.ReadFile(docPath)
	require.NoError(t, err)
	st2 := store.NewPeopleStore(docPath, nil, testLogger())
	require.NoError(t, st2.Load())
	after, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, people, st2.People())
}

func TestPeopleStore_UpdateFields(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")

	country := "Canada"
	changed, err := env.st.UpdateFields(p.ID, store.FieldPatch{Country: &country})
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canada", got.Country)
	assert.Empty(t, got.State, "leaving the US clears the state")

	// Re-applying the same value writes nothing.
	changed, err = env.st.UpdateFields(p.ID, store.FieldPatch{Country: &country})
	require.NoError(t, err)
	assert.False(t, changed)

	name := "Ada Lovelace"
	changed, err = env.st.UpdateFields(p.ID, store.FieldPatch{Name: &name})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestPeopleStore_UpdateFieldsStateOutsideUSIsNoChange(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")

	country := "Canada"
	changed, err := env.st.UpdateFields(p.ID, store.FieldPatch{Country: &country})
	require.NoError(t, err)
	require.True(t, changed)

	before, err := os.ReadFile(env.docPath)
	require.NoError(t, err)

	// A state only makes sense on a US record; patching one onto a
	// Canadian record normalizes back to the original and writes nothing.
	state := "Texas"
	changed, err = env.st.UpdateFields(p.ID, store.FieldPatch{State: &state})
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := os.ReadFile(env.docPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.State)
}

func TestPeopleStore_UpdateFieldsUnknownCountry(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")

	bad := "Atlantis"
	_, err := env.st.UpdateFields(p.ID, store.FieldPatch{Country: &bad})
	assert.Error(t, err)
}

func TestPeopleStore_AddMeetingDuplicateDateDropped(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")

	added, err := env.st.AddMeeting(p.ID, "2024-01-01", "somewhere else entirely")
	require.NoError(t, err)
	assert.False(t, added, "same date is dropped silently, even with a different location")

	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Meetings, 1)
	assert.Equal(t, "London", got.Meetings[0].Location)
}

func TestPeopleStore_AddMeetingKeepsSortOrder(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-06-01", "London")

	for _, date := range []string{"2024-03-01", "2024-09-09", "2024-01-01"} {
		added, err := env.st.AddMeeting(p.ID, date, "x")
		require.NoError(t, err)
		assert.True(t, added)
	}

	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	var dates []string
	for _, m := range got.Meetings {
		dates = append(dates, m.Date)
	}
	assert.Equal(t, []string{"2024-01-01", "2024-03-01", "2024-06-01", "2024-09-09"}, dates)
}

func TestPeopleStore_DeleteMeeting(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")
	_, err := env.st.AddMeeting(p.ID, "2024-02-02", "Cambridge")
	require.NoError(t, err)

	require.NoError(t, env.st.DeleteMeeting(p.ID, "2024-01-01"))
	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Meetings, 1)
	assert.Equal(t, "2024-02-02", got.Meetings[0].Date)

	err = env.st.DeleteMeeting(p.ID, "1999-01-01")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPeopleStore_DeletePhotoClampsIndex(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")
	for i := 0; i < 2; i++ {
		_, err := env.st.AddPhoto(p.ID, env.srcPNG)
		require.NoError(t, err)
	}

	// Three photos; deleting the last while viewing it clamps to the new end.
	newCurrent, err := env.st.DeletePhoto(p.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, newCurrent)
	env.requireNoOrphans(t)

	// Deleting in the middle keeps an in-range cursor where it was.
	newCurrent, err = env.st.DeletePhoto(p.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, newCurrent)

	// Deleting the last remaining photo leaves index 0 on an empty list.
	newCurrent, err = env.st.DeletePhoto(p.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, newCurrent)

	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Photos)
	env.requireNoOrphans(t)
}

func TestPeopleStore_DeletePhotoOutOfRange(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")

	_, err := env.st.DeletePhoto(p.ID, 5, 0)
	assert.Error(t, err)
}

func TestPeopleStore_DeletePersonCascades(t *testing.T) {
	env := newPeopleEnv(t)
	ada := env.meet(t, "Ada", "2024-01-01", "London")
	grace := env.meet(t, "Grace", "2024-02-02", "Arlington")
	_, err := env.st.AddPhoto(ada.ID, env.srcPNG)
	require.NoError(t, err)

	gracePhotos := append([]string(nil), grace.Photos...)

	require.NoError(t, env.st.DeletePerson(ada.ID))

	_, err = env.st.Get(ada.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.Len(t, env.st.People(), 1)

	// Exactly Ada's files are gone; Grace's are untouched.
	for _, path := range gracePhotos {
		assert.FileExists(t, path)
	}
	env.requireNoOrphans(t)
}

func TestPeopleStore_DeletePersonToleratesMissingFiles(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")

	// Someone removed the file out of band; deletion still succeeds.
	require.NoError(t, os.Remove(p.Photos[0]))
	require.NoError(t, env.st.DeletePerson(p.ID))
	assert.Empty(t, env.st.People())
}

func TestPeopleStore_FileInvariantAcrossSequence(t *testing.T) {
	env := newPeopleEnv(t)

	ada := env.meet(t, "Ada", "2024-01-01", "London")
	env.requireNoOrphans(t)

	env.meet(t, "ada", "2024-02-01", "Paris")
	env.requireNoOrphans(t)

	grace := env.meet(t, "Grace", "2024-03-01", "Arlington")
	env.requireNoOrphans(t)

	_, err := env.st.AddPhoto(grace.ID, env.srcPNG)
	require.NoError(t, err)
	env.requireNoOrphans(t)

	_, err = env.st.DeletePhoto(ada.ID, 0, 0)
	require.NoError(t, err)
	env.requireNoOrphans(t)

	require.NoError(t, env.st.DeletePerson(grace.ID))
	env.requireNoOrphans(t)

	require.NoError(t, env.st.DeletePerson(ada.ID))
	env.requireNoOrphans(t)
	assert.Empty(t, env.diskFiles(t))
}

func TestPeopleStore_FindByName(t *testing.T) {
	env := newPeopleEnv(t)
	env.meet(t, "Ada Lovelace", "2024-01-01", "London")

	p, ok := env.st.FindByName("ada lovelace")
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", p.Name)

	_, ok = env.st.FindByName("Charles")
	assert.False(t, ok)
}

func TestVisiblePhotosFiltersMissingFiles(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")
	_, err := env.st.AddPhoto(p.ID, env.srcPNG)
	require.NoError(t, err)

	p, err = env.st.Get(p.ID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p.Photos[0]))

	visible := store.VisiblePhotos(p)
	require.Len(t, visible, 1)
	assert.Equal(t, p.Photos[1], visible[0])

	// The record itself is not repaired.
	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Photos, 2)
}

// A stale entry must not shift the indices a user acts on: the listing
// keeps full-list positions, and deleting at a listed index removes exactly
// that entry.
func TestPhotoListingIndicesMatchDeletePhoto(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")
	_, err := env.st.AddPhoto(p.ID, env.srcPNG)
	require.NoError(t, err)

	p, err = env.st.Get(p.ID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p.Photos[0]))
	shown := p.Photos[1]

	entries := store.PhotoListing(p)
	require.Len(t, entries, 2)
	assert.Equal(t, store.PhotoEntry{Index: 0, Path: p.Photos[0], Missing: true}, entries[0])
	assert.Equal(t, store.PhotoEntry{Index: 1, Path: shown, Missing: false}, entries[1])

	// Deleting at the listed index of the surviving photo removes it, not
	// the stale entry ahead of it.
	_, err = env.st.DeletePhoto(p.ID, entries[1].Index, 0)
	require.NoError(t, err)
	assert.NoFileExists(t, shown)

	got, err := env.st.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, entries[0].Path, got.Photos[0])

	// And deleting at the stale entry's listed index clears it too.
	_, err = env.st.DeletePhoto(p.ID, 0, 0)
	require.NoError(t, err)
	got, err = env.st.Get(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Photos)
}

func TestMostRecentPhoto(t *testing.T) {
	env := newPeopleEnv(t)
	p := env.meet(t, "Ada", "2024-01-01", "London")
	_, err := env.st.AddPhoto(p.ID, env.srcPNG)
	require.NoError(t, err)
	last, err := env.st.AddPhoto(p.ID, env.srcPNG)
	require.NoError(t, err)

	p, err = env.st.Get(p.ID)
	require.NoError(t, err)
	got, ok := store.MostRecentPhoto(p)
	require.True(t, ok)
	assert.Equal(t, last, got, "latest filename timestamp wins")

	_, ok = store.MostRecentPhoto(models.Person{Photos: []string{}})
	assert.False(t, ok)
}

func TestClampIndex(t *testing.T) {
	assert.Equal(t, 0, store.ClampIndex(0, 0))
	assert.Equal(t, 0, store.ClampIndex(3, 0))
	assert.Equal(t, 2, store.ClampIndex(5, 3))
	assert.Equal(t, 1, store.ClampIndex(1, 3))
	assert.Equal(t, 0, store.ClampIndex(-1, 3))
}
