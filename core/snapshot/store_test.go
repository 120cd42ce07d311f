package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"world-sync/core/crawler"
	"world-sync/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(i int) *int { return &i }

func testSnapshot() *crawler.Snapshot {
	snap := crawler.NewSnapshot("br52", time.Now())
	snap.Config = map[string]any{"speed": 1.0}
	snap.Villages[1001] = crawler.Village{ID: 1001, X: 510, Y: 512, Name: "Home", Points: 800, CharacterID: ptr(7), ProvinceID: 2}
	snap.Villages[1002] = crawler.Village{ID: 1002, X: 420, Y: 590, Name: "Barb", Points: 26, ProvinceID: 1}
	snap.Players[7] = crawler.Player{ID: 7, Name: "seven", TribeID: ptr(20), Stats: models.Stats{Points: 800, Villages: 1, Rank: 1}}
	snap.Tribes[20] = crawler.Tribe{ID: 20, Name: "Twenty", Tag: "TWY", Members: 1, Stats: models.Stats{Points: 800}}
	snap.Provinces[1] = crawler.Province{ID: 1, Name: "West"}
	snap.Provinces[2] = crawler.Province{ID: 2, Name: "East"}
	snap.Index()
	return snap
}

func TestContinentKey(t *testing.T) {
	assert.Equal(t, "55", ContinentKey(510, 512))
	assert.Equal(t, "54", ContinentKey(420, 590))
	assert.Equal(t, "00", ContinentKey(5, 99))
	assert.Equal(t, "90", ContinentKey(99, 950))
}

func TestStore_Write(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(Config{Dir: dir}, nil, nil)

	files, err := store.Write(context.Background(), testSnapshot())
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
		assert.Positive(t, f.Size)
	}
	assert.Equal(t, []string{"54", "55", "info"}, names)

	var cont map[string]map[string][]any
	require.NoError(t, store.Read("br52", "55", &cont))
	assert.Equal(t, []any{float64(1001), "Home", float64(800), float64(7), float64(2)}, cont["510"]["512"])

	require.NoError(t, store.Read("br52", "54", &cont))
	assert.Equal(t, []any{float64(1002), "Barb", float64(26), float64(0), float64(1)}, cont["420"]["590"])

	var inf Info
	require.NoError(t, store.Read("br52", "info", &inf))
	assert.Equal(t, 1.0, inf.Config["speed"])
	assert.Equal(t, []string{"", "West", "East"}, inf.Provinces)
	assert.Equal(t, []any{"seven", float64(20), float64(800), float64(1), float64(1), float64(0)}, inf.Players["7"])
	assert.Equal(t, "TWY", inf.Tribes["20"][1])
}

func TestStore_PrunesStaleContinents(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(Config{Dir: dir}, nil, nil)
	ctx := context.Background()

	_, err := store.Write(ctx, testSnapshot())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "br52", "notes.txt"), []byte("keep"), 0o644))

	snap := testSnapshot()
	delete(snap.Villages, 1002)
	_, err = store.Write(ctx, snap)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "br52", "54"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "br52", "55"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "br52", "notes.txt"))
	assert.NoError(t, err)
}

func TestStore_ExistsAndFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(Config{Dir: dir}, nil, nil)

	assert.False(t, store.Exists("br52"))
	_, err := store.Files("br52")
	assert.Error(t, err)

	_, err = store.Write(context.Background(), testSnapshot())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "br52", "notes.txt"), []byte("x"), 0o644))

	assert.True(t, store.Exists("br52"))
	files, err := store.Files("br52")
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"54", "55", "info"}, names)
}
