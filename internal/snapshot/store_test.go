package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/rtti"
	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

type entity struct {
	name string
	next *entity
}

func entityType() *rtti.Type {
	t := rtti.Declare("Entity")
	return t.MustDefine(
		rtti.Primitive("name", rtti.PrimitiveString, func(instance any) any {
			return instance.(*entity).name
		}),
		rtti.Pointer("next", t, func(instance any) any {
			if next := instance.(*entity).next; next != nil {
				return next
			}
			return nil
		}),
	)
}

func sampleGraph() *entity {
	head := &entity{name: "head"}
	head.next = &entity{name: "tail", next: head}
	return head
}

func TestStoreSaveAndManifest(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, WithFormat(stream.FormatText))
	require.NoError(t, err)

	err = store.Save(context.Background(), "world", sampleGraph(), entityType())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "world.snap"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "object Entity 1")
	assert.Contains(t, string(data), "object Entity 2")

	m, err := store.Manifest("world")
	require.NoError(t, err)
	assert.Equal(t, "world", m.Name)
	assert.Equal(t, FormatVersion.String(), m.Version)
	assert.Equal(t, stream.FormatText, m.Format)
	assert.Equal(t, "none", m.Compressor)
	assert.EqualValues(t, len(data), m.SizeBytes)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"world"}, names)

	// 保存过程中不得留下临时文件和锁文件
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStoreSaveExisting(t *testing.T) {
	store, err := NewStore(t.TempDir(), WithFormat(stream.FormatText))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "world", sampleGraph(), entityType()))

	err = store.Save(ctx, "world", sampleGraph(), entityType())
	assert.True(t, errors.Is(err, merr.ErrSnapshotExists))
}

func TestStoreSaveOverwrite(t *testing.T) {
	store, err := NewStore(t.TempDir(), WithFormat(stream.FormatText), WithOverwrite())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "world", sampleGraph(), entityType()))
	require.NoError(t, store.Save(ctx, "world", sampleGraph(), entityType()))
}

func TestStoreSaveZstd(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, WithCompressor(ZstdCompressor()))
	require.NoError(t, err)

	err = store.Save(context.Background(), "world", sampleGraph(), entityType())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "world.snap"))
	require.NoError(t, err)
	// zstd 魔数
	require.GreaterOrEqual(t, len(data), 4)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, data[:4])

	m, err := store.Manifest("world")
	require.NoError(t, err)
	assert.Equal(t, "zstd", m.Compressor)
}

func TestStoreSaveFaultLeavesNoSnapshot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, WithFormat(stream.Format("xml")))
	require.NoError(t, err)

	err = store.Save(context.Background(), "world", sampleGraph(), entityType())
	assert.True(t, errors.Is(err, merr.ErrStreamFormatUnsupported))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreLockHeld(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	// 模拟他人持锁
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world.lock"), nil, 0o644))

	err = store.Save(context.Background(), "world", sampleGraph(), entityType())
	require.Error(t, err)
	assert.True(t, errors.Is(err, merr.ErrSnapshotLockHeld))
	assert.True(t, merr.IsRetryableErr(err))
}

func TestStoreManifestNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Manifest("missing")
	assert.True(t, errors.Is(err, merr.ErrSnapshotNotFound))
}

func TestStoreRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "world", sampleGraph(), entityType()))
	require.NoError(t, store.Remove("world"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	err = store.Remove("world")
	assert.True(t, errors.Is(err, merr.ErrSnapshotNotFound))
}

func TestStoreClosed(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	store.Close()

	err = store.Save(context.Background(), "world", sampleGraph(), entityType())
	assert.True(t, errors.Is(err, merr.ErrSnapshotStoreClosed))
	_, err = store.Manifest("world")
	assert.True(t, errors.Is(err, merr.ErrSnapshotStoreClosed))
	_, err = store.List()
	assert.True(t, errors.Is(err, merr.ErrSnapshotStoreClosed))
	err = store.Remove("world")
	assert.True(t, errors.Is(err, merr.ErrSnapshotStoreClosed))
}

func TestStoreInvalidName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	err = store.Save(context.Background(), "", sampleGraph(), entityType())
	assert.True(t, errors.Is(err, merr.ErrParameterMissing))

	err = store.Save(context.Background(), "a/b", sampleGraph(), entityType())
	assert.True(t, errors.Is(err, merr.ErrParameterInvalid))
}

func TestManifestVersionTooNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"name":"world","version":"99.0.0","format":"binary","compressor":"none"}`), 0o644))

	_, err := loadManifest(path)
	assert.True(t, errors.Is(err, merr.ErrSnapshotManifest))
}

func TestBatchWriterSaveAll(t *testing.T) {
	store, err := NewStore(t.TempDir(), WithFormat(stream.FormatBinary))
	require.NoError(t, err)

	batch := NewBatchWriter(store, 4)
	defer batch.Release()

	items := []Item{
		{Name: "alpha", Root: sampleGraph(), Type: entityType()},
		{Name: "beta", Root: sampleGraph(), Type: entityType()},
		{Name: "gamma", Root: sampleGraph(), Type: entityType()},
	}
	require.NoError(t, batch.SaveAll(context.Background(), items))

	names, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestBatchWriterReportsFailures(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	batch := NewBatchWriter(store, 2)
	defer batch.Release()

	items := []Item{
		{Name: "ok", Root: sampleGraph(), Type: entityType()},
		{Name: "bad/name", Root: sampleGraph(), Type: entityType()},
	}
	err = batch.SaveAll(context.Background(), items)
	require.Error(t, err)
	assert.True(t, errors.Is(err, merr.ErrParameterInvalid))

	names, listErr := store.List()
	require.NoError(t, listErr)
	assert.Equal(t, []string{"ok"}, names)
}
