package swmesh_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nautiq/swmesh"
	"github.com/nautiq/swmesh/blobstore"
	"github.com/nautiq/swmesh/testutil"
)

// seedStore fills a MemoryStore with count well-formed meshes named
// mesh-000 ... and returns the names.
func seedStore(store *blobstore.MemoryStore, count int) []string {
	rng := testutil.NewRNG(7)
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		vertices := rng.Vertices(8 + rng.Intn(32))
		buf := testutil.Builder{
			Vertices: vertices,
			Indices:  rng.Triangles(4+rng.Intn(8), len(vertices)),
		}.Bytes()

		name := fmt.Sprintf("mesh-%03d", i)
		store.Put(name, buf)
		names = append(names, name)
	}
	return names
}

func TestLoaderLoadSingle(t *testing.T) {
	store := blobstore.NewMemoryStore()
	names := seedStore(store, 1)

	loader, err := swmesh.NewLoader(store)
	require.NoError(t, err)
	defer loader.Close()

	mesh, err := loader.Load(context.Background(), names[0])
	require.NoError(t, err)
	assert.Greater(t, mesh.VertexCount(), 0)

	stats := loader.Stats()
	assert.Equal(t, int64(1), stats.Loaded)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Greater(t, stats.BytesRead, int64(0))
}

func TestLoaderDecodeErrorsAreNotIOErrors(t *testing.T) {
	store := blobstore.NewMemoryStore()
	store.Put("bad", []byte("XXXX definitely not a mesh"))

	loader, err := swmesh.NewLoader(store)
	require.NoError(t, err)
	defer loader.Close()

	_, err = loader.Load(context.Background(), "bad")
	require.ErrorIs(t, err, swmesh.ErrInvalidMagic)
	assert.NotErrorIs(t, err, swmesh.ErrIO)
}

func TestLoaderMissingBlob(t *testing.T) {
	store := blobstore.NewMemoryStore()

	loader, err := swmesh.NewLoader(store)
	require.NoError(t, err)
	defer loader.Close()

	_, err = loader.Load(context.Background(), "nope")
	require.ErrorIs(t, err, swmesh.ErrIO)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoaderBatchCompletenessAndIsolation(t *testing.T) {
	store := blobstore.NewMemoryStore()
	names := seedStore(store, 200)

	// Truncate five of them mid-vertex.
	truncated := map[string]bool{}
	for _, i := range []int{3, 57, 99, 150, 199} {
		name := names[i]
		buf := testutil.Builder{
			Vertices: testutil.NewRNG(int64(i)).Vertices(4),
			Indices:  []uint16{0, 1, 2},
		}.Bytes()
		store.Put(name, buf[:swmesh.HeaderSize+swmesh.VertexSize+3])
		truncated[name] = true
	}

	loader, err := swmesh.NewLoader(store)
	require.NoError(t, err)
	defer loader.Close()

	results, err := loader.LoadAll(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, results, 200)

	okCount, failCount := 0, 0
	for name, r := range results {
		if truncated[name] {
			failCount++
			require.ErrorIs(t, r.Err, swmesh.ErrUnexpectedEOF, "name %s", name)
			assert.Nil(t, r.Mesh)
		} else {
			okCount++
			require.NoError(t, r.Err, "name %s", name)
			require.NotNil(t, r.Mesh)
		}
	}
	assert.Equal(t, 195, okCount)
	assert.Equal(t, 5, failCount)

	stats := loader.Stats()
	assert.Equal(t, int64(195), stats.Loaded)
	assert.Equal(t, int64(5), stats.Failed)
	assert.Equal(t, int64(0), stats.Active)
}

func TestLoaderConcurrencyEquivalence(t *testing.T) {
	store := blobstore.NewMemoryStore()
	names := seedStore(store, 60)

	// Corrupt a few inputs in different ways.
	store.Put(names[5], []byte("XXXX"))
	store.Put(names[23], []byte{})
	buf := testutil.Builder{Vertices: testutil.NewRNG(1).Vertices(4), Indices: []uint16{0, 0, 9}}.Bytes()
	store.Put(names[41], buf)

	outcomes := func(limit int) map[string]bool {
		loader, err := swmesh.NewLoader(store, swmesh.WithMaxConcurrent(limit))
		require.NoError(t, err)
		defer loader.Close()

		results, err := loader.LoadAll(context.Background(), names)
		require.NoError(t, err)

		classified := make(map[string]bool, len(results))
		for name, r := range results {
			classified[name] = r.Err == nil
		}
		return classified
	}

	assert.Equal(t, outcomes(1), outcomes(15))
}

// gateStore wraps a BlobStore and tracks how many blobs are concurrently
// open, i.e. how many loads are simultaneously I/O-active.
type gateStore struct {
	inner blobstore.BlobStore
	delay time.Duration

	active atomic.Int64
	peak   atomic.Int64
}

func (g *gateStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	a := g.active.Add(1)
	for {
		p := g.peak.Load()
		if a <= p || g.peak.CompareAndSwap(p, a) {
			break
		}
	}
	time.Sleep(g.delay)

	blob, err := g.inner.Open(ctx, name)
	if err != nil {
		g.active.Add(-1)
		return nil, err
	}
	return &gateBlob{Blob: blob, store: g}, nil
}

type gateBlob struct {
	blobstore.Blob
	store *gateStore
}

func (b *gateBlob) Close() error {
	b.store.active.Add(-1)
	return b.Blob.Close()
}

func TestLoaderAdmissionBound(t *testing.T) {
	mem := blobstore.NewMemoryStore()
	names := seedStore(mem, 64)
	gate := &gateStore{inner: mem, delay: time.Millisecond}

	const limit = 4
	loader, err := swmesh.NewLoader(gate, swmesh.WithMaxConcurrent(limit))
	require.NoError(t, err)
	defer loader.Close()

	results, err := loader.LoadAll(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, results, len(names))

	assert.LessOrEqual(t, gate.peak.Load(), int64(limit))
	assert.GreaterOrEqual(t, gate.peak.Load(), int64(1))
	assert.LessOrEqual(t, loader.Stats().PeakActive, int64(limit))
}

func TestLoaderMisuse(t *testing.T) {
	_, err := swmesh.NewLoader(nil)
	require.ErrorIs(t, err, swmesh.ErrNilStore)

	store := blobstore.NewMemoryStore()

	_, err = swmesh.NewLoader(store, swmesh.WithMaxConcurrent(0))
	require.ErrorIs(t, err, swmesh.ErrInvalidConcurrency)

	_, err = swmesh.NewLoader(store, swmesh.WithMaxConcurrent(-3))
	require.ErrorIs(t, err, swmesh.ErrInvalidConcurrency)

	loader, err := swmesh.NewLoader(store)
	require.NoError(t, err)
	defer loader.Close()

	_, err = loader.LoadAll(context.Background(), nil)
	require.ErrorIs(t, err, swmesh.ErrNoInputs)
}

func TestLoaderCancelledContextStillCompletesMapping(t *testing.T) {
	store := blobstore.NewMemoryStore()
	names := seedStore(store, 10)

	loader, err := swmesh.NewLoader(store, swmesh.WithMaxConcurrent(2))
	require.NoError(t, err)
	defer loader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := loader.LoadAll(ctx, names)
	require.NoError(t, err)
	require.Len(t, results, len(names))
	for name, r := range results {
		require.Error(t, r.Err, "name %s", name)
		require.ErrorIs(t, r.Err, swmesh.ErrIO, "name %s", name)
	}
}

func TestLoaderTransparentZstd(t *testing.T) {
	vertices := simpleVertices()
	raw := testutil.Builder{
		Vertices: vertices,
		Indices:  []uint16{0, 1, 2},
	}.Bytes()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(raw, nil)
	require.NoError(t, enc.Close())

	store := blobstore.NewMemoryStore()
	store.Put("plain", raw)
	store.Put("compressed", compressed)

	loader, err := swmesh.NewLoader(store)
	require.NoError(t, err)
	defer loader.Close()

	for _, name := range []string{"plain", "compressed"} {
		mesh, err := loader.Load(context.Background(), name)
		require.NoError(t, err, "name %s", name)
		assert.Equal(t, vertices, mesh.Vertices(), "name %s", name)
	}
}

func TestLoaderReadLimitDoesNotChangeOutcomes(t *testing.T) {
	store := blobstore.NewMemoryStore()
	names := seedStore(store, 8)

	loader, err := swmesh.NewLoader(store, swmesh.WithReadLimit(1<<20))
	require.NoError(t, err)
	defer loader.Close()

	results, err := loader.LoadAll(context.Background(), names)
	require.NoError(t, err)
	for name, r := range results {
		require.NoError(t, r.Err, "name %s", name)
	}
}
