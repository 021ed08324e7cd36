package swmesh

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/nautiq/swmesh/blobstore"
)

// DefaultMaxConcurrent is the default admission limit for concurrent loads.
// Empirically, bulk throughput on local disks and object stores peaks around
// this value rather than at "one goroutine per file".
const DefaultMaxConcurrent = 15

// zstdMagic is the zstandard frame header, little-endian.
const zstdMagic = 0xFD2FB528

// Result is one input's outcome in a bulk load. Exactly one of Mesh and Err
// is set.
type Result struct {
	Mesh *Mesh
	Err  error
}

// Loader decodes mesh files obtained from a blob store, fanning out across
// inputs under a counting permit pool. A Loader is safe for concurrent use;
// it holds no per-file state.
type Loader struct {
	store   blobstore.BlobStore
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *Logger
	zstd    *zstd.Decoder
	stats   loaderStats
}

// NewLoader creates a Loader reading from store.
//
// Invalid configuration (nil store, non-positive admission limit) is a
// programmer error and fails immediately; it is never reported through
// per-file results.
func NewLoader(store blobstore.BlobStore, opts ...Option) (*Loader, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxConcurrent <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidConcurrency, o.maxConcurrent)
	}

	var limiter *rate.Limiter
	if o.readLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.readLimit), o.readLimit)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Loader{
		store:   store,
		sem:     semaphore.NewWeighted(o.maxConcurrent),
		limiter: limiter,
		logger:  o.logger,
		zstd:    dec,
	}, nil
}

// Close releases decompression resources. The loader must not be used after
// Close.
func (l *Loader) Close() {
	if l == nil {
		return
	}
	l.zstd.Close()
}

// Stats returns a snapshot of loader activity counters.
func (l *Loader) Stats() Stats {
	return l.stats.snapshot()
}

// Load decodes a single mesh under the admission limit.
//
// Failures to obtain the file's bytes wrap ErrIO; decode failures carry the
// package's decode error kinds. Either way the error is a returned value,
// never a fault.
func (l *Loader) Load(ctx context.Context, name string) (*Mesh, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, name, err)
	}
	defer l.sem.Release(1)

	return l.load(ctx, name)
}

// LoadAll decodes every named input concurrently under the admission limit
// and returns a result for each, keyed by name. Completion order is
// unspecified; the returned map always covers every requested input exactly
// once. One input's failure never aborts or affects another's.
//
// The returned error is non-nil only for caller misuse (an empty batch);
// per-file outcomes, including I/O failures and a context cancelled
// mid-batch, are reported through the map.
func (l *Loader) LoadAll(ctx context.Context, names []string) (map[string]Result, error) {
	if len(names) == 0 {
		return nil, ErrNoInputs
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Result, len(names))
	)

	record := func(name string, mesh *Mesh, err error) {
		mu.Lock()
		results[name] = Result{Mesh: mesh, Err: err}
		mu.Unlock()
	}

	for _, name := range names {
		// A permit is acquired before work for an input is launched;
		// pre-launching everything and hoping the scheduler throttles
		// would defeat admission control.
		if err := l.sem.Acquire(ctx, 1); err != nil {
			// Context cancelled mid-batch: the remaining inputs
			// still get their own entry.
			record(name, nil, fmt.Errorf("%w: %s: %w", ErrIO, name, err))
			continue
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer l.sem.Release(1)

			mesh, err := l.load(ctx, name)
			record(name, mesh, err)
		}(name)
	}

	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	l.logger.LogBatch(ctx, len(names), failed)

	return results, nil
}

// load is the single unit of work the bulk path schedules. The caller must
// hold one permit.
func (l *Loader) load(ctx context.Context, name string) (*Mesh, error) {
	l.stats.enter()
	defer l.stats.exit()

	blob, err := l.store.Open(ctx, name)
	if err != nil {
		l.stats.failure(0)
		err = fmt.Errorf("%w: %s: %w", ErrIO, name, err)
		l.logger.LogLoad(ctx, name, 0, err)
		return nil, err
	}
	defer blob.Close()

	data, err := l.read(ctx, blob)
	if err != nil {
		l.stats.failure(0)
		err = fmt.Errorf("%w: %s: %w", ErrIO, name, err)
		l.logger.LogLoad(ctx, name, 0, err)
		return nil, err
	}

	mesh, err := Decode(data)
	if err != nil {
		l.stats.failure(len(data))
		l.logger.LogLoad(ctx, name, len(data), err)
		return nil, err
	}

	l.stats.success(len(data))
	l.logger.LogLoad(ctx, name, len(data), nil)
	return mesh, nil
}

// read obtains the blob's full content, throttled when a read limit is
// configured, and transparently decompresses zstd-framed payloads. The
// returned slice may alias the blob and is only used before blob.Close.
func (l *Loader) read(ctx context.Context, blob blobstore.Blob) ([]byte, error) {
	data, err := blob.Bytes(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.throttle(ctx, len(data)); err != nil {
		return nil, err
	}

	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == zstdMagic {
		decompressed, err := l.zstd.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompression failed: %w", err)
		}
		return decompressed, nil
	}

	return data, nil
}

// throttle waits for read budget in burst-sized chunks so blobs larger than
// the configured burst still pass.
func (l *Loader) throttle(ctx context.Context, n int) error {
	if l.limiter == nil || n <= 0 {
		return nil
	}
	burst := l.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := l.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
