package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Compile-time check that CachedClient implements Client.
var _ Client = (*CachedClient)(nil)

// cacheFileExt is the suffix of cache entry files.
const cacheFileExt = ".json.zst"

// ExerciseCache stores fetched exercise definitions.
type ExerciseCache interface {
	// Get returns the cached exercise and true on a fresh hit.
	Get(id string) (*Exercise, bool, error)
	Put(ex *Exercise) error
}

type cacheEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Exercise  *Exercise `json:"exercise"`
}

// FileCache is an ExerciseCache backed by zstd-compressed JSON files, one per
// exercise. Entries are keyed by an xxhash of the service namespace and the
// exercise id so that caches of different judges never collide.
type FileCache struct {
	dir       string
	namespace string
	ttl       time.Duration
	now       func() time.Time
}

// NewFileCache creates a FileCache rooted at dir. A ttl of zero keeps
// entries forever.
func NewFileCache(dir, namespace string, ttl time.Duration) *FileCache {
	return &FileCache{dir: dir, namespace: namespace, ttl: ttl, now: time.Now}
}

// Path returns the file an exercise id is cached in.
func (c *FileCache) Path(id string) string {
	key := xxhash.Sum64String(c.namespace + "\x00" + id)
	return filepath.Join(c.dir, fmt.Sprintf("%016x%s", key, cacheFileExt))
}

// Get reads a cache entry. Missing and expired entries are misses, not
// errors.
func (c *FileCache) Get(id string) (*Exercise, bool, error) {
	data, err := os.ReadFile(c.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cache entry: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	if entry.Exercise == nil || entry.Exercise.ID != id {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil, false, nil
	}
	return entry.Exercise, true, nil
}

// Put writes ex to the cache atomically (temp file + rename).
func (c *FileCache) Put(ex *Exercise) error {
	if ex == nil || ex.ID == "" {
		return errors.New("cache: exercise without id")
	}
	raw, err := json.Marshal(cacheEntry{FetchedAt: c.now(), Exercise: ex})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	data := enc.EncodeAll(raw, nil)
	_ = enc.Close()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing cache entry: %w", err)
	}
	if err := os.Rename(tmpName, c.Path(ex.ID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	return nil
}

// cacheLogger is the logging subset CachedClient needs.
type cacheLogger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// CachedClient serves FetchExercise from an ExerciseCache when asked to and
// delegates everything else. Cache failures are logged and fall through to
// the wrapped client; they never fail a fetch.
type CachedClient struct {
	next   Client
	cache  ExerciseCache
	logger cacheLogger
}

// NewCachedClient wraps next with cache. logger may be nil.
func NewCachedClient(next Client, cache ExerciseCache, logger cacheLogger) *CachedClient {
	return &CachedClient{next: next, cache: cache, logger: logger}
}

// FetchExercise returns a cached copy when useCache is set and the cache has
// a fresh entry; otherwise it fetches and refreshes the cache.
func (c *CachedClient) FetchExercise(ctx context.Context, id string, useCache bool) (*Exercise, error) {
	if useCache {
		ex, ok, err := c.cache.Get(id)
		switch {
		case err != nil:
			c.warn("exercise cache read failed", "id", id, "error", err)
		case ok:
			c.debug("exercise cache hit", "id", id)
			return ex.Clone(), nil
		default:
			c.debug("exercise cache miss", "id", id)
		}
	}

	ex, err := c.next.FetchExercise(ctx, id, useCache)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(ex); err != nil {
		c.warn("exercise cache write failed", "id", id, "error", err)
	}
	return ex, nil
}

// ExecuteTestCase is never cached.
func (c *CachedClient) ExecuteTestCase(ctx context.Context, ex *Exercise) ([]Reply, error) {
	return c.next.ExecuteTestCase(ctx, ex)
}

func (c *CachedClient) debug(msg string, kv ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, kv...)
	}
}

func (c *CachedClient) warn(msg string, kv ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, kv...)
	}
}
