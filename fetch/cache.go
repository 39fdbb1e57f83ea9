package fetch

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"time"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrNotCached = errors.New("page not cached")

const normalizationFlags = purell.FlagsSafe |
	purell.FlagsUsuallySafeNonGreedy |
	purell.FlagRemoveFragment |
	purell.FlagSortQuery

type cachedPage struct {
	Contents  []byte
	FetchedAt int64
}

// Cache keeps fetched pages keyed by normalized URL. Entries expire after the
// configured TTL; a zero TTL keeps them until the cache directory is removed.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens a cache stored in dir. An empty dir keeps the cache in memory.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	options := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		options = options.WithInMemory(true)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(rawURL string) ([]byte, error) {
	normalized, err := purell.NormalizeURLString(rawURL, normalizationFlags)
	if err != nil {
		return nil, err
	}
	return []byte(normalized), nil
}

func (c *Cache) Get(ctx context.Context, rawURL string) ([]byte, error) {
	_, span := tracer.Start(ctx, "Cache.Get")
	defer span.End()

	key, err := cacheKey(rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return nil, err
	}
	span.SetAttributes(attribute.String("cache_key", string(key)))

	var serialized []byte
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		serialized, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotCached
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cached page")
		return nil, err
	}

	var page cachedPage
	if err := gob.NewDecoder(bytes.NewReader(serialized)).Decode(&page); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached page")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("content_length", len(page.Contents)),
		attribute.Int64("fetched_at", page.FetchedAt),
	)
	return page.Contents, nil
}

func (c *Cache) Set(ctx context.Context, rawURL string, contents []byte) error {
	_, span := tracer.Start(ctx, "Cache.Set")
	defer span.End()

	key, err := cacheKey(rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", string(key)))

	var serialized bytes.Buffer
	page := cachedPage{Contents: contents, FetchedAt: time.Now().Unix()}
	if err := gob.NewEncoder(&serialized).Encode(page); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize page")
		return err
	}

	entry := badger.NewEntry(key, serialized.Bytes())
	if c.ttl > 0 {
		entry = entry.WithTTL(c.ttl)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cached page")
		return err
	}
	return nil
}
