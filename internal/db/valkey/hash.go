package valkey

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/kbsearch/internal/db"
)

// scanBatch is the COUNT hint per SCAN round-trip.
const scanBatch = 256

var errNoFields = errors.New("hash has no fields")

// hset builds HSET with fields in name order.
func (s *Store) hset(key string, fields map[string]string) (rueidis.Completed, error) {
	if len(fields) == 0 {
		return rueidis.Completed{}, fmt.Errorf("key %s: %w", key, errNoFields)
	}
	cmd := s.client.B().Hset().Key(key).FieldValue()
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		cmd = cmd.FieldValue(name, fields[name])
	}
	return cmd.Build(), nil
}

// HSet writes fields into the hash at key.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd, err := s.hset(key, fields)
	if err != nil {
		return wrap(db.OpHSet, err)
	}
	return wrap(db.OpHSet, s.client.Do(ctx, cmd).Error())
}

// HSetMulti pipelines one HSET per item. Rewriting a key replaces its
// fields, so repeating a batch leaves the same hashes behind.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(items))
	for _, item := range items {
		cmd, err := s.hset(item.Key, item.Fields)
		if err != nil {
			return wrap(db.OpHSet, err)
		}
		cmds = append(cmds, cmd)
	}

	var errs []error
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", items[i].Key, err))
		}
	}
	return wrap(db.OpHSet, errors.Join(errs...))
}

// HGetAll returns every field of the hash at key; a missing key gives an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.client.Do(ctx, s.client.B().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, wrap(db.OpHGetAll, err)
	}
	return m, nil
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	return wrap(db.OpDel, s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error())
}

// Scan returns the distinct keys matching pattern. SCAN may repeat a key
// across pages, so results are deduplicated.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string

	cursor := uint64(0)
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		page, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, wrap(db.OpScan, err)
		}
		for _, k := range page.Elements {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if cursor = page.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
