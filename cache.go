/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// ParsedCache is a read-through cache of parsed templates keyed by template id.
// The key also carries a fingerprint of the template text, so a template whose
// rendered text varies between calls never returns a stale statement.
// Concurrent misses on one key parse once. A nil *ParsedCache parses every time.
type ParsedCache struct {
	lru   *expirable.LRU[string, *ParameterizedSQL]
	group singleflight.Group
	parse func(SQLSource) (*ParameterizedSQL, error)
}

// NewParsedCache 创建解析缓存，capacity<=0 时返回 nil（不缓存），ttl<=0 表示不过期
func NewParsedCache(capacity int, ttl time.Duration) *ParsedCache {
	if capacity <= 0 {
		return nil
	}
	return &ParsedCache{
		lru:   expirable.NewLRU[string, *ParameterizedSQL](capacity, nil, ttl),
		parse: Parse,
	}
}

// Get returns the parsed form of src, parsing it on a miss. Parse errors are not cached.
func (c *ParsedCache) Get(src SQLSource) (*ParameterizedSQL, error) {
	if c == nil {
		return Parse(src)
	}
	key := cacheKey(src)
	if ps, ok := c.lru.Get(key); ok {
		return ps, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if ps, ok := c.lru.Get(key); ok {
			return ps, nil
		}
		ps, err := c.parse(src)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, ps)
		return ps, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ParameterizedSQL), nil
}

// Purge drops every entry, e.g. after templates were reloaded
func (c *ParsedCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *ParsedCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func cacheKey(src SQLSource) string {
	return src.ID + "#" + strconv.FormatUint(xxhash.Sum64String(src.SQL), 16)
}
