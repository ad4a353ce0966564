// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package oracle

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes generated traces. Concurrent requests for the same
// configuration share a single generation. A Cache is safe for concurrent use.
//
// Cached traces are shared between callers and must not be modified.
//
type Cache struct {
	lru *lru.Cache[Config, Trace]
	sf  singleflight.Group
}

// NewCache returns a cache holding at most size traces.
//
func NewCache(size int) (*Cache, error) {
	l, err := lru.New[Config, Trace](size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trace cache")
	}
	return &Cache{lru: l}, nil
}

// Get returns the trace for cfg, generating it if needed.
//
func (c *Cache) Get(cfg Config) (Trace, error) {
	if t, ok := c.lru.Get(cfg); ok {
		return t, nil
	}
	v, err, _ := c.sf.Do(fmt.Sprintf("%#v", cfg), func() (interface{}, error) {
		if t, ok := c.lru.Get(cfg); ok {
			return t, nil
		}
		t, err := Generate(cfg)
		if err != nil {
			return nil, err
		}
		c.lru.Add(cfg, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Trace), nil
}

// Contains reports whether the trace for cfg is cached, without updating its
// recentness.
//
func (c *Cache) Contains(cfg Config) bool { return c.lru.Contains(cfg) }

// Len returns the number of cached traces.
//
func (c *Cache) Len() int { return c.lru.Len() }

// Purge empties the cache.
//
func (c *Cache) Purge() { c.lru.Purge() }
