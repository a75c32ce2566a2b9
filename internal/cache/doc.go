// Package cache provides a small generic LRU cache.
//
//	c := cache.New[key, *pond.Register](8)
//	if reg, ok := c.Get(k); !ok {
//		c.Set(k, build())
//	}
//
// Building is left to the caller, so a slow build never holds the lock.
// Cache is safe for concurrent use and must not be copied after creation.
package cache
