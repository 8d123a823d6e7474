package cache

import (
	"errors"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Cache keeps serialized responses in memory, keyed by string.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Clear()
}

var _ Cache = (*ResponseCache)(nil)

type ResponseCache struct {
	store        *freecache.Cache
	expireSecond int
}

// NewResponseCache creates a cache of sizeMB megabytes; entries expire after ttl (0 means never).
func NewResponseCache(sizeMB int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store:        freecache.NewCache(sizeMB * megabyte),
		expireSecond: int(ttl.Seconds()),
	}
}

func (c *ResponseCache) Get(key string) ([]byte, bool) {
	value, err := c.store.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("cache get %s: %s", key, err)
		}
		return nil, false
	}
	return value, true
}

func (c *ResponseCache) Set(key string, value []byte) {
	if err := c.store.Set([]byte(key), value, c.expireSecond); err != nil {
		log.Errorf("cache set %s [%d bytes]: %s", key, len(value), err)
	}
}

func (c *ResponseCache) Delete(key string) {
	c.store.Del([]byte(key))
}

func (c *ResponseCache) Clear() {
	c.store.Clear()
}
