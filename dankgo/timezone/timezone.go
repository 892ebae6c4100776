package timezone

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Load is a cached time.LoadLocation. Zone lookups hit the filesystem and
// happen on every scored message, so resolved locations are kept in a small
// LRU shared by the whole process.
var cache *lru.Cache

func init() {
	// 128 zones covers every chat a single bot realistically serves.
	cache, _ = lru.New(128)
}

func Load(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	if cached, ok := cache.Get(name); ok {
		return cached.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	cache.Add(name, loc)
	return loc, nil
}

// Valid reports whether name resolves to a known zone.
func Valid(name string) bool {
	_, err := Load(name)
	return err == nil
}
