package querycache

import (
	"fmt"
	"strings"
)

// Key identifies one logical query result in the cache.
type Key string

const KeyFeed Key = "feed"

func KeyDeal(id string) Key {
	return Key("deal:" + id)
}

func KeyProfile(id string) Key {
	return Key("profile:" + id)
}

// KeyRestaurants buckets nearby-restaurant queries onto a coarse coordinate
// grid so that small GPS jitter hits the same cache entry.
func KeyRestaurants(lat, lng float64) Key {
	return Key(fmt.Sprintf("restaurants:%.2f:%.2f", lat, lng))
}

func (k Key) String() string {
	return string(k)
}

// Prefix returns the key's logical resource name, used as a metric label to
// keep cardinality bounded.
func (k Key) Prefix() string {
	if i := strings.IndexByte(string(k), ':'); i >= 0 {
		return string(k[:i])
	}

	return string(k)
}
