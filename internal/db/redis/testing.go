package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an existing client, typically a rueidis mock.
// The flavor defaults to FlavorRedis.
func NewStoreForTest(c rueidis.Client, flavor ...Flavor) *Store {
	s := &Store{client: c, flavor: FlavorRedis}
	if len(flavor) > 0 {
		s.flavor = flavor[0]
	}
	return s
}
