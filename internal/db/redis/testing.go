package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an arbitrary rueidis client (normally a mock).
func NewStoreForTest(client rueidis.Client) *Store {
	return &Store{client: client}
}
