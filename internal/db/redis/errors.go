package redis

import (
	"errors"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecscope/internal/db"
)

// serverReplies maps lowercase server error fragments to sentinels. Redis and
// valkey-search word a missing index differently.
var serverReplies = []struct {
	fragment string
	err      error
}{
	{"unknown index name", db.ErrIndexNotFound},
	{"no such index", db.ErrIndexNotFound},
	{"index already exists", db.ErrIndexExists},
}

// wrap turns a command error into a db sentinel when the server reply is a
// known one, and into *db.Error otherwise. nil stays nil.
func wrap(op string, err error) error {
	return wrapKey(op, "", err)
}

func wrapKey(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var re *rueidis.RedisError
	if errors.As(err, &re) {
		msg := strings.ToLower(re.Error())
		for _, r := range serverReplies {
			if strings.Contains(msg, r.fragment) {
				return r.err
			}
		}
	}
	return &db.Error{Op: op, Key: key, Err: err}
}
