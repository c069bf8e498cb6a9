package store

import (
	"sort"
	"strings"

	redis "github.com/go-redis/redis/v7"
)

// Redis stores documents as json strings in redis, keys are namespaced with Prefix
type Redis struct {
	Client *redis.Client
	Prefix string
}

// NewRedis returns redis store
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		Client: client,
		Prefix: prefix,
	}
}

// Raw returns stored document bytes
func (r *Redis) Raw(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	bs, err := r.Client.Get(r.Prefix + key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}

	return bs, err
}

// Get decodes document into v
func (r *Redis) Get(key string, v interface{}) error {
	bs, err := r.Raw(key)
	if err != nil {
		return err
	}

	return decode(key, bs, v)
}

// Put overwrites document
func (r *Redis) Put(key string, v interface{}) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	bs, err := encode(v)
	if err != nil {
		return err
	}

	return r.Client.Set(r.Prefix+key, bs, 0).Err()
}

// Delete removes document
func (r *Redis) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	return r.Client.Del(r.Prefix + key).Err()
}

// Keys lists document keys with given prefix
func (r *Redis) Keys(prefix string) ([]string, error) {
	slice, err := r.Client.Keys(r.Prefix + prefix + "*").Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(slice))

	for _, s := range slice {
		keys = append(keys, strings.TrimPrefix(s, r.Prefix))
	}

	sort.Strings(keys)

	return keys, nil
}
