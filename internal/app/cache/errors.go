package cache

import "errors"

var (
	// ErrCacheMiss - ключа нет в кэше.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidCacheKey - пустой ключ.
	ErrInvalidCacheKey = errors.New("invalid cache key")
)

// CacheError - структурированная ошибка кэша.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return "cache " + e.Op + " '" + e.Key + "': " + e.Err.Error()
	}
	return "cache " + e.Op + ": " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func NewCacheError(op, key string, err error) error {
	return &CacheError{Op: op, Key: key, Err: err}
}
