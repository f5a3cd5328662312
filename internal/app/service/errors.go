package service

import "errors"

var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrInvalidAlias  = errors.New("custom alias can only contain letters, numbers, hyphens and underscores")
	ErrAliasTaken    = errors.New("custom alias is already in use")
	ErrNotFound      = errors.New("URL not found")
	ErrCodeExhausted = errors.New("failed to allocate a unique short code")

	// ErrCodeCollision возвращается хранилищем, если сгенерированный код уже занят.
	// Наружу из сервиса не выходит.
	ErrCodeCollision = errors.New("short code collision")
)

// StorageError оборачивает любую ошибку хранилища.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError возвращает nil, если err == nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError проверяет, что в цепочке err есть StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
