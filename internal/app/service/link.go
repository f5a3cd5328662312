// Package service содержит бизнес-логику сокращения ссылок.
package service

import "time"

// DefaultLinkTTL - время жизни записи с момента создания.
const DefaultLinkTTL = 30 * 24 * time.Hour

// Link описывает одну запись короткой ссылки.
type Link struct {
	ID            string    `json:"uuid"`
	OriginalURL   string    `json:"original_url"`
	ShortCode     string    `json:"short_code"`
	IsCustomAlias bool      `json:"is_custom_alias"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired сообщает, истёк ли срок жизни записи к моменту now.
func (l Link) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// ResultKind показывает, что именно сделал Shorten.
type ResultKind int

const (
	KindCreated ResultKind = iota
	KindExisting
	KindUpdatedExisting
)

func (k ResultKind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindExisting:
		return "existing"
	case KindUpdatedExisting:
		return "updated_existing"
	default:
		return "unknown"
	}
}

// Outcome - результат сокращения.
// PreviousCode заполняется, когда у существующей записи сменился код.
type Outcome struct {
	Link         Link
	Kind         ResultKind
	PreviousCode string
}
