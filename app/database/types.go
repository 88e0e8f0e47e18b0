package database

import (
	"time"
)

// PageRecord is a row of the pages table.
type PageRecord struct {
	Book            string
	Path            string
	Title           string
	Description     string
	RightsHolder    string
	DateCopyrighted string
	ModTime         time.Time // Source file modification time
	IndexedAt       time.Time
}

type ChildRecord struct {
	Book string
	Path string
}

// ElementRecord is a row of the elements table. News-only columns are empty for sections.
type ElementRecord struct {
	ID          string
	Kind        string
	Title       string
	Description string
	Body        string
	PubDate     *time.Time
	TargetBook  string
	TargetPage  string
	View        string
	Anchor      string
}
