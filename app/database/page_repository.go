package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/news-rss/app/content"
)

var _ PageRepository = (*pageRepository)(nil)

type pageRepository struct {
	db *DB
}

func NewPageRepository(db *DB) PageRepository {
	return &pageRepository{db: db}
}

// UpsertPage replaces the indexed capture of a page, including its children and elements.
func (r *pageRepository) UpsertPage(ctx context.Context, page *content.Page, modTime time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	book, path := page.Ref.BookName(), page.Ref.Path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pages (book, path, title, description, rights_holder, date_copyrighted, mod_time, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (book, path) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			rights_holder = excluded.rights_holder,
			date_copyrighted = excluded.date_copyrighted,
			mod_time = excluded.mod_time,
			indexed_at = excluded.indexed_at
	`, book, path, page.Title, page.Description,
		page.Copyright.RightsHolder, page.Copyright.DateCopyrighted,
		modTime.UnixNano(), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM page_children WHERE book = ? AND path = ?`, book, path); err != nil {
		return fmt.Errorf("failed to clear page children: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM elements WHERE book = ? AND path = ?`, book, path); err != nil {
		return fmt.Errorf("failed to clear page elements: %w", err)
	}

	for i, child := range page.Children {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO page_children (book, path, position, child_book, child_path)
			VALUES (?, ?, ?, ?, ?)
		`, book, path, i, child.BookName(), child.Path)
		if err != nil {
			return fmt.Errorf("failed to store child %s: %w", child.String(), err)
		}
	}

	for i, element := range page.Elements {
		record := ElementRecord{
			ID:   element.ElementID(),
			Kind: element.Kind(),
			Body: element.Body(),
		}
		if news, ok := element.(*content.News); ok {
			pubDate := news.PubDate
			record.Title = news.Title
			record.Description = news.Description
			record.PubDate = &pubDate
			record.TargetBook = news.Book
			record.TargetPage = news.TargetPage
			record.View = news.View
			record.Anchor = news.Element
		}

		var pubDate sql.NullString
		if record.PubDate != nil {
			pubDate = sql.NullString{String: record.PubDate.UTC().Format(time.RFC3339Nano), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO elements (
				book, path, position, element_id, kind, title, description, body,
				pub_date, target_book, target_page, view, anchor
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, book, path, i, record.ID, record.Kind, record.Title, record.Description, record.Body,
			pubDate, record.TargetBook, record.TargetPage, record.View, record.Anchor)
		if err != nil {
			return fmt.Errorf("failed to store element %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page: %w", err)
	}

	return nil
}

func (r *pageRepository) DeletePage(ctx context.Context, book, path string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"elements", "page_children", "pages"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE book = ? AND path = ?`, book, path); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page deletion: %w", err)
	}

	return nil
}

func (r *pageRepository) PageExists(ctx context.Context, book, path string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM pages WHERE book = ? AND path = ?)
	`, book, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check page: %w", err)
	}
	return exists, nil
}

// GetPageModTimes returns the indexed source modification times of a book's pages by path.
func (r *pageRepository) GetPageModTimes(ctx context.Context, book string) (map[string]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT path, mod_time FROM pages WHERE book = ?`, book)
	if err != nil {
		return nil, fmt.Errorf("failed to query page times: %w", err)
	}
	defer rows.Close()

	modTimes := make(map[string]time.Time)
	for rows.Next() {
		var path string
		var modTime int64
		if err := rows.Scan(&path, &modTime); err != nil {
			return nil, fmt.Errorf("failed to scan page time: %w", err)
		}
		modTimes[path] = time.Unix(0, modTime)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate page times: %w", err)
	}

	return modTimes, nil
}

func (r *pageRepository) GetPageCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// GetPage returns the indexed page with its children and elements in document
// order, or a nil record if the page is not indexed. Bodies are only read when
// withBodies is set.
func (r *pageRepository) GetPage(ctx context.Context, book, path string, withBodies bool) (*PageRecord, []ChildRecord, []ElementRecord, error) {
	var page PageRecord
	var modTime int64
	var indexedAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT book, path, title, description, rights_holder, date_copyrighted, mod_time, indexed_at
		FROM pages
		WHERE book = ? AND path = ?
	`, book, path).Scan(&page.Book, &page.Path, &page.Title, &page.Description,
		&page.RightsHolder, &page.DateCopyrighted, &modTime, &indexedAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.ModTime = time.Unix(0, modTime)
	if page.IndexedAt, err = time.Parse(time.RFC3339Nano, indexedAt); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse indexed_at: %w", err)
	}

	children, err := r.getChildren(ctx, book, path)
	if err != nil {
		return nil, nil, nil, err
	}

	elements, err := r.getElements(ctx, book, path, withBodies)
	if err != nil {
		return nil, nil, nil, err
	}

	return &page, children, elements, nil
}

func (r *pageRepository) getChildren(ctx context.Context, book, path string) ([]ChildRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT child_book, child_path
		FROM page_children
		WHERE book = ? AND path = ?
		ORDER BY position
	`, book, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []ChildRecord
	for rows.Next() {
		var child ChildRecord
		if err := rows.Scan(&child.Book, &child.Path); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate children: %w", err)
	}

	return children, nil
}

func (r *pageRepository) getElements(ctx context.Context, book, path string, withBodies bool) ([]ElementRecord, error) {
	bodyColumn := "''"
	if withBodies {
		bodyColumn = "body"
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT element_id, kind, title, description, `+bodyColumn+`, pub_date,
			target_book, target_page, view, anchor
		FROM elements
		WHERE book = ? AND path = ?
		ORDER BY position
	`, book, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()

	var elements []ElementRecord
	for rows.Next() {
		var element ElementRecord
		var pubDate sql.NullString

		err := rows.Scan(&element.ID, &element.Kind, &element.Title, &element.Description, &element.Body,
			&pubDate, &element.TargetBook, &element.TargetPage, &element.View, &element.Anchor)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}

		if pubDate.Valid {
			parsed, err := time.Parse(time.RFC3339Nano, pubDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse pub_date of %s: %w", element.ID, err)
			}
			element.PubDate = &parsed
		}

		elements = append(elements, element)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate elements: %w", err)
	}

	return elements, nil
}
