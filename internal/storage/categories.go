package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"feedtui/internal/domain/entity"
)

// categoryDepthSafetyLimit bounds the ancestor walk CreateCategory performs
// to compute depth; mirrors entity's own safety limit since the tree is
// acyclic by construction (parent_id foreign key plus this very check).
const categoryDepthSafetyLimit = 50

// sanitizeCategoryName strips control characters and surrounding whitespace,
// matching the defense applied to article titles taken from feed XML.
func sanitizeCategoryName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// CreateCategory creates a category, enforcing entity.MaxCategoryDepth by
// walking the ancestor chain of parentID.
func (s *Store) CreateCategory(ctx context.Context, name string, parentID *int64) (entity.Category, error) {
	name = sanitizeCategoryName(name)
	if name == "" {
		return entity.Category{}, fmt.Errorf("CreateCategory: %w", entity.ErrInvalidInput)
	}

	if parentID != nil {
		depth, err := s.categoryDepth(ctx, *parentID)
		if err != nil {
			return entity.Category{}, fmt.Errorf("CreateCategory: %w", err)
		}
		if depth+1 >= entity.MaxCategoryDepth {
			return entity.Category{}, fmt.Errorf("CreateCategory: %w: exceeds max depth", entity.ErrValidationFailed)
		}
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (name, parent_id) VALUES (?, ?)`, name, parentID)
	if err != nil {
		return entity.Category{}, fmt.Errorf("CreateCategory: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return entity.Category{}, fmt.Errorf("CreateCategory: %w", err)
	}

	return entity.Category{ID: id, Name: name, ParentID: parentID}, nil
}

// categoryDepth walks the ancestor chain of id, bounded by
// categoryDepthSafetyLimit, returning how many ancestors it has (0 for a root).
func (s *Store) categoryDepth(ctx context.Context, id int64) (int, error) {
	depth := 0
	current := id
	for i := 0; i < categoryDepthSafetyLimit; i++ {
		var parentID sql.NullInt64
		err := s.db.QueryRowContext(ctx, `SELECT parent_id FROM categories WHERE id = ?`, current).Scan(&parentID)
		if err == sql.ErrNoRows {
			return 0, entity.ErrNotFound
		}
		if err != nil {
			return 0, err
		}
		if !parentID.Valid {
			return depth, nil
		}
		depth++
		current = parentID.Int64
	}
	return depth, nil
}

// RenameCategory sanitizes and applies a new name.
func (s *Store) RenameCategory(ctx context.Context, id int64, name string) error {
	name = sanitizeCategoryName(name)
	if name == "" {
		return fmt.Errorf("RenameCategory: %w", entity.ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("RenameCategory: %w", err)
	}
	return rowsAffectedOrNotFound(res, "RenameCategory")
}

// DeleteCategory clears category_id on affected feeds, then deletes the row;
// children's parent_id becomes null via the foreign-key rule.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE feeds SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("DeleteCategory: clear feeds: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("DeleteCategory: %w", err)
		}
		return rowsAffectedOrNotFound(res, "DeleteCategory")
	})
}

// MoveFeedToCategory is an alias over RecategorizeFeed kept for callers that
// think in terms of the category tree rather than the feed record.
func (s *Store) MoveFeedToCategory(ctx context.Context, feedID int64, categoryID *int64) error {
	return s.RecategorizeFeed(ctx, feedID, categoryID)
}

// ListCategories returns the flat category tree ordered by sort_order, name.
func (s *Store) ListCategories(ctx context.Context) ([]entity.Category, error) {
	const query = `SELECT id, name, parent_id, sort_order FROM categories ORDER BY sort_order, name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	defer rows.Close()

	cats := make([]entity.Category, 0, 16)
	for rows.Next() {
		var c entity.Category
		var parentID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &parentID, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("ListCategories: %w", err)
		}
		if parentID.Valid {
			id := parentID.Int64
			c.ParentID = &id
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
