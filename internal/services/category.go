package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/avaldes/remarket-api/internal/database"
	"github.com/avaldes/remarket-api/internal/models"
)

var (
	ErrCategoryCycle   = errors.New("category parent chain forms a cycle")
	ErrInvalidCategory = errors.New("invalid category")
	ErrSlugTaken       = errors.New("category slug already exists")
)

// Parent chains deeper than this are treated as corrupt.
const maxCategoryDepth = 100

const categoryColumns = `id, name, slug, type, parent_category_id, created_at, updated_at`

type CategoryService struct {
	db     *database.DB
	logger *slog.Logger
}

func NewCategoryService(db *database.DB, logger *slog.Logger) *CategoryService {
	return &CategoryService{db: db, logger: logger.With(slog.String("component", "category_service"))}
}

func (s *CategoryService) Create(ctx context.Context, name, categoryType string, parentID *int64) (*models.Category, error) {
	if !models.ValidListingType(categoryType) {
		return nil, fmt.Errorf("unknown type %q: %w", categoryType, ErrInvalidCategory)
	}

	if parentID != nil {
		parent, err := s.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		// Subtrees are homogeneous in type.
		if parent.Type != categoryType {
			return nil, fmt.Errorf("parent is %s: %w", parent.Type, ErrCategoryTypeMismatch)
		}
	}

	var category models.Category
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, type, parent_category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns+`
	`, name, Slugify(name), categoryType, parentID).Scan(
		&category.ID, &category.Name, &category.Slug, &category.Type,
		&category.ParentID, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created", slog.Int64("category_id", category.ID), slog.String("slug", category.Slug))
	return &category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE id = $1
	`, id).Scan(
		&category.ID, &category.Name, &category.Slug, &category.Type,
		&category.ParentID, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// List returns all categories, optionally restricted to one listing type,
// ordered so parents sort before their children in the common case.
func (s *CategoryService) List(ctx context.Context, typeFilter *string) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	args := []any{}
	if typeFilter != nil {
		query += ` WHERE type = $1`
		args = append(args, *typeFilter)
	}
	query += ` ORDER BY parent_category_id NULLS FIRST, name`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Type, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update renames a category and/or moves it under a new parent. Moves are
// rejected when the new parent chain would loop back through the category.
func (s *CategoryService) Update(ctx context.Context, id int64, name *string, parentID *int64) (*models.Category, error) {
	if parentID != nil {
		if *parentID == id {
			return nil, ErrCategoryCycle
		}
		if err := s.checkNoCycle(ctx, id, *parentID); err != nil {
			return nil, err
		}
	}

	var slug *string
	if name != nil {
		v := Slugify(*name)
		slug = &v
	}

	var category models.Category
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE categories SET
			name = COALESCE($1, name),
			slug = COALESCE($2, slug),
			parent_category_id = COALESCE($3, parent_category_id),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns+`
	`, name, slug, parentID, id).Scan(
		&category.ID, &category.Name, &category.Slug, &category.Type,
		&category.ParentID, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	return &category, nil
}

// Delete removes a category. Children are re-rooted by the schema's
// ON DELETE SET NULL; listings referencing the category keep it alive via
// the foreign key, surfacing as a constraint error.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	s.logger.Info("category deleted", slog.Int64("category_id", id))
	return nil
}

// checkNoCycle walks the prospective parent chain upward and fails if it
// reaches id. The depth cap guards against pre-existing loops in the data.
func (s *CategoryService) checkNoCycle(ctx context.Context, id, newParentID int64) error {
	current := newParentID
	for depth := 0; depth < maxCategoryDepth; depth++ {
		var parent *int64
		err := s.db.Pool.QueryRow(ctx, `
			SELECT parent_category_id FROM categories WHERE id = $1
		`, current).Scan(&parent)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCategoryNotFound
			}
			return err
		}
		if parent == nil {
			return nil
		}
		if *parent == id {
			return ErrCategoryCycle
		}
		current = *parent
	}
	return ErrCategoryCycle
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func isUniqueViolation(err error) bool {
	// 23505 is Postgres unique_violation.
	return err != nil && strings.Contains(err.Error(), "23505")
}
