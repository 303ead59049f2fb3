package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/repository"
)

// BannerRepository implements port.BannerRepository using PostgreSQL.
type BannerRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewBannerRepository wires a PostgreSQL-backed banner repository.
func NewBannerRepository(exec pgExecutor) *BannerRepository {
	return &BannerRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActive returns all active banners ordered for display.
func (r *BannerRepository) ListActive(ctx context.Context) ([]domain.Banner, error) {
	stmt, args, err := r.builder.Select("id", "title", "image_url", "link_url", "display_order", "active", "created_at", "updated_at").
		From("banners").
		Where(squirrel.Eq{"active": true}).
		OrderBy("display_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list banners sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []domain.Banner
	for rows.Next() {
		var (
			banner  domain.Banner
			linkURL sql.NullString
		)
		if err := rows.Scan(&banner.ID, &banner.Title, &banner.ImageURL, &linkURL, &banner.DisplayOrder, &banner.Active, &banner.CreatedAt, &banner.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		if linkURL.Valid {
			value := linkURL.String
			banner.LinkURL = &value
		}
		banners = append(banners, banner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banners: %w", err)
	}

	return banners, nil
}

// Create inserts a banner and returns it with its assigned id.
func (r *BannerRepository) Create(ctx context.Context, banner domain.Banner) (*domain.Banner, error) {
	now := time.Now().UTC()
	stmt, args, err := r.builder.Insert("banners").
		Columns("title", "image_url", "link_url", "display_order", "active", "created_at", "updated_at").
		Values(banner.Title, banner.ImageURL, banner.LinkURL, banner.DisplayOrder, banner.Active, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert banner sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&banner.ID); err != nil {
		return nil, fmt.Errorf("insert banner: %w", err)
	}

	banner.CreatedAt = now
	banner.UpdatedAt = now
	return &banner, nil
}

// Update replaces the mutable banner fields.
func (r *BannerRepository) Update(ctx context.Context, banner domain.Banner) error {
	stmt, args, err := r.builder.Update("banners").
		Set("title", banner.Title).
		Set("image_url", banner.ImageURL).
		Set("link_url", banner.LinkURL).
		Set("display_order", banner.DisplayOrder).
		Set("active", banner.Active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": banner.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update banner sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a banner.
func (r *BannerRepository) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.exec, r.builder, "banners", id)
}

// FAQRepository implements port.FAQRepository using PostgreSQL.
type FAQRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewFAQRepository wires a PostgreSQL-backed FAQ repository.
func NewFAQRepository(exec pgExecutor) *FAQRepository {
	return &FAQRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActive returns all active FAQ entries grouped by category ordering.
func (r *FAQRepository) ListActive(ctx context.Context) ([]domain.FAQ, error) {
	stmt, args, err := r.builder.Select("id", "question", "answer", "category", "display_order", "active", "created_at", "updated_at").
		From("faqs").
		Where(squirrel.Eq{"active": true}).
		OrderBy("category ASC", "display_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list faqs sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer rows.Close()

	var faqs []domain.FAQ
	for rows.Next() {
		var faq domain.FAQ
		if err := rows.Scan(&faq.ID, &faq.Question, &faq.Answer, &faq.Category, &faq.DisplayOrder, &faq.Active, &faq.CreatedAt, &faq.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		faqs = append(faqs, faq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}

	return faqs, nil
}

// Create inserts a FAQ entry and returns it with its assigned id.
func (r *FAQRepository) Create(ctx context.Context, faq domain.FAQ) (*domain.FAQ, error) {
	now := time.Now().UTC()
	stmt, args, err := r.builder.Insert("faqs").
		Columns("question", "answer", "category", "display_order", "active", "created_at", "updated_at").
		Values(faq.Question, faq.Answer, faq.Category, faq.DisplayOrder, faq.Active, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert faq sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&faq.ID); err != nil {
		return nil, fmt.Errorf("insert faq: %w", err)
	}

	faq.CreatedAt = now
	faq.UpdatedAt = now
	return &faq, nil
}

// Update replaces the mutable FAQ fields.
func (r *FAQRepository) Update(ctx context.Context, faq domain.FAQ) error {
	stmt, args, err := r.builder.Update("faqs").
		Set("question", faq.Question).
		Set("answer", faq.Answer).
		Set("category", faq.Category).
		Set("display_order", faq.DisplayOrder).
		Set("active", faq.Active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": faq.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update faq sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update faq: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a FAQ entry.
func (r *FAQRepository) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.exec, r.builder, "faqs", id)
}

func deleteByID(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table string, id uint64) error {
	stmt, args, err := builder.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s sql: %w", table, err)
	}

	ct, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
