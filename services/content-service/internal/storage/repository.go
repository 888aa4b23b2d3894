package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/equitylawandco/lawsite/libs/db"
	"github.com/equitylawandco/lawsite/services/content-service/internal/content"
	"github.com/equitylawandco/lawsite/services/content-service/internal/slugs"
	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db db.DB
}

func NewRepository(d db.DB) *Repository {
	return &Repository{db: d}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// slugTables are the tables with a unique slug column.
var slugTables = map[string]bool{
	"practice_areas": true,
	"attorneys":      true,
	"blog_posts":     true,
}

func (r *Repository) uniqueSlug(ctx context.Context, q db.Querier, table, source string) (string, error) {
	if !slugTables[table] {
		return "", fmt.Errorf("storage: %s has no slug column", table)
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)`, table)
	return slugs.Unique(ctx, source, func(ctx context.Context, candidate string) (bool, error) {
		var taken bool
		err := q.QueryRow(ctx, query, candidate).Scan(&taken)
		return taken, err
	})
}

const slugAttempts = 3

// ErrSlugTaken is returned when concurrent creates keep claiming the same slug.
var ErrSlugTaken = errors.New("storage: slug already taken")

// insertWithSlug runs insert in a fresh transaction, picking the slug again
// when a concurrent create wins the unique index.
func (r *Repository) insertWithSlug(ctx context.Context, insert func(tx pgx.Tx) error) error {
	for attempt := 1; ; attempt++ {
		err := db.InTx(ctx, r.db, insert)
		if !db.IsUniqueViolation(err) {
			return err
		}
		if attempt == slugAttempts {
			return ErrSlugTaken
		}
	}
}

func notFound(err error) error {
	if db.IsNotFound(err) {
		return content.ErrNotFound
	}
	return err
}

// Practice areas

const practiceAreaColumns = `id, name, slug, description, featured_image_url, created_at, updated_at`

func scanPracticeArea(row pgx.Row) (content.PracticeArea, error) {
	var p content.PracticeArea
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.FeaturedImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repository) ListPracticeAreas(ctx context.Context) ([]content.PracticeArea, error) {
	rows, err := r.db.Query(ctx, `SELECT `+practiceAreaColumns+` FROM practice_areas ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := []content.PracticeArea{}
	index := map[int64]int{}
	for rows.Next() {
		p, err := scanPracticeArea(rows)
		if err != nil {
			return nil, err
		}
		p.GalleryImages = []content.PracticeAreaImage{}
		index[p.ID] = len(areas)
		areas = append(areas, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(areas) == 0 {
		return areas, nil
	}

	images, err := r.images(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		if i, ok := index[img.PracticeAreaID]; ok {
			areas[i].GalleryImages = append(areas[i].GalleryImages, img)
		}
	}
	return areas, nil
}

func (r *Repository) PracticeAreaBySlug(ctx context.Context, slug string) (content.PracticeArea, error) {
	p, err := scanPracticeArea(r.db.QueryRow(ctx, `SELECT `+practiceAreaColumns+` FROM practice_areas WHERE slug = $1`, slug))
	if err != nil {
		return content.PracticeArea{}, notFound(err)
	}
	images, err := r.images(ctx, &p.ID)
	if err != nil {
		return content.PracticeArea{}, err
	}
	p.GalleryImages = images
	return p, nil
}

// images returns gallery images for one practice area, or all of them when id is nil.
func (r *Repository) images(ctx context.Context, id *int64) ([]content.PracticeAreaImage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, practice_area_id, image_url, caption, sort_order, created_at
		FROM practice_area_images
		WHERE ($1::bigint IS NULL OR practice_area_id = $1)
		ORDER BY sort_order, created_at DESC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []content.PracticeAreaImage{}
	for rows.Next() {
		var img content.PracticeAreaImage
		if err := rows.Scan(&img.ID, &img.PracticeAreaID, &img.ImageURL, &img.Caption, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) CreatePracticeArea(ctx context.Context, p *content.PracticeArea) error {
	return r.insertWithSlug(ctx, func(tx pgx.Tx) error {
		slug, err := r.uniqueSlug(ctx, tx, "practice_areas", p.Name)
		if err != nil {
			return err
		}
		p.Slug = slug
		p.GalleryImages = []content.PracticeAreaImage{}
		return tx.QueryRow(ctx, `
			INSERT INTO practice_areas (name, slug, description, featured_image_url)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, p.Name, p.Slug, p.Description, p.FeaturedImageURL).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
}

func (r *Repository) AddPracticeAreaImage(ctx context.Context, img *content.PracticeAreaImage) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO practice_area_images (practice_area_id, image_url, caption, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, img.PracticeAreaID, img.ImageURL, img.Caption, img.SortOrder).Scan(&img.ID, &img.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return content.ErrNotFound
	}
	return err
}

// Attorneys

const attorneyColumns = `id, full_name, slug, job_title, bio, email, phone, photo_url, sort_order, is_active, specializations, created_at, updated_at`

func scanAttorney(row pgx.Row) (content.Attorney, error) {
	var a content.Attorney
	err := row.Scan(&a.ID, &a.FullName, &a.Slug, &a.JobTitle, &a.Bio, &a.Email, &a.Phone, &a.PhotoURL, &a.SortOrder, &a.IsActive, &a.Specializations, &a.CreatedAt, &a.UpdatedAt)
	if a.Specializations == nil {
		a.Specializations = []string{}
	}
	return a, err
}

func (r *Repository) ListAttorneys(ctx context.Context) ([]content.Attorney, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+attorneyColumns+`
		FROM attorneys
		WHERE is_active
		ORDER BY sort_order, full_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []content.Attorney{}
	for rows.Next() {
		a, err := scanAttorney(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) AttorneyBySlug(ctx context.Context, slug string) (content.Attorney, error) {
	a, err := scanAttorney(r.db.QueryRow(ctx, `SELECT `+attorneyColumns+` FROM attorneys WHERE slug = $1 AND is_active`, slug))
	if err != nil {
		return content.Attorney{}, notFound(err)
	}
	return a, nil
}

func (r *Repository) CreateAttorney(ctx context.Context, a *content.Attorney) error {
	return r.insertWithSlug(ctx, func(tx pgx.Tx) error {
		slug, err := r.uniqueSlug(ctx, tx, "attorneys", a.FullName)
		if err != nil {
			return err
		}
		a.Slug = slug
		return tx.QueryRow(ctx, `
			INSERT INTO attorneys (full_name, slug, job_title, bio, email, phone, photo_url, sort_order, is_active, specializations)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at
		`, a.FullName, a.Slug, a.JobTitle, a.Bio, a.Email, a.Phone, a.PhotoURL, a.SortOrder, a.IsActive, a.Specializations).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	})
}

// Blog posts

const blogColumns = `id, title, slug, author, excerpt, content, category, to_char(published_date, 'YYYY-MM-DD'), is_published, created_at, updated_at`

func scanBlogPost(row pgx.Row) (content.BlogPost, error) {
	var b content.BlogPost
	err := row.Scan(&b.ID, &b.Title, &b.Slug, &b.Author, &b.Excerpt, &b.Content, &b.Category, &b.PublishedDate, &b.IsPublished, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *Repository) ListBlogPosts(ctx context.Context, limit int) ([]content.BlogPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+blogColumns+`
		FROM blog_posts
		WHERE is_published
		ORDER BY published_date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []content.BlogPost{}
	for rows.Next() {
		b, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) BlogPostBySlug(ctx context.Context, slug string) (content.BlogPost, error) {
	b, err := scanBlogPost(r.db.QueryRow(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1 AND is_published`, slug))
	if err != nil {
		return content.BlogPost{}, notFound(err)
	}
	return b, nil
}

// ErrDuplicateTitle is returned when a blog post title is already used.
var ErrDuplicateTitle = errors.New("storage: blog post title already exists")

func (r *Repository) CreateBlogPost(ctx context.Context, b *content.BlogPost) error {
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		slug, err := r.uniqueSlug(ctx, tx, "blog_posts", b.Title)
		if err != nil {
			return err
		}
		b.Slug = slug
		return tx.QueryRow(ctx, `
			INSERT INTO blog_posts (title, slug, author, excerpt, content, category, is_published)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, to_char(published_date, 'YYYY-MM-DD'), created_at, updated_at
		`, b.Title, b.Slug, b.Author, b.Excerpt, b.Content, b.Category, b.IsPublished).Scan(&b.ID, &b.PublishedDate, &b.CreatedAt, &b.UpdatedAt)
	})
	if db.IsUniqueViolation(err) {
		return ErrDuplicateTitle
	}
	return err
}

// Contact messages

func (r *Repository) InsertContactMessage(ctx context.Context, q db.Querier, m *content.ContactMessage) error {
	return q.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, phone, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.Name, m.Email, m.Phone, m.Message).Scan(&m.ID, &m.CreatedAt)
}

func (r *Repository) ListContactMessages(ctx context.Context, unreadOnly bool, limit int) ([]content.ContactMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, phone, message, is_read, created_at
		FROM contact_messages
		WHERE (NOT $1 OR NOT is_read)
		ORDER BY created_at DESC
		LIMIT $2
	`, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []content.ContactMessage{}
	for rows.Next() {
		var m content.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) MarkContactMessageRead(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE contact_messages SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}
