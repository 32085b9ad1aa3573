package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/unidocs/unidocs-api/internal/models"
)

// documentColumns is the base projection shared by every document read.
const documentColumns = `d.id, d.uploader_id, d.status, d.module, d.title, d.description, d.university,
        d.category, d.year, d.author, d.file_name, d.file_path, d.file_size, d.mime_type, d.created_at, d.updated_at`

// DocumentRepository handles document persistence and read-side projections.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetForUpdate reads a document inside the caller's transaction and locks its
// row until commit. Every guarded status transition goes through this read so
// concurrent writers serialize on the document.
func (r *DocumentRepository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents d WHERE d.id = $1 FOR UPDATE`, documentColumns)
	var doc models.Document
	if err := sqlx.GetContext(ctx, q, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateStatus sets the document status within the caller's transaction.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status models.DocumentStatus) error {
	const query = `UPDATE documents SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := q.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// ListOptions scopes the projection layer to the caller's role.
type ListOptions struct {
	Filter models.DocumentFilter
	// Privileged viewers see every status, report counts and report details
	// in search. Unprivileged viewers see approved documents only, minus
	// anything they reported themselves.
	Privileged bool
	ViewerID   int64
}

// List returns document projections joined with moderation metadata.
func (r *DocumentRepository) List(ctx context.Context, opts ListOptions) ([]models.DocumentDetail, int, error) {
	base := `FROM documents d
LEFT JOIN approval_records ar ON ar.document_id = d.id
LEFT JOIN denial_records dr ON dr.document_id = d.id
LEFT JOIN rating_aggregates ra ON ra.document_id = d.id`

	conditions, args := r.visibilityConditions(opts)

	if opts.Filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", len(args)+1))
		args = append(args, *opts.Filter.Status)
	}
	if opts.Filter.Search != "" {
		conditions = append(conditions, r.searchCondition(len(args)+1, opts.Privileged))
		args = append(args, "%"+opts.Filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	reportCount := "0 AS report_count"
	if opts.Privileged {
		reportCount = "(SELECT COUNT(*) FROM reports rp WHERE rp.document_id = d.id) AS report_count"
	}

	page := opts.Filter.Page
	if page < 1 {
		page = 1
	}
	size := opts.Filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, ar.approved_at, dr.denied_at, dr.comments AS denial_comments,
        ra.average AS average_rating, %s
        %s ORDER BY d.created_at DESC LIMIT %d OFFSET %d`, documentColumns, reportCount, base+clause, size, offset)

	var docs []models.DocumentDetail
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

// FindDetailByID returns a single projection, subject to the same visibility
// rules as List. Unprivileged callers get sql.ErrNoRows for anything they are
// not allowed to see.
func (r *DocumentRepository) FindDetailByID(ctx context.Context, id int64, opts ListOptions) (*models.DocumentDetail, error) {
	conditions, args := r.visibilityConditions(opts)
	conditions = append(conditions, fmt.Sprintf("d.id = $%d", len(args)+1))
	args = append(args, id)

	reportCount := "0 AS report_count"
	if opts.Privileged {
		reportCount = "(SELECT COUNT(*) FROM reports rp WHERE rp.document_id = d.id) AS report_count"
	}

	query := fmt.Sprintf(`SELECT %s, ar.approved_at, dr.denied_at, dr.comments AS denial_comments,
        ra.average AS average_rating, %s
        FROM documents d
        LEFT JOIN approval_records ar ON ar.document_id = d.id
        LEFT JOIN denial_records dr ON dr.document_id = d.id
        LEFT JOIN rating_aggregates ra ON ra.document_id = d.id
        WHERE %s`, documentColumns, reportCount, strings.Join(conditions, " AND "))

	var detail models.DocumentDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *DocumentRepository) visibilityConditions(opts ListOptions) ([]string, []interface{}) {
	if opts.Privileged {
		return nil, nil
	}
	conditions := []string{fmt.Sprintf("d.status = '%s'", models.DocumentStatusApproved)}
	args := []interface{}{}
	if opts.ViewerID != 0 {
		conditions = append(conditions, fmt.Sprintf("NOT EXISTS (SELECT 1 FROM reports rp WHERE rp.document_id = d.id AND rp.reporter_id = $%d)", len(args)+1))
		args = append(args, opts.ViewerID)
	}
	return conditions, args
}

func (r *DocumentRepository) searchCondition(argPos int, privileged bool) string {
	fields := []string{
		fmt.Sprintf("d.module ILIKE $%d", argPos),
		fmt.Sprintf("d.description ILIKE $%d", argPos),
		fmt.Sprintf("d.university ILIKE $%d", argPos),
		fmt.Sprintf("d.author ILIKE $%d", argPos),
		fmt.Sprintf("d.file_name ILIKE $%d", argPos),
	}
	if privileged {
		fields = append(fields, fmt.Sprintf("EXISTS (SELECT 1 FROM reports rp WHERE rp.document_id = d.id AND rp.details ILIKE $%d)", argPos))
	}
	return "(" + strings.Join(fields, " OR ") + ")"
}
