package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unidocs/unidocs-api/internal/models"
	"github.com/unidocs/unidocs-api/internal/repository"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type documentProjectionStore interface {
	List(ctx context.Context, opts repository.ListOptions) ([]models.DocumentDetail, int, error)
	FindDetailByID(ctx context.Context, id int64, opts repository.ListOptions) (*models.DocumentDetail, error)
}

type reportReader interface {
	ListByDocument(ctx context.Context, documentID int64) ([]models.ReportDetail, error)
}

type projectionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DocumentView is a detail projection, with report rows attached for
// privileged viewers.
type DocumentView struct {
	models.DocumentDetail
	Reports []models.ReportDetail `json:"reports,omitempty"`
}

type cachedListing struct {
	Documents []models.DocumentDetail `json:"documents"`
	Total     int                     `json:"total"`
}

// DocumentService is the read-only projection layer. It never mutates state;
// its only failure modes are missing rows and store connectivity.
type DocumentService struct {
	docs     documentProjectionStore
	reports  reportReader
	cache    projectionCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDocumentService constructs DocumentService. A zero cacheTTL disables
// listing caching.
func NewDocumentService(docs documentProjectionStore, reports reportReader, cache projectionCache, cacheTTL time.Duration, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{docs: docs, reports: reports, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// List returns documents visible to the caller. Moderators and admins see
// every status; everyone else sees approved documents excluding their own
// reports.
func (s *DocumentService) List(ctx context.Context, claims *models.JWTClaims, filter models.DocumentFilter) ([]models.DocumentDetail, *models.Pagination, error) {
	opts := s.listOptions(claims, filter)

	key := s.listingKey(opts)
	if key != "" {
		var cached cachedListing
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Documents, s.pagination(filter, cached.Total), nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("document listing cache read failed", zap.Error(err))
		}
	}

	docs, total, err := s.docs.List(ctx, opts)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, cachedListing{Documents: docs, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("document listing cache write failed", zap.Error(err))
		}
	}
	return docs, s.pagination(filter, total), nil
}

// Get returns a single document view, with report rows attached for
// privileged callers.
func (s *DocumentService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*DocumentView, error) {
	opts := s.listOptions(claims, models.DocumentFilter{})
	detail, err := s.docs.FindDetailByID(ctx, id, opts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	view := &DocumentView{DocumentDetail: *detail}
	if opts.Privileged {
		reports, err := s.reports.ListByDocument(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reports")
		}
		view.Reports = reports
	}
	return view, nil
}

// Search is List with a mandatory search term.
func (s *DocumentService) Search(ctx context.Context, claims *models.JWTClaims, term string, page, pageSize int) ([]models.DocumentDetail, *models.Pagination, error) {
	if term == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "search term is required")
	}
	return s.List(ctx, claims, models.DocumentFilter{Search: term, Page: page, PageSize: pageSize})
}

func (s *DocumentService) listOptions(claims *models.JWTClaims, filter models.DocumentFilter) repository.ListOptions {
	opts := repository.ListOptions{Filter: filter}
	if claims != nil {
		opts.Privileged = claims.Role.Privileged()
		opts.ViewerID = claims.UserID
	}
	return opts
}

// listingKey derives a cache key for unprivileged listings only; moderator
// views must always be fresh.
func (s *DocumentService) listingKey(opts repository.ListOptions) string {
	if s.cache == nil || s.cacheTTL <= 0 || opts.Privileged {
		return ""
	}
	status := "all"
	if opts.Filter.Status != nil {
		status = string(*opts.Filter.Status)
	}
	return fmt.Sprintf("documents:list:%s:%s:%d:%d:%d", status, opts.Filter.Search, opts.Filter.Page, opts.Filter.PageSize, opts.ViewerID)
}

func (s *DocumentService) pagination(filter models.DocumentFilter, total int) *models.Pagination {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
