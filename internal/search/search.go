package search

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/querydsl/internal/metrics"
	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
)

// Executor is the storage capability a search needs. *sql.DB, *sql.Tx and
// *sql.Conn all satisfy it.
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Service runs member searches against one executor. It keeps no state
// between calls and is safe for concurrent use when the executor is.
type Service struct {
	exec    Executor
	dialect query.Dialect
}

// NewService returns a Service issuing SQL in dialect d through exec.
func NewService(exec Executor, d query.Dialect) *Service {
	return &Service{exec: exec, dialect: d}
}

// Search returns every member matching cond, in member id order.
func (s *Service) Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error) {
	q, err := ContentQuery(cond, nil)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, q, "")
}

// SearchSorted is Search with caller-chosen ordering.
func (s *Service) SearchSorted(ctx context.Context, cond model.MemberSearchCondition, sort []model.SortOrder) ([]*model.MemberTeam, error) {
	q, err := ContentQuery(cond, sort)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, q, "")
}

// SearchPage returns one page of the members matching cond. Both strategies
// return the same content; they differ only in when the count query runs.
func (s *Service) SearchPage(ctx context.Context, cond model.MemberSearchCondition, page model.PageRequest, strategy model.CountStrategy) (*model.Page[*model.MemberTeam], error) {
	switch strategy {
	case model.CountSimple, "":
		return s.SearchPageSimple(ctx, cond, page)
	case model.CountOptimized:
		return s.SearchPageOptimized(ctx, cond, page)
	}
	return nil, &model.ValidationError{Errors: []model.FieldError{{
		Field:   "strategy",
		Message: fmt.Sprintf("unknown count strategy %q", strategy),
	}}}
}

// SearchPageSimple always runs the content query and then the count query.
func (s *Service) SearchPageSimple(ctx context.Context, cond model.MemberSearchCondition, page model.PageRequest) (*model.Page[*model.MemberTeam], error) {
	content, err := s.fetchPage(ctx, cond, page, model.CountSimple)
	if err != nil {
		return nil, err
	}
	total, err := s.count(ctx, cond, model.CountSimple)
	if err != nil {
		return nil, err
	}
	return newPage(content, total, page), nil
}

// SearchPageOptimized runs the count query only when the content cannot
// prove the total: a first page shorter than the page size holds every
// matching row. Later pages always count.
func (s *Service) SearchPageOptimized(ctx context.Context, cond model.MemberSearchCondition, page model.PageRequest) (*model.Page[*model.MemberTeam], error) {
	content, err := s.fetchPage(ctx, cond, page, model.CountOptimized)
	if err != nil {
		return nil, err
	}
	if page.Index == 0 && len(content) < page.Size {
		metrics.CountQueriesSkipped.Inc()
		return newPage(content, int64(len(content)), page), nil
	}
	total, err := s.count(ctx, cond, model.CountOptimized)
	if err != nil {
		return nil, err
	}
	return newPage(content, total, page), nil
}

// Count returns the number of members matching cond.
func (s *Service) Count(ctx context.Context, cond model.MemberSearchCondition) (int64, error) {
	return s.count(ctx, cond, "")
}

func (s *Service) fetchPage(ctx context.Context, cond model.MemberSearchCondition, page model.PageRequest, strategy model.CountStrategy) ([]*model.MemberTeam, error) {
	q, err := PageQuery(cond, page)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, q, strategy)
}

func (s *Service) fetch(ctx context.Context, q *query.SelectQuery, strategy model.CountStrategy) ([]*model.MemberTeam, error) {
	sqlText, args, err := q.Build(s.dialect)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	metrics.SearchQueries.WithLabelValues("content", strategyLabel(strategy)).Inc()

	rows, err := s.exec.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	defer rows.Close()

	result := make([]*model.MemberTeam, 0)
	for rows.Next() {
		mt, err := ScanMemberTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("search members: scan: %w", err)
		}
		result = append(result, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search members: rows: %w", err)
	}
	return result, nil
}

func (s *Service) count(ctx context.Context, cond model.MemberSearchCondition, strategy model.CountStrategy) (int64, error) {
	sqlText, args, err := CountQuery(cond).Build(s.dialect)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	metrics.SearchQueries.WithLabelValues("count", strategyLabel(strategy)).Inc()

	var total int64
	if err := s.exec.QueryRowContext(ctx, sqlText, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

func strategyLabel(s model.CountStrategy) string {
	if s == "" {
		return "none"
	}
	return string(s)
}

func newPage(content []*model.MemberTeam, total int64, page model.PageRequest) *model.Page[*model.MemberTeam] {
	return &model.Page[*model.MemberTeam]{
		Content:       content,
		TotalElements: total,
		PageIndex:     page.Index,
		PageSize:      page.Size,
	}
}

// ScanMemberTeam reads one Projection row.
func ScanMemberTeam(row interface{ Scan(dest ...any) error }) (*model.MemberTeam, error) {
	var (
		mt       model.MemberTeam
		username sql.NullString
		teamID   sql.NullInt64
		teamName sql.NullString
	)
	if err := row.Scan(&mt.MemberID, &username, &mt.Age, &teamID, &teamName); err != nil {
		return nil, err
	}
	mt.Username = username.String
	if teamID.Valid {
		id := teamID.Int64
		mt.TeamID = &id
	}
	if teamName.Valid {
		name := teamName.String
		mt.TeamName = &name
	}
	return &mt, nil
}
