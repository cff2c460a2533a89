package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"sync"
	"time"

	"posreports/backend/internal/cache"
	"posreports/backend/internal/domain"
	"posreports/backend/internal/render"
	"posreports/backend/internal/report"
	"posreports/backend/internal/store"
	"posreports/backend/internal/xid"
)

// ErrExportNotReady is returned when a presentation surface is requested for
// a session that has no generated result yet.
var ErrExportNotReady = errors.New("report has not been generated")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Options carry the report tuning knobs from config.
type Options struct {
	DefaultLocale  string
	DiscountPolicy string
	ExportTTL      time.Duration
	SessionTTL     time.Duration
}

// Service owns the report-session registry and runs the query -> enrich ->
// aggregate -> present pipeline. Sessions are in-memory and expire after
// SessionTTL of existence; exports are cached per generation.
type Service struct {
	repo    store.Repository
	exports cache.ExportCache

	locale         string
	discountPolicy string
	exportTTL      time.Duration
	sessionTTL     time.Duration

	mu       sync.Mutex
	sessions map[string]*domain.ReportSession
}

func New(repo store.Repository, exports cache.ExportCache, opts Options) *Service {
	if exports == nil {
		exports = cache.NoopExportCache{}
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en_US"
	}
	if opts.DiscountPolicy == "" {
		opts.DiscountPolicy = domain.DiscountPolicyFloor
	}
	if opts.ExportTTL <= 0 {
		opts.ExportTTL = time.Hour
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 4 * time.Hour
	}

	return &Service{
		repo:           repo,
		exports:        exports,
		locale:         opts.DefaultLocale,
		discountPolicy: opts.DiscountPolicy,
		exportTTL:      opts.ExportTTL,
		sessionTTL:     opts.SessionTTL,
		sessions:       make(map[string]*domain.ReportSession),
	}
}

// CreateSession opens a draft report session. Missing date bounds default to
// today, matching the period a cashier most often wants.
func (s *Service) CreateSession(ctx context.Context, shape string, req domain.ReportRequest) (domain.ReportSession, error) {
	switch shape {
	case domain.ShapeSales, domain.ShapeCommission:
	default:
		return domain.ReportSession{}, fmt.Errorf("%w: unknown report shape %q", store.ErrInvalidRequest, shape)
	}
	if err := normalizeRequest(&req); err != nil {
		return domain.ReportSession{}, err
	}

	session := &domain.ReportSession{
		ID:        xid.New("rpt"),
		Name:      sessionName(shape, req),
		Shape:     shape,
		State:     domain.SessionStateDraft,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.pruneExpiredLocked()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	if actor, ok := ActorFromContext(ctx); ok {
		log.Printf("[service] report session created id=%s shape=%s by=%s", session.ID, shape, actor.Username)
	}
	return *session, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (domain.ReportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.sessionLocked(id)
	if err != nil {
		return domain.ReportSession{}, err
	}
	return *session, nil
}

// UpdateFilters replaces the session's filter set and returns it to draft.
// A previously generated result stays attached until the next generation.
func (s *Service) UpdateFilters(ctx context.Context, id string, req domain.ReportRequest) (domain.ReportSession, error) {
	if err := normalizeRequest(&req); err != nil {
		return domain.ReportSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.sessionLocked(id)
	if err != nil {
		return domain.ReportSession{}, err
	}

	session.Request = req
	session.Name = sessionName(session.Shape, req)
	session.State = domain.SessionStateDraft
	return *session, nil
}

// ClearFilters resets the session to an all-defaults draft: today's window,
// no restrictions, no result.
func (s *Service) ClearFilters(ctx context.Context, id string) (domain.ReportSession, error) {
	today := time.Now().Format(domain.DateLayout)
	req := domain.ReportRequest{StartDate: today, EndDate: today}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.sessionLocked(id)
	if err != nil {
		return domain.ReportSession{}, err
	}

	session.Request = req
	session.Name = sessionName(session.Shape, req)
	session.Result = nil
	session.State = domain.SessionStateDraft
	return *session, nil
}

// Generate runs the session's pipeline against the store and attaches a fresh
// result. On a store failure the prior result and state are left untouched.
// The lock is released while the query runs; if the session's filters change
// in the meantime the stale result is discarded instead of attached.
func (s *Service) Generate(ctx context.Context, id string) (domain.ReportSession, error) {
	s.mu.Lock()
	session, err := s.sessionLocked(id)
	if err != nil {
		s.mu.Unlock()
		return domain.ReportSession{}, err
	}
	shape := session.Shape
	req := session.Request
	s.mu.Unlock()

	result := &domain.ReportResult{
		GeneratedAt:  time.Now().UTC(),
		GenerationID: xid.New("gen"),
	}

	switch shape {
	case domain.ShapeCommission:
		rollups, err := s.repo.QueryEmployeeRollups(ctx, req)
		if err != nil {
			return domain.ReportSession{}, err
		}
		result.Rollups, result.Totals = report.ApplyCommission(rollups)
	default:
		lines, err := s.repo.QueryOrderLines(ctx, req)
		if err != nil {
			return domain.ReportSession{}, err
		}
		result.Lines = report.EnrichAll(lines, s.locale, s.discountPolicy)
		result.Totals = report.Summarize(result.Lines)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, err = s.sessionLocked(id)
	if err != nil {
		return domain.ReportSession{}, err
	}
	if !reflect.DeepEqual(session.Request, req) {
		return domain.ReportSession{}, fmt.Errorf("%w: filters changed during generation, generate again", store.ErrInvalidRequest)
	}
	session.Result = result
	session.State = domain.SessionStateGenerated
	return *session, nil
}

// HTML renders the generated result as an embeddable fragment.
func (s *Service) HTML(ctx context.Context, id string) (string, error) {
	session, err := s.generatedSession(id)
	if err != nil {
		return "", err
	}
	return render.ReportHTML(&session)
}

// ExportCSV serializes the generated result, consulting the export cache
// first. Cache keys embed the generation ID so a re-generated session never
// serves stale bytes; superseded entries simply age out.
func (s *Service) ExportCSV(ctx context.Context, id string) (string, []byte, error) {
	session, err := s.generatedSession(id)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s_report_%s_to_%s.csv",
		session.Shape, session.Request.StartDate, session.Request.EndDate)

	key := exportKey(id, session.Result.GenerationID, "")
	if payload, ok := s.cachedExport(ctx, key); ok {
		return filename, payload, nil
	}

	payload, err := render.ReportCSV(&session)
	if err != nil {
		return "", nil, err
	}
	s.storeExport(ctx, key, payload)
	return filename, payload, nil
}

// EmployeeDetail builds the drill-down for one employee within a generated
// commission session's filter scope.
func (s *Service) EmployeeDetail(ctx context.Context, id string, employeeID int64) (domain.EmployeeDetail, error) {
	session, err := s.generatedSession(id)
	if err != nil {
		return domain.EmployeeDetail{}, err
	}
	if session.Shape != domain.ShapeCommission {
		return domain.EmployeeDetail{}, fmt.Errorf("%w: employee details require a commission report", store.ErrInvalidRequest)
	}

	emp, err := s.repo.GetEmployee(ctx, employeeID)
	if err != nil {
		return domain.EmployeeDetail{}, err
	}

	lines, err := s.repo.QueryEmployeeLines(ctx, session.Request, employeeID)
	if err != nil {
		return domain.EmployeeDetail{}, err
	}
	lines = report.EnrichAll(lines, s.locale, s.discountPolicy)

	return domain.EmployeeDetail{
		Employee: *emp,
		Lines:    lines,
		Totals:   report.Summarize(lines),
	}, nil
}

// EmployeeDetailHTML renders the drill-down as an HTML fragment.
func (s *Service) EmployeeDetailHTML(ctx context.Context, id string, employeeID int64) (string, error) {
	detail, err := s.EmployeeDetail(ctx, id, employeeID)
	if err != nil {
		return "", err
	}
	return render.EmployeeDetailHTML(&detail)
}

// ExportEmployeeDetailCSV serializes one employee's drill-down, cached per
// generation like the session-level export.
func (s *Service) ExportEmployeeDetailCSV(ctx context.Context, id string, employeeID int64) (string, []byte, error) {
	session, err := s.generatedSession(id)
	if err != nil {
		return "", nil, err
	}
	if session.Shape != domain.ShapeCommission {
		return "", nil, fmt.Errorf("%w: employee details require a commission report", store.ErrInvalidRequest)
	}

	detail, err := s.EmployeeDetail(ctx, id, employeeID)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("employee_details_%s_%s_to_%s.csv",
		filenameSafe(detail.Employee.Name), session.Request.StartDate, session.Request.EndDate)

	key := exportKey(id, session.Result.GenerationID, fmt.Sprintf("emp:%d", employeeID))
	if payload, ok := s.cachedExport(ctx, key); ok {
		return filename, payload, nil
	}

	payload, err := render.EmployeeDetailCSV(&detail)
	if err != nil {
		return "", nil, err
	}
	s.storeExport(ctx, key, payload)
	return filename, payload, nil
}

func (s *Service) generatedSession(id string) (domain.ReportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.sessionLocked(id)
	if err != nil {
		return domain.ReportSession{}, err
	}
	if session.State != domain.SessionStateGenerated || session.Result == nil {
		return domain.ReportSession{}, ErrExportNotReady
	}
	return *session, nil
}

func (s *Service) sessionLocked(id string) (*domain.ReportSession, error) {
	s.pruneExpiredLocked()
	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return session, nil
}

func (s *Service) pruneExpiredLocked() {
	cutoff := time.Now().Add(-s.sessionTTL)
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// Cache failures degrade to a live render, never to a failed export.
func (s *Service) cachedExport(ctx context.Context, key string) ([]byte, bool) {
	payload, ok, err := s.exports.Get(ctx, key)
	if err != nil {
		log.Printf("[service] WARN: export cache get failed key=%s: %v", key, err)
		return nil, false
	}
	return payload, ok
}

func (s *Service) storeExport(ctx context.Context, key string, payload []byte) {
	if err := s.exports.Set(ctx, key, payload, s.exportTTL); err != nil {
		log.Printf("[service] WARN: export cache set failed key=%s: %v", key, err)
	}
}

func exportKey(sessionID, generationID, suffix string) string {
	key := "export:" + sessionID + ":" + generationID
	if suffix != "" {
		key += ":" + suffix
	}
	return key
}

func normalizeRequest(req *domain.ReportRequest) error {
	today := time.Now().Format(domain.DateLayout)
	if req.StartDate == "" {
		req.StartDate = today
	}
	if req.EndDate == "" {
		req.EndDate = today
	}

	start, end, err := req.Dates()
	if err != nil {
		return fmt.Errorf("%w: invalid date: %v", store.ErrInvalidRequest, err)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date before start date", store.ErrInvalidRequest)
	}
	if req.OrderState != "" && !domain.ValidOrderState(req.OrderState) {
		return fmt.Errorf("%w: unknown order state %q", store.ErrInvalidRequest, req.OrderState)
	}
	return nil
}

func sessionName(shape string, req domain.ReportRequest) string {
	title := "Sales Report"
	if shape == domain.ShapeCommission {
		title = "Commission Report"
	}
	return fmt.Sprintf("%s %s to %s", title, req.StartDate, req.EndDate)
}

func filenameSafe(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, name)
}
