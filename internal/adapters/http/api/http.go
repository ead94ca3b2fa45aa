// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/logger"
)

// MemberDependencies covers member and ledger operations.
type MemberDependencies interface {
	CreateMember(ctx context.Context, in service.CreateMemberInput) (model.Member, error)
	GetMember(ctx context.Context, id string) (model.Member, error)
	ListLedgerEntries(ctx context.Context, actorID, memberID string, limit int) ([]model.LedgerEntry, error)
}

// SkillDependencies covers skill operations.
type SkillDependencies interface {
	CreateSkill(ctx context.Context, in service.CreateSkillInput) (model.Skill, error)
	GetSkill(ctx context.Context, id string) (model.Skill, error)
}

// ExchangeDependencies covers the exchange lifecycle.
type ExchangeDependencies interface {
	CreateExchange(ctx context.Context, in service.CreateExchangeInput) (model.Exchange, error)
	GetExchange(ctx context.Context, id, actorID string) (model.Exchange, error)
	ListExchanges(ctx context.Context, actorID string, limit int) ([]model.Exchange, error)
	RequestTransition(ctx context.Context, exchangeID, actorID string, target model.Status, responseMessage string) (model.Exchange, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) (service.Stats, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	MemberDependencies
	SkillDependencies
	ExchangeDependencies
	StatsProvider
}

// Option configures the Server.
type Option func(*Server)

// WithMaxListLimit sets the largest ?limit= accepted by list endpoints.
func WithMaxListLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithMemberSeeding exposes POST /members, which creates funded members
// without an actor. Meant for development and load tests.
func WithMemberSeeding(enabled bool) Option {
	return func(s *Server) {
		s.seedMembers = enabled
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxLimit    int
	seedMembers bool
	logger      logger.Logger

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	membersHandler   *MembersHandler
	skillsHandler    *SkillsHandler
	exchangesHandler *ExchangesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{maxLimit: 100}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps, s.logger)
	s.membersHandler = NewMembersHandler(deps, s.maxLimit, s.logger)
	s.skillsHandler = NewSkillsHandler(deps, s.logger)
	s.exchangesHandler = NewExchangesHandler(deps, s.maxLimit, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	createMember := s.membersHandler.HandleCreate
	if !s.seedMembers {
		createMember = func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, NewKind("create member", ErrSeedingDisabled))
		}
	}
	mux.HandleFunc("POST /members", MetricsMiddleware(createMember, "members"))
	mux.HandleFunc("GET /members/{id}", MetricsMiddleware(s.membersHandler.HandleGet, "members"))
	mux.HandleFunc("GET /members/{id}/ledger", MetricsMiddleware(s.membersHandler.HandleLedger, "ledger"))

	mux.HandleFunc("POST /skills", MetricsMiddleware(s.skillsHandler.HandleCreate, "skills"))
	mux.HandleFunc("GET /skills/{id}", MetricsMiddleware(s.skillsHandler.HandleGet, "skills"))

	mux.HandleFunc("POST /exchanges", MetricsMiddleware(s.exchangesHandler.HandleCreate, "exchanges"))
	mux.HandleFunc("GET /exchanges", MetricsMiddleware(s.exchangesHandler.HandleList, "exchanges"))
	mux.HandleFunc("GET /exchanges/{id}", MetricsMiddleware(s.exchangesHandler.HandleGet, "exchange"))
	mux.HandleFunc("PUT /exchanges/{id}", MetricsMiddleware(s.exchangesHandler.HandleTransition, "transition"))
}

// fail writes err and logs it when it is the server's fault.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, err error) {
	if status, _ := statusFor(err); status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Error(err))
	}
	writeError(w, err)
}
