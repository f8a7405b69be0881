package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/Apurer/go-gin-order-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
// Passwords and tokens are never logged.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Signup(ctx context.Context, input userports.SignupInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Signup")
	defer span.End()
	user, err := s.inner.Signup(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "signup failed")
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	s.metrics.recordSignup(ctx)
	s.logInfo(ctx, "user registered", slog.Int64("user.id", user.ID))
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*userports.TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()
	pair, err := s.inner.Login(ctx, email, password)
	if err != nil {
		s.metrics.recordAuthFailure(ctx, "login")
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	s.metrics.recordLogin(ctx)
	return pair, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*userports.TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Refresh")
	defer span.End()
	pair, err := s.inner.Refresh(ctx, refreshToken)
	if err != nil {
		s.metrics.recordAuthFailure(ctx, "refresh")
		return nil, s.handleError(ctx, span, err, "token refresh failed")
	}
	return pair, nil
}

func (s *Service) Authenticate(ctx context.Context, accessToken string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	user, err := s.inner.Authenticate(ctx, accessToken)
	if err != nil {
		s.metrics.recordAuthFailure(ctx, "authenticate")
		return nil, s.handleError(ctx, span, err, "authentication failed")
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID), attribute.Bool("user.admin", user.Admin))
	return user, nil
}

func (s *Service) EnsureAdmin(ctx context.Context, input userports.SignupInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.EnsureAdmin")
	defer span.End()
	user, err := s.inner.EnsureAdmin(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "admin bootstrap failed")
	}
	s.logInfo(ctx, "admin account ready", slog.Int64("user.id", user.ID))
	return user, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

type serviceMetrics struct {
	signups      metric.Int64Counter
	logins       metric.Int64Counter
	authFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	signups, _ := m.Int64Counter("users.service.signups", metric.WithDescription("Number of users registered"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("users.service.auth_failures", metric.WithDescription("Rejected logins, refreshes and token checks"))
	return serviceMetrics{signups: signups, logins: logins, authFailures: failures}
}

func (m serviceMetrics) recordSignup(ctx context.Context) {
	if m.signups != nil {
		m.signups.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordAuthFailure(ctx context.Context, stage string) {
	if m.authFailures != nil {
		m.authFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("auth.stage", stage)))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
