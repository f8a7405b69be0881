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

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/observability/service"

type Option func(*instrumentation)

func WithLogger(logger *slog.Logger) Option {
	return func(i *instrumentation) {
		i.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(i *instrumentation) {
		i.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(i *instrumentation) {
		i.metrics = newServiceMetrics(m)
	}
}

type instrumentation struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

func newInstrumentation(opts []Option) instrumentation {
	i := instrumentation{
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&i)
		}
	}
	if i.tracer == nil {
		i.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return i
}

// Service decorates the order lifecycle service with tracing, logging, and metrics.
type Service struct {
	instrumentation
	inner ports.Service
}

// New wraps the order lifecycle service.
func New(inner ports.Service, opts ...Option) ports.Service {
	return &Service{instrumentation: newInstrumentation(opts), inner: inner}
}

func (s *Service) Create(ctx context.Context, ownerID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int64("order.owner_id", ownerID)))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int64("order.owner_id", ownerID))
	result, err := s.inner.Create(ctx, ownerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int64("order.owner_id", ownerID))
	}
	span.SetAttributes(attribute.Int64("order.id", result.ID))
	s.metrics.recordTransition(ctx, "create", result.Status)
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) Cancel(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	return s.transition(ctx, "Cancel", "cancel", actor, orderID, s.inner.Cancel)
}

func (s *Service) Finalize(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	return s.transition(ctx, "Finalize", "finalize", actor, orderID, s.inner.Finalize)
}

func (s *Service) transition(ctx context.Context, name, verb string, actor domain.Actor, orderID int64, call func(context.Context, domain.Actor, int64) (*domain.Order, error)) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService."+name, trace.WithAttributes(actorAttrs(actor, orderID)...))
	defer span.End()

	s.logInfo(ctx, verb+" order requested", slog.Int64("order.id", orderID), slog.Int64("actor.id", actor.UserID))
	result, err := call(ctx, actor, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to "+verb+" order", slog.Int64("order.id", orderID))
	}
	s.metrics.recordTransition(ctx, verb, result.Status)
	s.logInfo(ctx, "order status changed", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) View(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.View", trace.WithAttributes(actorAttrs(actor, orderID)...))
	defer span.End()

	result, err := s.inner.View(ctx, actor, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", orderID))
	}
	span.SetAttributes(attribute.Int("order.item_count", result.ItemCount()))
	return result, nil
}

func (s *Service) ListAll(ctx context.Context, actor domain.Actor, statuses []domain.Status) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAll", trace.WithAttributes(attribute.Int64("actor.id", actor.UserID)))
	defer span.End()

	result, err := s.inner.ListAll(ctx, actor, statuses)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.Int64("actor.id", actor.UserID))
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) ListMine(ctx context.Context, actor domain.Actor, statuses []domain.Status) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListMine", trace.WithAttributes(attribute.Int64("actor.id", actor.UserID)))
	defer span.End()

	result, err := s.inner.ListMine(ctx, actor, statuses)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list user orders", slog.Int64("actor.id", actor.UserID))
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

// ItemService decorates the item management service.
type ItemService struct {
	instrumentation
	inner ports.ItemService
}

// NewItemService wraps the item management service.
func NewItemService(inner ports.ItemService, opts ...Option) ports.ItemService {
	return &ItemService{instrumentation: newInstrumentation(opts), inner: inner}
}

func (s *ItemService) AddItem(ctx context.Context, actor domain.Actor, orderID int64, input ports.ItemInput) (*ports.AddItemResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderItemService.AddItem", trace.WithAttributes(actorAttrs(actor, orderID)...))
	defer span.End()

	s.logInfo(ctx, "adding item", slog.Int64("order.id", orderID), slog.String("item.flavor", input.Flavor), slog.Int("item.quantity", int(input.Quantity)))
	result, err := s.inner.AddItem(ctx, actor, orderID, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add item", slog.Int64("order.id", orderID))
	}
	s.metrics.recordItem(ctx, "add")
	s.logInfo(ctx, "item added", slog.Int64("order.id", orderID), slog.Int64("item.id", result.ItemID), slog.String("order.total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *ItemService) RemoveItem(ctx context.Context, actor domain.Actor, itemID int64) (*ports.RemoveItemResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderItemService.RemoveItem",
		trace.WithAttributes(attribute.Int64("item.id", itemID), attribute.Int64("actor.id", actor.UserID)))
	defer span.End()

	s.logInfo(ctx, "removing item", slog.Int64("item.id", itemID))
	result, err := s.inner.RemoveItem(ctx, actor, itemID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove item", slog.Int64("item.id", itemID))
	}
	s.metrics.recordItem(ctx, "remove")
	s.logInfo(ctx, "item removed", slog.Int64("item.id", itemID), slog.Int("order.item_count", result.ItemCount))
	return result, nil
}

func actorAttrs(actor domain.Actor, orderID int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("order.id", orderID),
		attribute.Int64("actor.id", actor.UserID),
		attribute.Bool("actor.admin", actor.Admin),
	}
}

func (i *instrumentation) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if i.logger == nil {
		return
	}
	i.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (i *instrumentation) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if i.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	i.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (i *instrumentation) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	i.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	transitions metric.Int64Counter
	itemChanges metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Order lifecycle changes by resulting status"))
	itemChanges, _ := m.Int64Counter("orders.service.item_changes", metric.WithDescription("Items added to or removed from orders"))
	return serviceMetrics{transitions: transitions, itemChanges: itemChanges}
}

func (m serviceMetrics) recordTransition(ctx context.Context, op string, status domain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.operation", op),
			attribute.String("order.status", string(status)),
		))
	}
}

func (m serviceMetrics) recordItem(ctx context.Context, op string) {
	if m.itemChanges != nil {
		m.itemChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("item.operation", op)))
	}
}

var (
	_ ports.Service     = (*Service)(nil)
	_ ports.ItemService = (*ItemService)(nil)
)
