package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront-service/analytics"
	"storefront-service/cart"
	"storefront-service/catalog"
	"storefront-service/checkout"
	apperrors "storefront-service/common/errors"
	"storefront-service/common/locale"
	"storefront-service/database"
	"storefront-service/eventlog"
	"storefront-service/models"
	aws_pkg "storefront-service/pkg/aws"
	"storefront-service/storefront"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventOrderCompleted is the SNS event type published per purchase.
const EventOrderCompleted = "order.completed"

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Kind       apperrors.Kind
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// IsWarning reports whether the error is a rejected move that left the
// session untouched.
func (e *ServiceError) IsWarning() bool {
	return e.Kind == apperrors.KindIllegalTransition
}

// OrderMetrics is the slice of the metrics client the service reports to.
type OrderMetrics interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordValue(ctx context.Context, metricName string, value float64, dimensions map[string]string) error
}

// Action runs one shopper action against a rebuilt session.
type Action func(ctx context.Context, sf *storefront.Storefront) error

// SessionService owns shopper sessions. Calls for the same session run one
// at a time; each loads the snapshot, runs the action and saves the result.
type SessionService interface {
	Start(ctx context.Context) (*models.SessionView, *ServiceError)
	Get(ctx context.Context, sessionID string) (*models.SessionView, *ServiceError)
	Events(ctx context.Context, sessionID string) ([]models.AnalyticsEvent, *ServiceError)
	Do(ctx context.Context, sessionID string, action Action) (*models.SessionView, *ServiceError)
	ConfirmPurchase(ctx context.Context, sessionID, idempotencyKey string) (*models.CheckoutResult, *ServiceError)
	End(ctx context.Context, sessionID string) *ServiceError
	Formatter() *locale.Formatter
}

type sessionServiceImpl struct {
	repo        database.SessionRepository
	catalog     catalog.Catalog
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	metrics     OrderMetrics
	logger      *zap.Logger

	channel        string
	serviceName    string
	format         *locale.Formatter
	idempotencyTTL time.Duration
	extraSinks     []eventlog.Sink
	newOrderID     checkout.IDGenerator
	newSessionID   func() string
	now            func() time.Time

	locks *keyedMutex
}

type Option func(*sessionServiceImpl)

func WithChannel(channel string) Option {
	return func(s *sessionServiceImpl) { s.channel = channel }
}

func WithServiceName(name string) Option {
	return func(s *sessionServiceImpl) { s.serviceName = name }
}

func WithFormatter(f *locale.Formatter) Option {
	return func(s *sessionServiceImpl) { s.format = f }
}

func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(s *sessionServiceImpl) { s.idempotencyTTL = ttl }
}

// WithSinks adds sinks that receive every payload after the session log.
func WithSinks(sinks ...eventlog.Sink) Option {
	return func(s *sessionServiceImpl) { s.extraSinks = append(s.extraSinks, sinks...) }
}

func WithOrderIDGenerator(gen checkout.IDGenerator) Option {
	return func(s *sessionServiceImpl) { s.newOrderID = gen }
}

func WithSessionIDGenerator(gen func() string) Option {
	return func(s *sessionServiceImpl) { s.newSessionID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *sessionServiceImpl) { s.now = now }
}

// NewSessionService creates a new SessionService. snsClient and metrics may
// be nil.
func NewSessionService(
	repo database.SessionRepository,
	cat catalog.Catalog,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics OrderMetrics,
	logger *zap.Logger,
	opts ...Option,
) SessionService {
	s := &sessionServiceImpl{
		repo:           repo,
		catalog:        cat,
		snsClient:      snsClient,
		snsTopicArn:    snsTopicArn,
		metrics:        metrics,
		logger:         logger,
		channel:        analytics.DefaultChannel,
		serviceName:    "storefront-service",
		format:         locale.Default(),
		idempotencyTTL: 24 * time.Hour,
		newOrderID:     checkout.NewOrderID,
		newSessionID:   uuid.NewString,
		now:            time.Now,
		locks:          newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionServiceImpl) Formatter() *locale.Formatter { return s.format }

// session is a storefront rebuilt from a snapshot together with its log.
type session struct {
	id  string
	sf  *storefront.Storefront
	log *eventlog.Log
}

func (s *sessionServiceImpl) rebuild(snap *models.SessionSnapshot) *session {
	c := cart.NewStore()
	c.Restore(snap.Lines)

	m := checkout.NewMachine(checkout.WithIDGenerator(s.newOrderID), checkout.WithClock(s.now))
	m.Restore(snap.State, snap.OrderID)

	log := eventlog.NewLog(eventlog.WithClock(s.now), eventlog.WithFormatter(s.format))
	log.Restore(snap.Events)

	sinks := append([]eventlog.Sink{log}, s.extraSinks...)
	sf := storefront.New(s.catalog, c, m, eventlog.Tee(sinks...), s.logger.With(zap.String("session_id", snap.SessionID)),
		storefront.WithChannel(s.channel))

	return &session{id: snap.SessionID, sf: sf, log: log}
}

func (s *sessionServiceImpl) snapshot(sess *session) *models.SessionSnapshot {
	snap := sess.sf.Snapshot(sess.id)
	snap.Events = sess.log.Entries()
	return &snap
}

func (s *sessionServiceImpl) fetch(ctx context.Context, sessionID string) (*models.SessionSnapshot, *ServiceError) {
	snap, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, s.toServiceError(apperrors.Internal("Failed to load session", err), "Failed to load session")
	}
	if snap == nil {
		return nil, s.toServiceError(apperrors.NotFound("Session not found"), "Failed to load session")
	}
	return snap, nil
}

func (s *sessionServiceImpl) load(ctx context.Context, sessionID string) (*session, *ServiceError) {
	snap, serr := s.fetch(ctx, sessionID)
	if serr != nil {
		return nil, serr
	}
	return s.rebuild(snap), nil
}

func (s *sessionServiceImpl) save(ctx context.Context, sess *session) (*models.SessionSnapshot, *ServiceError) {
	snap := s.snapshot(sess)
	if err := s.repo.SaveSession(ctx, snap); err != nil {
		return nil, s.toServiceError(apperrors.Internal("Failed to save session", err), "Failed to save session")
	}
	return snap, nil
}

func (s *sessionServiceImpl) Start(ctx context.Context) (*models.SessionView, *ServiceError) {
	sess := s.rebuild(&models.SessionSnapshot{SessionID: s.newSessionID(), State: models.CheckoutBrowsing})

	if err := sess.sf.LoadHome(ctx); err != nil {
		return nil, s.toServiceError(err, "Failed to start session")
	}
	saved, serr := s.save(ctx, sess)
	if serr != nil {
		return nil, serr
	}

	s.recordCount(ctx, aws_pkg.MetricSessionsStarted)
	s.logger.Info("Session started", zap.String("session_id", sess.id))
	return s.view(saved), nil
}

func (s *sessionServiceImpl) Get(ctx context.Context, sessionID string) (*models.SessionView, *ServiceError) {
	snap, serr := s.fetch(ctx, sessionID)
	if serr != nil {
		return nil, serr
	}
	return s.view(snap), nil
}

// Events returns the session's event log, newest first.
func (s *sessionServiceImpl) Events(ctx context.Context, sessionID string) ([]models.AnalyticsEvent, *ServiceError) {
	snap, serr := s.fetch(ctx, sessionID)
	if serr != nil {
		return nil, serr
	}
	if snap.Events == nil {
		return []models.AnalyticsEvent{}, nil
	}
	return snap.Events, nil
}

// Do runs action under the session lock. The snapshot is saved even when
// action fails, since a failed record may follow an applied mutation.
func (s *sessionServiceImpl) Do(ctx context.Context, sessionID string, action Action) (*models.SessionView, *ServiceError) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, serr := s.load(ctx, sessionID)
	if serr != nil {
		return nil, serr
	}

	actionErr := action(ctx, sess.sf)

	saved, serr := s.save(ctx, sess)
	if serr != nil {
		return nil, serr
	}
	if actionErr != nil {
		return nil, s.toServiceError(actionErr, "Failed to process action")
	}
	return s.view(saved), nil
}

// ConfirmPurchase completes checkout. A repeated idempotency key for the
// same session returns the first order without recording a second purchase.
func (s *sessionServiceImpl) ConfirmPurchase(ctx context.Context, sessionID, idempotencyKey string) (*models.CheckoutResult, *ServiceError) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, serr := s.load(ctx, sessionID)
	if serr != nil {
		return nil, serr
	}

	idemKey := ""
	if idempotencyKey != "" {
		idemKey = sessionID + ":" + idempotencyKey
		orderID, err := s.repo.GetIdempotency(ctx, idemKey)
		if err != nil {
			return nil, s.toServiceError(apperrors.Internal("Failed to read idempotency key", err), "Failed to confirm purchase")
		}
		if orderID != "" {
			s.logger.Info("Replayed purchase confirmation",
				zap.String("session_id", sessionID),
				zap.String("order_id", orderID),
			)
			return &models.CheckoutResult{
				OrderID:  orderID,
				Replayed: true,
				Session:  s.view(s.snapshot(sess)),
			}, nil
		}
	}

	order, actionErr := sess.sf.ConfirmPurchase(ctx)

	saved, serr := s.save(ctx, sess)
	if serr != nil {
		return nil, serr
	}
	if actionErr != nil && order.ID == "" {
		return nil, s.toServiceError(actionErr, "Failed to confirm purchase")
	}
	if actionErr != nil {
		s.logger.Warn("Purchase completed but event recording failed",
			zap.String("order_id", order.ID),
			zap.Error(actionErr),
		)
	}

	if idemKey != "" {
		if err := s.repo.SetIdempotency(ctx, idemKey, order.ID, s.idempotencyTTL); err != nil {
			s.logger.Error("Failed to store idempotency key", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	s.publishOrderCompletedEvent(ctx, sessionID, order)
	s.recordCount(ctx, aws_pkg.MetricOrdersCompleted)
	s.recordValue(ctx, aws_pkg.MetricOrderValue, float64(order.Total))

	return &models.CheckoutResult{
		OrderID: order.ID,
		Total:   order.Total,
		Session: s.view(saved),
	}, nil
}

// End deletes the session. Ending an unknown or expired session is a 404.
func (s *sessionServiceImpl) End(ctx context.Context, sessionID string) *ServiceError {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if _, serr := s.fetch(ctx, sessionID); serr != nil {
		return serr
	}
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return s.toServiceError(apperrors.Internal("Failed to delete session", err), "Failed to end session")
	}
	s.logger.Info("Session ended", zap.String("session_id", sessionID))
	return nil
}

func (s *sessionServiceImpl) publishOrderCompletedEvent(ctx context.Context, sessionID string, order models.Order) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		s.logger.Warn("SNS client not configured, skipping order.completed event")
		return
	}

	event := models.OrderCompletedEvent{
		EventType: EventOrderCompleted,
		SessionID: sessionID,
		OrderID:   order.ID,
		Lines:     order.Lines,
		Total:     order.Total,
		Timestamp: order.PlacedAt,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal order.completed event", zap.Error(err))
		return
	}

	if err := s.snsClient.Publish(ctx, s.snsTopicArn, EventOrderCompleted, eventBytes); err != nil {
		s.logger.Error("Failed to publish order.completed event", zap.String("order_id", order.ID), zap.Error(err))
		return
	}

	s.logger.Info("Published order.completed event",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total),
	)
}

func (s *sessionServiceImpl) recordCount(ctx context.Context, metric string) {
	if s.metrics == nil {
		return
	}
	dims := map[string]string{"Service": s.serviceName, "Channel": s.channel}
	if err := s.metrics.RecordCount(ctx, metric, dims); err != nil {
		s.logger.Warn("Failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}

func (s *sessionServiceImpl) recordValue(ctx context.Context, metric string, value float64) {
	if s.metrics == nil {
		return
	}
	dims := map[string]string{"Service": s.serviceName, "Channel": s.channel}
	if err := s.metrics.RecordValue(ctx, metric, value, dims); err != nil {
		s.logger.Warn("Failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}

// toServiceError maps err onto its HTTP status. Internal errors are logged
// and reported with the fallback message only.
func (s *sessionServiceImpl) toServiceError(err error, fallback string) *ServiceError {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		s.logger.Error(fallback, zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Kind: kind, Message: fallback}
	}
	var appErr *apperrors.Error
	errors.As(err, &appErr)
	return &ServiceError{StatusCode: apperrors.StatusCode(err), Kind: kind, Message: appErr.Message}
}

func (s *sessionServiceImpl) view(snap *models.SessionSnapshot) *models.SessionView {
	v := &models.SessionView{
		SessionID: snap.SessionID,
		State:     snap.State.String(),
		OrderID:   snap.OrderID,
		Lines:     make([]models.LineView, 0, len(snap.Lines)),
		UpdatedAt: snap.UpdatedAt,
	}
	for _, l := range snap.Lines {
		v.Lines = append(v.Lines, models.LineView{
			ProductID:      l.ID,
			SKU:            l.SKU,
			Name:           l.Name,
			Image:          l.Image,
			Quantity:       l.Quantity,
			UnitPrice:      l.Price,
			LineTotal:      l.LineValue(),
			FormattedTotal: s.format.Price(l.LineValue()),
		})
		v.Count += l.Quantity
		v.Total += l.LineValue()
	}
	v.FormattedTotal = s.format.Price(v.Total)
	return v
}
