package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"jersey-storefront/internal/client"
	"jersey-storefront/internal/config"
	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/model"
	"jersey-storefront/internal/repository"

	"gorm.io/gorm"
)

type ReconcileService interface {
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	ConfirmSession(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error)
	SweepStale(ctx context.Context) (*SweepReport, error)
}

// SweepReport counts what one sweep did with stale pending orders.
type SweepReport struct {
	Checked int
	Paid    int
	Failed  int
	Skipped int
}

type reconcileServiceImpl struct {
	db               *gorm.DB
	paymentClient    client.PaymentClient
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	forwardRepo      repository.AttributionForwardRepository
	pendingTTL       time.Duration
	sweepBatch       int
	logger           *slog.Logger
	now              func() time.Time
}

func NewReconcileService(
	db *gorm.DB,
	paymentClient client.PaymentClient,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	forwardRepo repository.AttributionForwardRepository,
	sweeperCfg config.Sweeper,
	logger *slog.Logger,
) ReconcileService {
	return &reconcileServiceImpl{
		db:               db,
		paymentClient:    paymentClient,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		forwardRepo:      forwardRepo,
		pendingTTL:       sweeperCfg.PendingTTL,
		sweepBatch:       sweeperCfg.BatchSize,
		logger:           logger,
		now:              time.Now,
	}
}

// HandleWebhook verifies and applies one provider notification. Only
// verification and decoding errors are returned; once an event is verified
// processing problems are logged and the call still succeeds.
func (s *reconcileServiceImpl) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	event, err := s.paymentClient.ParseWebhook(body, signature)
	if err != nil {
		return err
	}

	log := s.logger.With("event_id", event.EventID(), "event_type", event.EventType())

	seen, err := s.webhookEventRepo.Exists(ctx, event.EventID())
	if err != nil {
		log.Error("check webhook event", "error", err)
		return nil
	}
	if seen {
		log.Info("duplicate webhook event ignored")
		return nil
	}

	if err := s.applyEvent(ctx, log, event); err != nil {
		// not recorded, so a redelivery gets another chance
		log.Error("process webhook event", "error", err)
		return nil
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.EventID(), event.EventType()); err != nil {
		log.Error("record webhook event", "error", err)
	}
	return nil
}

func (s *reconcileServiceImpl) applyEvent(ctx context.Context, log *slog.Logger, event model.PaymentEvent) error {
	switch ev := event.(type) {
	case *model.CheckoutSessionEvent:
		sess := &ev.Session
		switch ev.Outcome {
		case model.OutcomeSucceeded:
			return s.handleSessionPaid(ctx, log, sess)
		case model.OutcomeFailed:
			reason := "checkout session expired"
			if ev.EventType() != "checkout.session.expired" {
				reason = "async payment failed"
			}
			return s.handleFailure(ctx, log, sess.ID, sess.OrderRef, sess.PaymentIntentID, reason)
		default:
			log.Info("checkout session completed without payment, order stays pending", "session_id", sess.ID)
			return nil
		}

	case *model.PaymentIntentEvent:
		pi := &ev.Intent
		if ev.Outcome == model.OutcomeFailed {
			// a declined attempt; the customer can retry inside the same session
			log.Warn("payment attempt failed, order stays pending",
				"payment_intent_id", pi.ID,
				"order_ref", pi.OrderRef,
				"reason", pi.FailureMessage,
			)
			return nil
		}
		order, err := s.findOrder(ctx, "", pi.OrderRef, pi.ID)
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn("no order for payment intent", "payment_intent_id", pi.ID)
			return nil
		}
		if err != nil {
			return err
		}
		_, err = s.markPaid(ctx, log, order, &model.PaymentConfirmation{
			PaymentIntentID: pi.ID,
			Customer:        pi.Customer,
		})
		return err

	case *model.NoticeEvent:
		log.Warn("payment notice received, no automatic action", "object_id", ev.ObjectID)
		return nil
	}

	log.Debug("unhandled webhook event type")
	return nil
}

func (s *reconcileServiceImpl) handleSessionPaid(ctx context.Context, log *slog.Logger, sess *model.CheckoutSession) error {
	order, err := s.findOrder(ctx, sess.ID, sess.OrderRef, sess.PaymentIntentID)
	if errors.Is(err, ErrOrderNotFound) {
		log.Warn("no order for checkout session", "session_id", sess.ID)
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.markPaid(ctx, log, order, &model.PaymentConfirmation{
		PaymentIntentID: sess.PaymentIntentID,
		Customer:        sess.Customer,
	})
	return err
}

func (s *reconcileServiceImpl) handleFailure(ctx context.Context, log *slog.Logger, sessionID, orderRef, intentID, reason string) error {
	order, err := s.findOrder(ctx, sessionID, orderRef, intentID)
	if errors.Is(err, ErrOrderNotFound) {
		log.Warn("no order for failed payment", "session_id", sessionID, "payment_intent_id", intentID)
		return nil
	}
	if err != nil {
		return err
	}

	failed, err := s.orderRepo.MarkFailed(ctx, order.ID, reason)
	if err != nil {
		return fmt.Errorf("mark order %d failed: %w", order.ID, err)
	}
	if failed {
		log.Info("order marked failed", "order_id", order.ID, "reason", reason)
	} else {
		log.Info("order not pending, failure ignored", "order_id", order.ID, "status", order.Status)
	}
	return nil
}

// markPaid performs the pending -> paid transition and, in the same
// transaction, queues the attribution forward. It reports whether this call
// did the transition.
func (s *reconcileServiceImpl) markPaid(ctx context.Context, log *slog.Logger, order *model.Order, confirmation *model.PaymentConfirmation) (bool, error) {
	transitioned := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.MarkPaid(ctx, tx, order.ID, confirmation)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if !ok {
			return nil
		}
		transitioned = true

		paid := *order
		applyConfirmation(&paid, confirmation)
		payload, err := BuildAttributionPayload(&paid, s.now())
		if err != nil {
			return fmt.Errorf("build attribution payload: %w", err)
		}
		if err := s.forwardRepo.Enqueue(ctx, tx, order.ID, payload); err != nil {
			return fmt.Errorf("enqueue attribution forward: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if transitioned {
		log.Info("order paid", "order_id", order.ID, "payment_intent_id", confirmation.PaymentIntentID)
	} else {
		log.Info("order already processed", "order_id", order.ID)
	}
	return transitioned, nil
}

// findOrder tries the session id, then the order reference the provider
// echoes back, then the payment intent id.
func (s *reconcileServiceImpl) findOrder(ctx context.Context, sessionID, orderRef, intentID string) (*model.Order, error) {
	lookups := []func() (*model.Order, error){}
	if sessionID != "" {
		lookups = append(lookups, func() (*model.Order, error) { return s.orderRepo.FindBySessionID(ctx, sessionID) })
	}
	if id, err := strconv.ParseUint(orderRef, 10, 64); err == nil && id > 0 {
		lookups = append(lookups, func() (*model.Order, error) { return s.orderRepo.FindByID(ctx, uint(id)) })
	}
	if intentID != "" {
		lookups = append(lookups, func() (*model.Order, error) { return s.orderRepo.FindByPaymentIntentID(ctx, intentID) })
	}

	for _, lookup := range lookups {
		order, err := lookup()
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find order: %w", err)
		}
	}
	return nil, ErrOrderNotFound
}

func (s *reconcileServiceImpl) ConfirmSession(ctx context.Context, sessionID string) (*dto.ConfirmResponse, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	if !s.paymentClient.Configured() {
		return nil, ErrProviderNotConfigured
	}

	sess, err := s.paymentClient.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	order, err := s.findOrder(ctx, sess.ID, sess.OrderRef, sess.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	if !sess.Paid() {
		return &dto.ConfirmResponse{
			Success: false,
			OrderID: order.ID,
			Status:  string(order.Status),
			Message: "payment not completed",
		}, nil
	}

	log := s.logger.With("session_id", sess.ID, "source", "confirm")
	transitioned, err := s.markPaid(ctx, log, order, &model.PaymentConfirmation{
		PaymentIntentID: sess.PaymentIntentID,
		Customer:        sess.Customer,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ConfirmResponse{Success: true, OrderID: order.ID, Status: string(model.OrderStatusPaid)}
	if !transitioned {
		current, err := s.orderRepo.FindByID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("reload order %d: %w", order.ID, err)
		}
		resp.Status = string(current.Status)
		resp.Success = current.Status == model.OrderStatusPaid
		resp.Message = "already processed"
	}
	return resp, nil
}

// SweepStale settles pending orders older than the pending TTL against the
// provider. Only paid or expired sessions settle an order; anything else,
// including provider lookup errors, leaves it for the next sweep.
func (s *reconcileServiceImpl) SweepStale(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{}

	orders, err := s.orderRepo.ListStalePending(ctx, s.now().Add(-s.pendingTTL), s.sweepBatch)
	if err != nil {
		return nil, fmt.Errorf("list stale orders: %w", err)
	}

	log := s.logger.With("source", "sweeper")
	for _, order := range orders {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Checked++

		if order.StripeSessionID == nil || *order.StripeSessionID == "" {
			s.sweepFail(ctx, log, report, order, "no checkout session created")
			continue
		}
		if !s.paymentClient.Configured() {
			report.Skipped++
			continue
		}

		sess, err := s.paymentClient.RetrieveSession(ctx, *order.StripeSessionID)
		if err != nil {
			log.Warn("retrieve session for stale order", "order_id", order.ID, "error", err)
			report.Skipped++
			continue
		}

		switch {
		case sess.Paid():
			ok, err := s.markPaid(ctx, log, order, &model.PaymentConfirmation{
				PaymentIntentID: sess.PaymentIntentID,
				Customer:        sess.Customer,
			})
			if err != nil {
				log.Error("recover paid order", "order_id", order.ID, "error", err)
				report.Skipped++
			} else if ok {
				report.Paid++
			}
		case sess.Status == "expired":
			s.sweepFail(ctx, log, report, order, "checkout session expired")
		default:
			// open, or complete with a delayed payment still settling
			report.Skipped++
		}
	}

	if report.Checked > 0 {
		log.Info("stale orders swept",
			"checked", report.Checked,
			"paid", report.Paid,
			"failed", report.Failed,
			"skipped", report.Skipped,
		)
	}
	return report, nil
}

func (s *reconcileServiceImpl) sweepFail(ctx context.Context, log *slog.Logger, report *SweepReport, order *model.Order, reason string) {
	ok, err := s.orderRepo.MarkFailed(ctx, order.ID, reason)
	if err != nil {
		log.Error("mark stale order failed", "order_id", order.ID, "error", err)
		report.Skipped++
		return
	}
	if ok {
		report.Failed++
	}
}

func applyConfirmation(order *model.Order, confirmation *model.PaymentConfirmation) {
	if confirmation == nil {
		return
	}
	c := confirmation.Customer
	if c.Email != "" {
		order.CustomerEmail = c.Email
	}
	if c.Name != "" {
		order.CustomerName = c.Name
	}
	if c.Phone != "" {
		order.CustomerPhone = c.Phone
	}
	if !c.Address.IsZero() {
		order.ShippingAddress = c.Address
	}
	if confirmation.PaymentIntentID != "" {
		pi := confirmation.PaymentIntentID
		order.PaymentIntentID = &pi
	}
}
