package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"jersey-storefront/internal/client"
	"jersey-storefront/internal/model"
)

var discardLogger = slog.New(slog.DiscardHandler)

type fakePaymentClient struct {
	mu sync.Mutex

	notConfigured bool
	createErr     error
	retrieveErr   error
	parseErr      error

	createCalls int
	requests    []*client.CheckoutSessionRequest
	sessions    map[string]*model.CheckoutSession
	lineItems   map[string][]*model.ProviderLineItem
	event       model.PaymentEvent
	// events, when set, picks the parsed event by raw body
	events map[string]model.PaymentEvent
}

func newFakePaymentClient() *fakePaymentClient {
	return &fakePaymentClient{
		sessions:  map[string]*model.CheckoutSession{},
		lineItems: map[string][]*model.ProviderLineItem{},
	}
}

func (f *fakePaymentClient) Configured() bool {
	return !f.notConfigured
}

func (f *fakePaymentClient) CreateCheckoutSession(_ context.Context, req *client.CheckoutSessionRequest) (*model.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}

	id := fmt.Sprintf("cs_test_%d", f.createCalls)
	sess := &model.CheckoutSession{
		ID:           id,
		OrderRef:     fmt.Sprint(req.OrderID),
		Status:       "open",
		ClientSecret: id + "_secret",
	}
	f.sessions[id] = sess
	return sess, nil
}

func (f *fakePaymentClient) RetrieveSession(_ context.Context, sessionID string) (*model.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such checkout.session: %s", sessionID)
	}
	cp := *sess
	return &cp, nil
}

func (f *fakePaymentClient) ListSessionLineItems(_ context.Context, sessionID string) ([]*model.ProviderLineItem, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return f.lineItems[sessionID], nil
}

func (f *fakePaymentClient) ParseWebhook(body []byte, signature string) (model.PaymentEvent, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	if signature == "" {
		return nil, client.ErrInvalidSignature
	}
	if ev, ok := f.events[string(body)]; ok {
		return ev, nil
	}
	return f.event, nil
}

// markPaid flips a stored session to paid with the given customer.
func (f *fakePaymentClient) markPaid(sessionID, intentID string, customer model.CustomerDetails) *model.CheckoutSession {
	f.mu.Lock()
	defer f.mu.Unlock()

	sess := f.sessions[sessionID]
	sess.Status = "complete"
	sess.PaymentStatus = "paid"
	sess.PaymentIntentID = intentID
	sess.Customer = customer
	cp := *sess
	return &cp
}
