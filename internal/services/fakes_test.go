package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"contentgen_backend/internal/billing"
	"contentgen_backend/internal/generator"
	"contentgen_backend/internal/models"
	"contentgen_backend/internal/repositories"

	"gorm.io/gorm"
)

// ---------------- users ----------------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User

	// вызывается перед атомарным инкрементом (эмуляция параллельного запроса)
	beforeIncrement func()
	updateErr       error
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) get(id string) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepo) Create(db *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDForUpdate(db *gorm.DB, id string) (*models.User, error) {
	return r.FindByID(db, id)
}

func (r *fakeUserRepo) FindByStripeSubscriptionIDForUpdate(db *gorm.DB, subscriptionID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if subscriptionID != "" && u.Subscription.StripeSubscriptionID == subscriptionID {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) IncrementUsageIfBelowLimit(db *gorm.DB, id string) (int, bool, error) {
	if r.beforeIncrement != nil {
		r.beforeIncrement()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Subscription.IsActive() || u.UsageCount >= u.Subscription.MonthlyLimit {
		return 0, false, nil
	}
	u.UsageCount++
	r.users[id] = u
	return u.UsageCount, true, nil
}

func (r *fakeUserRepo) UpdateSubscription(db *gorm.DB, user *models.User, sub models.Subscription, resetUsage bool) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok || stored.Subscription.Version != user.Subscription.Version {
		return repositories.ErrVersionConflict
	}
	sub.Version = stored.Subscription.Version + 1
	stored.Subscription = sub
	if resetUsage {
		stored.UsageCount = 0
	}
	r.users[user.ID] = stored
	*user = stored
	return nil
}

func (r *fakeUserRepo) CountBySubscriptionStatus(db *gorm.DB) (map[models.SubscriptionStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[models.SubscriptionStatus]int64{}
	for _, u := range r.users {
		out[u.Subscription.Status]++
	}
	return out, nil
}

// ---------------- content ----------------

type fakeContentRepo struct {
	mu        sync.Mutex
	items     map[string]models.Content
	createErr error
	lastLimit int
	seq       int
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{items: map[string]models.Content{}}
}

func (r *fakeContentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *fakeContentRepo) Create(db *gorm.DB, content *models.Content) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if content.ID == "" {
		content.ID = testContentIDs[r.seq%len(testContentIDs)]
	}
	content.CreatedAt = time.Now()
	r.items[content.ID] = *content
	return nil
}

func (r *fakeContentRepo) FindByIDAndOwner(db *gorm.DB, id, userID string) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.UserID != userID {
		return nil, repositories.ErrContentNotFound
	}
	return &c, nil
}

func (r *fakeContentRepo) ListRecentByOwner(db *gorm.DB, userID string, limit int) ([]models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []models.Content
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContentRepo) DeleteByIDAndOwner(db *gorm.DB, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.UserID != userID {
		return repositories.ErrContentNotFound
	}
	delete(r.items, id)
	return nil
}

var testContentIDs = []string{
	"0f8fad5b-d9cb-469f-a165-70867728950e",
	"7c9e6679-7425-40de-944b-e07fc1f90ae7",
	"16fd2706-8baf-433b-82eb-8c7fada847da",
}

// ---------------- analytics ----------------

type recordedEvent struct {
	UserID string
	Action string
}

type fakeAnalyticsRepo struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *fakeAnalyticsRepo) Record(db *gorm.DB, userID, action string, ct *models.ContentType, meta map[string]interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{UserID: userID, Action: action})
	return nil
}

func (r *fakeAnalyticsRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// ---------------- generation ----------------

type stubProvider struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (p *stubProvider) Complete(ctx context.Context, req generator.CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.text, p.err
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// ---------------- billing ----------------

type fakeGateway struct {
	event      *billing.Event
	parseErr   error
	periodEnd  time.Time
	getErr     error
	cancelErr  error
	checkout   billing.CheckoutRequest
	cancelled  []string
	checkoutID string
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	g.checkout = req
	if g.checkoutID == "" {
		return nil, errors.New("stripe: card_declined")
	}
	return &billing.CheckoutSession{ID: g.checkoutID, URL: "https://checkout.stripe.com/c/" + g.checkoutID}, nil
}

func (g *fakeGateway) GetSubscription(ctx context.Context, id string) (*billing.SubscriptionInfo, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return &billing.SubscriptionInfo{ID: id, Status: "active", CurrentPeriodEnd: g.periodEnd}, nil
}

func (g *fakeGateway) CancelSubscription(ctx context.Context, id string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, id)
	return nil
}

func (g *fakeGateway) ParseEvent(payload []byte, signature string) (*billing.Event, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	if signature != "valid" {
		return nil, billing.ErrInvalidSignature
	}
	ev := *g.event
	return &ev, nil
}

// ---------------- notifications ----------------

type fakeNotifier struct {
	mu        sync.Mutex
	activated []string
	failed    []string
	cancelled []string
}

func (n *fakeNotifier) NotifySubscriptionActivated(user *models.User, plan billing.Plan) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.activated = append(n.activated, user.ID+":"+plan.ID)
}

func (n *fakeNotifier) NotifyPaymentFailed(user *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, user.ID)
}

func (n *fakeNotifier) NotifySubscriptionCancelled(user *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, user.ID)
}

func (n *fakeNotifier) Wait() {}
