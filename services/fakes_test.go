package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/Hosanna-Mosa/c-t-sub002/sender"
	"github.com/Hosanna-Mosa/c-t-sub002/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ---- orders ----

type savedShipment struct {
	order  models.Order
	intent *models.NotificationOutbox
}

type fakeOrderRepo struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*models.Order
	findErr    error
	saveErr    error
	updateErr  error
	saved      []savedShipment
	updates    []models.Order
	trackable  []models.Order
	trackedIDs []uuid.UUID
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[uuid.UUID]*models.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) FindByIDWithUser(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByTrackingNumber(_ context.Context, number string) (*models.Order, error) {
	for _, o := range r.orders {
		if o.TrackingNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) SaveShipment(_ context.Context, order *models.Order, intent *models.NotificationOutbox) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, savedShipment{order: *order, intent: intent})
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindTrackable(_ context.Context, ids []uuid.UUID, _ int) ([]models.Order, error) {
	r.trackedIDs = ids
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]models.Order, len(r.trackable))
	copy(out, r.trackable)
	return out, nil
}

func (r *fakeOrderRepo) UpdateTracking(_ context.Context, order *models.Order) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, *order)
	return nil
}

// ---- collaborators ----

type fakeCreator struct {
	shipment models.CarrierShipment
	err      error
	calls    int
	lastPkg  models.PackageInfo
}

func (c *fakeCreator) CreateShipment(_ context.Context, _ *models.Order, pkg models.PackageInfo) (models.CarrierShipment, error) {
	c.calls++
	c.lastPkg = pkg
	return c.shipment, c.err
}

type fakeNotifier struct {
	dispatched []uuid.UUID
}

func (n *fakeNotifier) Dispatch(_ context.Context, orderID uuid.UUID) {
	n.dispatched = append(n.dispatched, orderID)
}

type fakeShipmentPublisher struct {
	events []models.ShipmentEvent
}

func (p *fakeShipmentPublisher) PublishShipment(_ context.Context, e models.ShipmentEvent) {
	p.events = append(p.events, e)
}

type fakeTrackingPublisher struct {
	events []models.TrackingUpdatedEvent
	err    error
}

func (p *fakeTrackingPublisher) PublishTrackingUpdated(_ context.Context, e models.TrackingUpdatedEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{counts: map[string]int{}} }

func (m *fakeMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
	return nil
}

type fakeShippingProvider struct {
	rates      []models.ShippingRate
	ratesErr   error
	rateCalls  int
	label      models.PurchasedLabel
	labelErr   error
	boughtRate string
	tracking   map[string]models.TrackingStatus
	trackErr   error
	trackCalls int
}

func (p *fakeShippingProvider) GetRates(_ context.Context, _ models.Parcel, _, _ models.Address) ([]models.ShippingRate, error) {
	p.rateCalls++
	out := make([]models.ShippingRate, len(p.rates))
	copy(out, p.rates)
	return out, p.ratesErr
}

func (p *fakeShippingProvider) PurchaseLabel(_ context.Context, rateID string) (models.PurchasedLabel, error) {
	p.boughtRate = rateID
	return p.label, p.labelErr
}

func (p *fakeShippingProvider) TrackShipment(_ context.Context, _, number string) (models.TrackingStatus, error) {
	p.trackCalls++
	if p.trackErr != nil {
		return models.TrackingStatus{}, p.trackErr
	}
	st, ok := p.tracking[number]
	if !ok {
		return models.TrackingStatus{}, errors.New("unknown tracking number")
	}
	return st, nil
}

type fakeLabelStore struct {
	stored storage.StoredLabel
	err    error
	source string
}

func (s *fakeLabelStore) StoreLabel(_ context.Context, _, _, sourceURL string) (storage.StoredLabel, error) {
	s.source = sourceURL
	return s.stored, s.err
}

type fakeImageStore struct {
	uploaded  [][]*multipart.FileHeader
	folders   []string
	uploadErr error
	deleted   []string
}

func (s *fakeImageStore) UploadImages(_ context.Context, files []*multipart.FileHeader, folder string) ([]models.Image, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploaded = append(s.uploaded, files)
	s.folders = append(s.folders, folder)
	images := make([]models.Image, 0, len(files))
	for _, f := range files {
		images = append(images, models.Image{URL: "https://img.example/" + f.Filename, PublicID: folder + "/" + f.Filename})
	}
	return images, nil
}

func (s *fakeImageStore) DeleteImages(_ context.Context, ids []string) error {
	s.deleted = append(s.deleted, ids...)
	return nil
}

// ---- outbox ----

type fakeOutboxRepo struct {
	mu         sync.Mutex
	entries    map[uuid.UUID]*models.NotificationOutbox
	stampedFor []uuid.UUID
	markErr    error
}

func newFakeOutboxRepo(entries ...*models.NotificationOutbox) *fakeOutboxRepo {
	r := &fakeOutboxRepo{entries: map[uuid.UUID]*models.NotificationOutbox{}}
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeOutboxRepo) deliverable(e *models.NotificationOutbox, staleBefore time.Time) bool {
	return e.Status == models.OutboxStatusPending ||
		(e.Status == models.OutboxStatusSending && e.UpdatedAt.Before(staleBefore))
}

func (r *fakeOutboxRepo) FindPendingForOrder(_ context.Context, orderID uuid.UUID, kind string) (*models.NotificationOutbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.OrderID == orderID && e.Kind == kind && e.Status == models.OutboxStatusPending {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOutboxRepo) FindPending(_ context.Context, staleBefore time.Time, limit int) ([]models.NotificationOutbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.NotificationOutbox
	for _, e := range r.entries {
		if r.deliverable(e, staleBefore) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutboxRepo) Claim(_ context.Context, id uuid.UUID, staleBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || !r.deliverable(e, staleBefore) {
		return false, nil
	}
	e.Status = models.OutboxStatusSending
	e.UpdatedAt = staleBefore.Add(time.Hour)
	return true, nil
}

func (r *fakeOutboxRepo) MarkSent(_ context.Context, entry *models.NotificationOutbox, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	e := r.entries[entry.ID]
	e.Status = models.OutboxStatusSent
	e.SentAt = &at
	e.Attempts++
	r.stampedFor = append(r.stampedFor, entry.OrderID)
	return nil
}

func (r *fakeOutboxRepo) RecordFailure(_ context.Context, entry *models.NotificationOutbox, errMsg string, maxAttempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[entry.ID]
	e.Attempts++
	e.LastError = errMsg
	if e.Attempts >= maxAttempts {
		e.Status = models.OutboxStatusFailed
	} else {
		e.Status = models.OutboxStatusPending
	}
	return nil
}

type sentEmail struct {
	to, name, subject, body string
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentEmail
}

func (s *fakeSender) Send(_ context.Context, m sender.Message) (sender.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return sender.Receipt{}, s.err
	}
	s.sent = append(s.sent, sentEmail{to: m.To, name: m.ToName, subject: m.Subject, body: m.HTML})
	return sender.Receipt{MessageID: "msg-1", SentAt: time.Now()}, nil
}

// ---- catalog ----

type fakeProductRepo struct {
	products  map[uuid.UUID]*models.Product
	createErr error
	updateErr error
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	p.ID = uuid.New()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, kind string, id uuid.UUID) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok || p.Kind != kind {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindBySlug(_ context.Context, kind, slug string) (*models.Product, error) {
	for _, p := range r.products {
		if p.Kind == kind && p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) List(_ context.Context, kind string, f models.ProductFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range r.products {
		if p.Kind == kind {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, kind string, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok || p.Kind != kind {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) SlugTaken(_ context.Context, kind, slug string, excludeID uuid.UUID) (bool, error) {
	for _, p := range r.products {
		if p.Kind == kind && p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalogCache struct {
	invalidated []string
}

func (c *fakeCatalogCache) GetList(context.Context, string, models.ProductFilter) (*models.ProductPage, bool) {
	return nil, false
}
func (c *fakeCatalogCache) SetListAsync(string, models.ProductFilter, *models.ProductPage) {}
func (c *fakeCatalogCache) GetProduct(context.Context, string, string) (*models.Product, bool) {
	return nil, false
}
func (c *fakeCatalogCache) SetProductAsync(string, string, *models.Product) {}
func (c *fakeCatalogCache) Invalidate(_ context.Context, kind string, p *models.Product) {
	ref := kind
	if p != nil {
		ref = kind + ":" + p.Slug
	}
	c.invalidated = append(c.invalidated, ref)
}

type fakeTemplateRepo struct {
	templates map[string]*models.Template
	putErr    error
}

func newFakeTemplateRepo(ts ...*models.Template) *fakeTemplateRepo {
	r := &fakeTemplateRepo{templates: map[string]*models.Template{}}
	for _, t := range ts {
		r.templates[t.ID] = t
	}
	return r
}

func (r *fakeTemplateRepo) FindAll(_ context.Context, activeOnly bool) ([]models.Template, error) {
	var out []models.Template
	for _, t := range r.templates {
		if !activeOnly || t.IsActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) FindByID(_ context.Context, id string) (*models.Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) Put(_ context.Context, t *models.Template) error {
	if r.putErr != nil {
		return r.putErr
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.templates[id]; !ok {
		return repository.ErrTemplateNotFound
	}
	delete(r.templates, id)
	return nil
}

// ---- payments ----

type fakePaymentRepo struct {
	recorded []models.PaymentVerification
	paid     []models.Order
	markErr  error
	settled  map[string]uuid.UUID // reference -> order
}

func (r *fakePaymentRepo) RecordVerification(_ context.Context, v *models.PaymentVerification) error {
	r.recorded = append(r.recorded, *v)
	return nil
}

func (r *fakePaymentRepo) MarkPaid(_ context.Context, order *models.Order, v *models.PaymentVerification) error {
	if r.markErr != nil {
		return r.markErr
	}
	if owner, ok := r.settled[order.PaymentReference]; ok && owner != order.ID {
		return repository.ErrPaymentAlreadyApplied
	}
	if r.settled == nil {
		r.settled = map[string]uuid.UUID{}
	}
	r.settled[order.PaymentReference] = order.ID
	r.paid = append(r.paid, *order)
	r.recorded = append(r.recorded, *v)
	return nil
}

type fakePaymentProvider struct {
	name    string
	payment models.ProviderPayment
	err     error
	calls   int
}

func (p *fakePaymentProvider) Name() string { return p.name }

func (p *fakePaymentProvider) GetPayment(_ context.Context, _ string) (models.ProviderPayment, error) {
	p.calls++
	return p.payment, p.err
}

type fakeQueue struct {
	bodies []string
	err    error
}

func (q *fakeQueue) Send(_ context.Context, body string) error {
	if q.err != nil {
		return q.err
	}
	q.bodies = append(q.bodies, body)
	return nil
}

type fakeRateCache struct {
	store map[string][]models.ShippingRate
}

func (c *fakeRateCache) Get(_ context.Context, key string) ([]models.ShippingRate, bool) {
	r, ok := c.store[key]
	return r, ok
}

func (c *fakeRateCache) Set(_ context.Context, key string, rates []models.ShippingRate) {
	c.store[key] = rates
}
