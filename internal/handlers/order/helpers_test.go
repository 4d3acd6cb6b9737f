package order

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"velora_back_end/internal/gateway"
	"velora_back_end/internal/models"
	"velora_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubOrderStore garde les commandes en mémoire avec la même sémantique
// compare-and-set que l'implémentation ScyllaDB.
type stubOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{orders: map[string]*models.Order{}}
}

func (s *stubOrderStore) Insert(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubOrderStore) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrderStore) MarkPaid(ctx context.Context, o *models.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[o.ID]
	if !ok {
		return false, store.ErrOrderNotFound
	}
	if stored.Payment {
		return false, nil
	}
	if stored.Status == models.StatusCancelled {
		return false, store.ErrOrderCancelled
	}
	stored.Payment = true
	return true, nil
}

func (s *stubOrderStore) UpdateStatus(ctx context.Context, o *models.Order, status models.OrderStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[o.ID]
	if !ok {
		return store.ErrOrderNotFound
	}
	stored.Status = status
	switch status {
	case models.StatusCancelled:
		stored.CancellationReason = reason
	case models.StatusReturned:
		stored.ReturnReason = reason
	}
	return nil
}

func (s *stubOrderStore) SetStripeSession(ctx context.Context, orderID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderID]; ok {
		o.ProviderRefs.StripeSessionID = sessionID
	}
	return nil
}

func (s *stubOrderStore) SetPayPalOrderID(ctx context.Context, orderID, paypalOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderID]; ok {
		o.ProviderRefs.PayPalOrderID = paypalOrderID
	}
	return nil
}

func (s *stubOrderStore) SetPayPalCapture(ctx context.Context, orderID, payerID, captureID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderID]; ok {
		o.ProviderRefs.PayPalPayerID = payerID
		o.ProviderRefs.PayPalCaptureID = captureID
	}
	return nil
}

// mustGet lit une commande directement, pour les assertions
func (s *stubOrderStore) mustGet(t *testing.T, orderID string) models.Order {
	t.Helper()
	o, err := s.GetByID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("commande %s introuvable dans le stub: %v", orderID, err)
	}
	return *o
}

// stubCartStore compte les vidages de panier par utilisateur
type stubCartStore struct {
	mu     sync.Mutex
	carts  map[string]models.Cart
	clears map[string]int
}

func newStubCartStore() *stubCartStore {
	return &stubCartStore{carts: map[string]models.Cart{}, clears: map[string]int{}}
}

func (s *stubCartStore) Get(ctx context.Context, userID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.carts[userID]; ok {
		return cart, nil
	}
	return models.Cart{}, nil
}

func (s *stubCartStore) Save(ctx context.Context, userID string, cart models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = cart
	return nil
}

func (s *stubCartStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	s.clears[userID]++
	return nil
}

func (s *stubCartStore) clearCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears[userID]
}

// stubInvoiceStore garde les factures archivées en mémoire
type stubInvoiceStore struct {
	mu     sync.Mutex
	stored map[string]string
}

func newStubInvoiceStore() *stubInvoiceStore {
	return &stubInvoiceStore{stored: map[string]string{}}
}

func (s *stubInvoiceStore) Store(ctx context.Context, orderID, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored[orderID] = html
	return nil
}

func (s *stubInvoiceStore) URL(ctx context.Context, orderID string, duration time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stored[orderID]; !ok {
		return "", fmt.Errorf("facture introuvable pour %s", orderID)
	}
	return "https://minio.test/invoices/" + orderID + ".html", nil
}

func (s *stubInvoiceStore) has(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stored[orderID]
	return ok
}

// stubUserStore retourne toujours le même profil
type stubUserStore struct{}

func (stubUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Name: "Client Test", Email: "client@test.be"}, nil
}

// stubGateway simule un prestataire de paiement hébergé
type stubGateway struct {
	method  models.PaymentMethod
	beginFn func(ctx context.Context, o *models.Order) (gateway.Continuation, error)
}

func (g *stubGateway) Method() models.PaymentMethod { return g.method }

func (g *stubGateway) Begin(ctx context.Context, o *models.Order) (gateway.Continuation, error) {
	if g.beginFn != nil {
		return g.beginFn(ctx, o)
	}
	return gateway.Continuation{OrderID: o.ID}, nil
}

// stubCapturer simule la capture PayPal
type stubCapturer struct {
	captureFn func(ctx context.Context, providerOrderID string) (gateway.CaptureResult, error)
}

func (c *stubCapturer) Capture(ctx context.Context, providerOrderID string) (gateway.CaptureResult, error) {
	return c.captureFn(ctx, providerOrderID)
}

// newTestHandler câble un Handler complet sur les stubs
func newTestHandler() (*Handler, *stubOrderStore, *stubCartStore) {
	orders := newStubOrderStore()
	carts := newStubCartStore()

	h := &Handler{
		Orders:   orders,
		Carts:    carts,
		Users:    stubUserStore{},
		Invoices: newStubInvoiceStore(),
		Gateways: map[models.PaymentMethod]gateway.Gateway{
			models.PaymentCOD: &stubGateway{method: models.PaymentCOD},
			models.PaymentStripe: &stubGateway{
				method: models.PaymentStripe,
				beginFn: func(ctx context.Context, o *models.Order) (gateway.Continuation, error) {
					return gateway.Continuation{OrderID: o.ID, RedirectURL: "https://checkout.stripe.test/" + o.ID}, nil
				},
			},
			models.PaymentPayPal: &stubGateway{
				method: models.PaymentPayPal,
				beginFn: func(ctx context.Context, o *models.Order) (gateway.Continuation, error) {
					return gateway.Continuation{
						OrderID:         o.ID,
						RedirectURL:     "https://paypal.test/approve/" + o.ID,
						ProviderOrderID: "PP-" + o.ID,
					}, nil
				},
			},
		},
		DeliveryFee: 50,
	}
	return h, orders, carts
}

// seedOrder insère une commande prête à l'emploi dans le stub
func seedOrder(t *testing.T, orders *stubOrderStore, o models.Order) models.Order {
	t.Helper()
	if o.ID == "" {
		o.ID = fmt.Sprintf("order-%d", time.Now().UnixNano())
	}
	if o.Status == "" {
		o.Status = models.StatusOrderPlaced
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if err := orders.Insert(context.Background(), &o); err != nil {
		t.Fatalf("insertion stub échouée: %v", err)
	}
	return o
}

// performRequest joue une requête sur un handler isolé, avec un user
// authentifié optionnel injecté dans le contexte
func performRequest(t *testing.T, method, path string, handler gin.HandlerFunc, userID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		handler(c)
	})

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func checkStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("statut HTTP attendu %d, obtenu %d (body: %s)", want, w.Code, w.Body.String())
	}
}

var (
	_ store.OrderStore = (*stubOrderStore)(nil)
	_ store.CartStore  = (*stubCartStore)(nil)
	_ store.UserStore  = stubUserStore{}
	_ Invoices         = (*stubInvoiceStore)(nil)
)
