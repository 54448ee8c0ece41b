package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/ai"
	"github.com/01moynul/storefront-fulfillment/internal/auth"
	"github.com/01moynul/storefront-fulfillment/internal/badges"
	"github.com/01moynul/storefront-fulfillment/internal/cart"
	"github.com/01moynul/storefront-fulfillment/internal/demo"
	"github.com/01moynul/storefront-fulfillment/internal/handlers"
	"github.com/01moynul/storefront-fulfillment/internal/inventory"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/orders"
	"github.com/01moynul/storefront-fulfillment/internal/reviews"
	"github.com/01moynul/storefront-fulfillment/internal/store/memstore"
	"github.com/01moynul/storefront-fulfillment/internal/tickets"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	s := memstore.New()

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	accounts := auth.NewService(s, tokens, logger)
	require.NoError(t, demo.SeedUsers(ctx, accounts, logger))

	reader := inventory.NewReader(s, s)
	reviewService := reviews.NewService(s, s, ai.NeutralClassifier{}, logger)
	h := &handlers.Handlers{
		Auth:         accounts,
		Tokens:       tokens,
		Products:     s,
		Orders:       orders.NewQueryService(s, reader, logger),
		Engine:       orders.NewEngine(s, s, logger),
		Inventory:    reader,
		Reviews:      reviewService,
		Tickets:      tickets.NewService(s, s, tickets.DiskAttachments{Dir: t.TempDir(), BaseURL: "http://api.test"}, logger),
		Cart:         cart.NewService(s, s, logger),
		Badges:       badges.NewReporter(s, s, s, s, logger),
		Cookie:       handlers.SessionCookie{Name: "session"},
		DemoAccounts: demo.Accounts,
		Logger:       logger,
	}
	return &server{t: t, router: SetupRouter(h, Options{CORSOrigin: "http://localhost:5173"}), store: s}
}

// login goes through the real endpoint and returns the session cookie.
func (s *server) login(username string) *http.Cookie {
	s.t.Helper()
	var password string
	for _, a := range demo.Accounts {
		if a.Username == username {
			password = a.Password
		}
	}
	w := s.do(http.MethodPost, "/v1/auth/login", nil, gin.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	s.t.Fatal("no session cookie")
	return nil
}

func (s *server) do(method, path string, session *http.Cookie, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *server) product(stock int) models.Product {
	return s.store.AddProduct(models.Product{
		Name: "Boots", Slug: "boots", Category: "Footwear",
		Price: decimal.RequireFromString("50.00"), StockQuantity: stock, IsActive: true,
	})
}

func TestManagerRoutesForbidCustomers(t *testing.T) {
	s := newServer(t)
	session := s.login("customer")

	for _, path := range []string{
		"/v1/manager/orders/pending",
		"/v1/manager/orders/all",
		"/v1/manager/inventory",
		"/v1/manager/reviews",
		"/v1/manager/tickets",
		"/v1/manager/badges",
	} {
		w := s.do(http.MethodGet, path, session, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.JSONEq(t, `{"status":403,"message":"Access denied"}`, w.Body.String(), path)
	}
}

func TestSupportSeesTicketsButNotOrders(t *testing.T) {
	s := newServer(t)
	session := s.login("support")

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/manager/tickets", session, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/manager/badges", session, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/v1/manager/orders/pending", session, nil).Code)
}

func TestUnauthenticated(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/v1/customer/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 401, decode(t, w)["status"])
}

func TestCheckoutApproveFlow(t *testing.T) {
	s := newServer(t)
	customer := s.login("customer")
	manager := s.login("manager")
	p := s.product(10)

	w := s.do(http.MethodPost, "/v1/customer/cart/items", customer, gin.H{"product_id": p.ID, "quantity": 7})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/v1/customer/cart/checkout", customer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var checkout struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkout))
	require.Len(t, checkout.Orders, 1)
	order := checkout.Orders[0]

	// Pending listing carries the live stock.
	w = s.do(http.MethodGet, "/v1/manager/orders/pending", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Status int            `json:"status"`
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Equal(t, 200, pending.Status)
	require.Len(t, pending.Orders, 1)
	require.NotNil(t, pending.Orders[0].StockAvailable)
	assert.Equal(t, 10, *pending.Orders[0].StockAvailable)

	// 10 in stock, 7 pending: 3 left, not low stock.
	w = s.do(http.MethodGet, "/v1/manager/inventory/"+strconv.FormatInt(p.ID, 10), manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inv struct {
		Inventory models.InventoryView `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, 3, inv.Inventory.AvailableAfterPending)
	assert.False(t, inv.Inventory.IsLowStock)
	assert.False(t, inv.Inventory.IsOutOfStock)

	w = s.do(http.MethodPost, "/v1/manager/orders/process", manager, gin.H{"order_id": order.ID, "action": "approve", "notes": "ship it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 200, decode(t, w)["status"])

	// A second approval is a state error and must not take stock again.
	w = s.do(http.MethodPost, "/v1/manager/orders/process", manager, gin.H{"order_id": order.ID, "action": "approve"})
	assert.Equal(t, http.StatusConflict, w.Code)

	stored, err := s.store.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.StockQuantity)

	w = s.do(http.MethodGet, "/v1/customer/orders/transaction/"+order.TransactionID, customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Equal(t, models.OrderStatusApproved, mine.Order.Status)
}

func TestProcessOrderErrors(t *testing.T) {
	s := newServer(t)
	manager := s.login("manager")
	p := s.product(3)
	o := s.store.AddOrder(models.Order{CustomerID: 1, ProductID: p.ID, Quantity: 5, UnitPrice: p.Price})

	w := s.do(http.MethodPost, "/v1/manager/orders/process", manager, gin.H{"order_id": o.ID, "action": "approve"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Insufficient stock available. Cannot approve until restocked.", decode(t, w)["message"])

	w = s.do(http.MethodPost, "/v1/manager/orders/process", manager, gin.H{"order_id": o.ID, "action": "reject", "notes": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/manager/orders/process", manager, gin.H{"order_id": o.ID, "action": "cancel"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/manager/orders/process", manager, gin.H{"order_id": 9999, "action": "approve"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/v1/manager/orders/process", manager, gin.H{"order_id": o.ID, "action": "reject", "notes": "wrong size"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := s.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRejected, stored.Status)
	assert.Equal(t, "wrong size", stored.Notes)
}

func TestReviewRatingDefaults(t *testing.T) {
	s := newServer(t)
	customer := s.login("customer")

	w := s.do(http.MethodPost, "/v1/customer/reviews/experience", customer, gin.H{"rating": 0, "review_text": "ok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/customer/reviews/experience", customer, gin.H{"review_text": "Quick delivery"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Review models.Review `json:"review"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 5, created.Review.Rating)
	assert.Equal(t, models.SentimentNeutral, created.Review.Sentiment)

	manager := s.login("manager")
	w = s.do(http.MethodGet, "/v1/manager/badges", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var badgeResp struct {
		Badges models.BadgeCounts `json:"badges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &badgeResp))
	assert.Equal(t, 1, badgeResp.Badges.UnmoderatedReviews)

	w = s.do(http.MethodPatch, "/v1/manager/reviews/"+created.Review.ID.Hex()+"/moderate", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/v1/reviews/public", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["reviews"], 1)
}

func TestCreateTicketWithAttachment(t *testing.T) {
	s := newServer(t)
	customer := s.login("customer")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("issue_description", "Box arrived crushed"))
	part, err := form.CreateFormFile("attachment", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/customer/tickets", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(customer)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Ticket models.SupportTicket `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Contains(t, created.Ticket.Attachment, "http://api.test/uploads/")
	assert.Equal(t, models.TicketStatusPending, created.Ticket.Status)
}

func TestDemoUsersEndpoint(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/v1/auth/demo-users", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["users"], len(demo.Accounts))
}
