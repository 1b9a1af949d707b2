package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"streaming-api/internal/billing"
	"streaming-api/internal/config"
	"streaming-api/internal/models"
	"streaming-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_test"

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	verifier *billing.Verifier
	tokens   *services.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{
		JWTSecret:               "test-jwt-secret",
		BillingWebhookSecret:    testWebhookSecret,
		PlaybackTokenTTLMinutes: 1,
		ServiceName:             "Streaming Platform",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.PaymentRecord{},
		&models.Video{},
	))

	subscriptions := billing.NewSubscriptionStore(db)
	ledger := billing.NewLedgerStore(db)
	reconciler := billing.NewReconciler(subscriptions, ledger, billing.NewUserStore(db), nil)
	verifier := billing.NewVerifier(testWebhookSecret)
	tokens := services.NewTokenService()

	r := gin.New()
	SetupRoutes(r, NewHandlers(db, verifier, billing.NewDispatcher(reconciler),
		billing.NewEntitlementService(subscriptions), ledger, nil, tokens))

	return &testEnv{router: r, db: db, verifier: verifier, tokens: tokens}
}

func (e *testEnv) postWebhook(t *testing.T, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/subscription/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Billing-Signature", signature)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) authedGet(t *testing.T, path string, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	token, err := e.tokens.Issue(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedUser(t *testing.T, customerID string) *models.User {
	t.Helper()
	user := &models.User{
		Email:              fmt.Sprintf("%s@example.com", uuid.NewString()),
		FullName:           "Test User",
		ExternalCustomerID: customerID,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	body := `{"type":"customer.subscription.deleted","id":"evt_1","data":{"subscription_id":"sub_1"}}`

	w := env.postWebhook(t, body, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postWebhook(t, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookAcknowledgesUnrecognizedType(t *testing.T) {
	env := newTestEnv(t)
	body := `{"type":"customer.created","id":"evt_1","data":{}}`

	w := env.postWebhook(t, body, env.verifier.SignPayload([]byte(body), time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookAppliesCheckoutEvent(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cus_1")

	body := fmt.Sprintf(`{"type":"checkout.session.completed","id":"evt_1","data":{
		"user_id": %d,
		"plan_id": "basic",
		"subscription_id": "sub_1",
		"customer_id": "cus_1",
		"status": "active",
		"current_period_start": %d,
		"current_period_end": %d
	}}`, user.ID, time.Now().Unix(), time.Now().Add(30*24*time.Hour).Unix())

	w := env.postWebhook(t, body, env.verifier.SignPayload([]byte(body), time.Now()))
	require.Equal(t, http.StatusOK, w.Code)

	var sub models.Subscription
	require.NoError(t, env.db.Where("external_subscription_id = ?", "sub_1").First(&sub).Error)
	assert.Equal(t, user.ID, sub.UserID)

	// The applied state is visible through the query surface
	resp := env.authedGet(t, "/api/subscription/current", user.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			PlanID string `json:"plan_id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "basic", payload.Data.PlanID)
	assert.Equal(t, "active", payload.Data.Status)
}

func TestCurrentSubscriptionRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/subscription/current", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCancelSubscription(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cus_1")

	token, err := env.tokens.Issue(user.ID)
	require.NoError(t, err)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/subscription/cancel", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	// Nothing to cancel yet
	assert.Equal(t, http.StatusNotFound, post().Code)

	require.NoError(t, env.db.Create(&models.Subscription{
		UserID:                 user.ID,
		ExternalSubscriptionID: "sub_1",
		PlanID:                 "basic",
		Status:                 models.SubscriptionStatusActive,
		CurrentPeriodEnd:       time.Now().Add(24 * time.Hour),
	}).Error)

	assert.Equal(t, http.StatusOK, post().Code)

	var sub models.Subscription
	require.NoError(t, env.db.Where("external_subscription_id = ?", "sub_1").First(&sub).Error)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestPaymentHistory(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cus_1")

	body := `{"type":"invoice.payment_succeeded","id":"evt_pay","data":{
		"customer_id": "cus_1",
		"payment_intent_id": "pi_1",
		"amount_paid": 999,
		"currency": "usd",
		"description": "Subscription payment for Basic Plan"
	}}`
	w := env.postWebhook(t, body, env.verifier.SignPayload([]byte(body), time.Now()))
	require.Equal(t, http.StatusOK, w.Code)

	resp := env.authedGet(t, "/api/subscription/payments", user.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Data []models.PaymentRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "pi_1", payload.Data[0].ExternalPaymentID)
}
