package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/resto-order-core/database"
	"github.com/yeremiapane/resto-order-core/drafts"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/router"
	"github.com/yeremiapane/resto-order-core/utils"
)

type testEnv struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Hub     *kds.Hub
	Tokens  *utils.TokenIssuer
	Tenant  models.Tenant
	Other   models.Tenant
	Admin   models.User
	Burger  models.MenuItem
	Tea     models.MenuItem
	Cash    models.PaymentType
	Table   models.Table
	Cashier string
	Chef    string
	Owner   string
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// newTestEnv seeds one tenant with an exclusive-tax burger (200), an untaxed tea (50),
// a cash tender, a table and an admin account, then builds the full router.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	env := &testEnv{DB: db, Hub: kds.NewHub(), Tokens: utils.NewTokenIssuer("test-secret", time.Hour)}

	env.Tenant = models.Tenant{Name: "Warung Satu", Timezone: "Asia/Jakarta"}
	env.Other = models.Tenant{Name: "Warung Dua", Timezone: "UTC"}
	require.NoError(t, db.Create(&env.Tenant).Error)
	require.NoError(t, db.Create(&env.Other).Error)

	tax := models.Tax{TenantID: env.Tenant.ID, Title: "PB1", Rate: decimal.NewFromInt(10), Type: models.TaxExclusive}
	require.NoError(t, db.Create(&tax).Error)

	env.Burger = models.MenuItem{TenantID: env.Tenant.ID, Title: "Burger", Price: decimal.NewFromInt(200), TaxID: &tax.ID, Enabled: true}
	env.Tea = models.MenuItem{TenantID: env.Tenant.ID, Title: "Tea", Price: decimal.NewFromInt(50), Enabled: true}
	require.NoError(t, db.Create(&env.Burger).Error)
	require.NoError(t, db.Create(&env.Tea).Error)

	env.Cash = models.PaymentType{TenantID: env.Tenant.ID, Title: "Cash"}
	env.Table = models.Table{TenantID: env.Tenant.ID, TableNumber: "A1"}
	require.NoError(t, db.Create(&env.Cash).Error)
	require.NoError(t, db.Create(&env.Table).Error)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	env.Admin = models.User{TenantID: env.Tenant.ID, Name: "Admin", Email: "admin@warung.test", Password: string(hashed), Role: models.RoleAdmin}
	require.NoError(t, db.Create(&env.Admin).Error)

	env.Owner = env.token(t, env.Admin.ID, env.Tenant.ID, models.RoleAdmin)
	env.Cashier = env.token(t, env.Admin.ID+100, env.Tenant.ID, models.RoleCashier)
	env.Chef = env.token(t, env.Admin.ID+200, env.Tenant.ID, models.RoleChef)

	env.Router = router.SetupRouter(router.Deps{
		DB:            db,
		Hub:           env.Hub,
		Drafts:        drafts.NewStore(),
		Tokens:        env.Tokens,
		QRMenuBaseURL: "http://localhost:8080/menu",
	})
	return env
}

func (env *testEnv) token(t *testing.T, userID, tenantID uint, role string) string {
	t.Helper()
	token, err := env.Tokens.GenerateToken(userID, tenantID, role)
	require.NoError(t, err)
	return token
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do sends a JSON request and decodes the standard response envelope.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "image/png" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func decodeData(t *testing.T, resp apiResponse, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst), string(resp.Data))
}

func cartLine(item models.MenuItem, qty int) map[string]interface{} {
	return map[string]interface{}{"menu_item_id": item.ID, "quantity": qty}
}

// createOrder places a walk-in order through the API and returns its id.
func (env *testEnv) createOrder(t *testing.T, lines ...map[string]interface{}) uint {
	t.Helper()
	code, resp := env.do(t, http.MethodPost, "/admin/orders", env.Cashier, map[string]interface{}{
		"lines":         lines,
		"delivery_type": "dinein",
		"table_id":      env.Table.ID,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	var res struct {
		OrderID uint `json:"order_id"`
		TokenNo int  `json:"token_no"`
	}
	decodeData(t, resp, &res)
	require.NotZero(t, res.OrderID)
	return res.OrderID
}

func amount(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}
