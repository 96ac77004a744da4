package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"careops/internal/services"
	"careops/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func adjustRequest(t *testing.T, db *gorm.DB, handler *InventoryHandler, workspaceID, itemID string, change int) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	body := fmt.Sprintf(`{"change": %d, "reason": "recount"}`, change)
	req := httptest.NewRequest(http.MethodPost, "/inventory/"+itemID+"/adjust", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(itemID)

	var workspace models.Workspace
	if err := db.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		t.Fatalf("failed to load workspace: %v", err)
	}
	c.Set("workspace_id", workspace.ID)

	if err := handler.Adjust(c); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	return rec
}

func TestInventoryAdjustClampsQuantityAtZero(t *testing.T) {
	db := newHandlerTestDB(t)
	engine := services.NewAutomationEngine(db, services.NewGateway())
	handler := NewInventoryHandler(db, engine)

	workspace := &models.Workspace{Name: "Riverside Clinic", Slug: "riverside", ContactEmail: "hello@riverside.test"}
	if err := db.Create(workspace).Error; err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	item := &models.InventoryItem{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
		Name:               "Syringes",
		Quantity:           5,
		LowStockThreshold:  2,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	rec := adjustRequest(t, db, handler, workspace.ID.String(), item.ID.String(), -100)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated models.InventoryItem
	if err := db.First(&updated, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("failed to reload item: %v", err)
	}
	if updated.Quantity != 0 {
		t.Errorf("quantity = %d, want 0 (never negative)", updated.Quantity)
	}

	// The log still records the requested change, not the clamped delta
	var entry models.InventoryLog
	if err := db.Where("item_id = ?", item.ID).First(&entry).Error; err != nil {
		t.Fatalf("failed to load log entry: %v", err)
	}
	if entry.Change != -100 {
		t.Errorf("log change = %d, want -100", entry.Change)
	}
}

func TestInventoryAdjustRaisesAlertOnlyOnThresholdCrossing(t *testing.T) {
	db := newHandlerTestDB(t)
	engine := services.NewAutomationEngine(db, services.NewGateway())
	handler := NewInventoryHandler(db, engine)

	workspace := &models.Workspace{Name: "Riverside Clinic", Slug: "riverside", ContactEmail: "hello@riverside.test"}
	if err := db.Create(workspace).Error; err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	item := &models.InventoryItem{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
		Name:               "Gloves",
		Quantity:           11,
		LowStockThreshold:  10,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	countAlerts := func() int64 {
		var count int64
		db.Model(&models.Alert{}).Where("alert_type = ?", models.AlertLowInventory).Count(&count)
		return count
	}

	// 11 -> 10 crosses the threshold from above
	rec := adjustRequest(t, db, handler, workspace.ID.String(), item.ID.String(), -1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := countAlerts(); got != 1 {
		t.Fatalf("expected 1 alert after crossing, got %d", got)
	}

	// 10 -> 9 is already at-or-below, no new alert
	adjustRequest(t, db, handler, workspace.ID.String(), item.ID.String(), -1)
	if got := countAlerts(); got != 1 {
		t.Fatalf("expected no additional alert below threshold, got %d", got)
	}

	// Restock above, then cross again
	adjustRequest(t, db, handler, workspace.ID.String(), item.ID.String(), 5)
	adjustRequest(t, db, handler, workspace.ID.String(), item.ID.String(), -5)
	if got := countAlerts(); got != 2 {
		t.Fatalf("expected second alert after re-crossing, got %d", got)
	}

	var updated models.InventoryItem
	if err := db.First(&updated, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("failed to reload item: %v", err)
	}
	if updated.Quantity != 9 {
		t.Errorf("final quantity = %d, want 9", updated.Quantity)
	}

	var response models.InventoryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	var logs []models.InventoryLog
	db.Where("item_id = ?", item.ID).Find(&logs)
	if len(logs) != 4 {
		t.Errorf("expected 4 inventory log rows, got %d", len(logs))
	}
	for _, entry := range logs {
		if entry.Reason != "recount" {
			t.Errorf("log reason = %q, want recount", entry.Reason)
		}
	}
}
