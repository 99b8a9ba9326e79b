package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	docapp "github.com/docflow/backend/internal/application/document"
	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/docflow/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockDocumentRepository implements document.Repository for testing
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*document.Document, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[document.Document], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[document.Document]), args.Error(1)
}

func (m *MockDocumentRepository) SaveWithLock(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) WithTx(_ *gorm.DB) document.Repository { return m }

var _ document.Repository = (*MockDocumentRepository)(nil)

// stubUnitOfWork runs the workflow closure without a real transaction
type stubUnitOfWork struct {
	tx *document.WorkflowTx
}

func (u *stubUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, tx *document.WorkflowTx) error) error {
	return fn(ctx, u.tx)
}

func setupDocumentTestRouter() (*gin.Engine, *MockDocumentRepository, *DocumentHandler) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	mockRepo := new(MockDocumentRepository)
	uow := &stubUnitOfWork{tx: &document.WorkflowTx{
		Documents: mockRepo,
		SaveEvents: func(_ context.Context, _ ...shared.DomainEvent) error {
			return nil
		},
	}}
	service := docapp.NewWorkflowService(uow, mockRepo, nil, nil, nil, nil, nil, nil, nil, zap.NewNop())
	handler := NewDocumentHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, uuid.MustParse("00000000-0000-0000-0000-000000000001"), uuid.New())
		c.Next()
	})

	return router, mockRepo, handler
}

func createTestDocument(t *testing.T, tenantID uuid.UUID) *document.Document {
	t.Helper()

	doc, err := document.New(tenantID, "sales.invoice", time.Now(), valueobject.Currency("USD"), uuid.New(), "Acme Corp", uuid.New())
	if err != nil {
		t.Fatalf("create test document: %v", err)
	}
	if _, err := doc.AddLine("Consulting", "4000", decimal.NewFromInt(2), decimal.NewFromFloat(150.00), decimal.NewFromFloat(0.10)); err != nil {
		t.Fatalf("add test line: %v", err)
	}
	return doc
}

func TestDocumentHandler_Create(t *testing.T) {
	t.Run("should create a draft document", func(t *testing.T) {
		router, mockRepo, handler := setupDocumentTestRouter()

		router.POST("/documents", handler.Create)

		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*document.Document")).
			Return(nil)

		reqBody := map[string]interface{}{
			"type_key":          "sales.invoice",
			"currency":          "USD",
			"counterparty_id":   uuid.New().String(),
			"counterparty_name": "Acme Corp",
			"lines": []map[string]interface{}{
				{
					"description":  "Consulting",
					"account_code": "4000",
					"quantity":     "2",
					"unit_amount":  "150.00",
					"tax_rate":     "0.10",
				},
			},
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/documents", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "DRAFT", data["status"])
		assert.Equal(t, "sales.invoice", data["type_key"])
		assert.Empty(t, data["number"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject a malformed type key", func(t *testing.T) {
		router, _, handler := setupDocumentTestRouter()

		router.POST("/documents", handler.Create)

		reqBody := map[string]interface{}{
			"type_key":          "NotAType",
			"counterparty_id":   uuid.New().String(),
			"counterparty_name": "Acme Corp",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/documents", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject missing counterparty name", func(t *testing.T) {
		router, _, handler := setupDocumentTestRouter()

		router.POST("/documents", handler.Create)

		reqBody := map[string]interface{}{
			"type_key":        "sales.invoice",
			"counterparty_id": uuid.New().String(),
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/documents", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_GetByID(t *testing.T) {
	t.Run("should return the document", func(t *testing.T) {
		router, mockRepo, handler := setupDocumentTestRouter()

		tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
		doc := createTestDocument(t, tenantID)

		router.GET("/documents/:id", handler.GetByID)

		mockRepo.On("FindByID", mock.Anything, tenantID, doc.ID).
			Return(doc, nil)

		req, _ := http.NewRequest(http.MethodGet, "/documents/"+doc.ID.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)

		data := response["data"].(map[string]interface{})
		assert.Equal(t, doc.ID.String(), data["id"])
		assert.Len(t, data["lines"].([]interface{}), 1)

		mockRepo.AssertExpectations(t)
	})

	t.Run("should return 404 for an unknown document", func(t *testing.T) {
		router, mockRepo, handler := setupDocumentTestRouter()

		tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
		documentID := uuid.New()

		router.GET("/documents/:id", handler.GetByID)

		mockRepo.On("FindByID", mock.Anything, tenantID, documentID).
			Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/documents/"+documentID.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should reject an invalid document ID", func(t *testing.T) {
		router, _, handler := setupDocumentTestRouter()

		router.GET("/documents/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_List(t *testing.T) {
	t.Run("should return paginated documents", func(t *testing.T) {
		router, mockRepo, handler := setupDocumentTestRouter()

		tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
		doc := createTestDocument(t, tenantID)

		router.GET("/documents", handler.List)

		page := shared.NewPaginated([]document.Document{*doc}, 1, 1, 20)
		mockRepo.On("List", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).
			Return(page, nil)

		req, _ := http.NewRequest(http.MethodGet, "/documents?status=DRAFT&page=1&page_size=20", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response["success"].(bool))
		assert.Len(t, response["data"].([]interface{}), 1)

		meta := response["meta"].(map[string]interface{})
		assert.Equal(t, float64(1), meta["total"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject an invalid order direction", func(t *testing.T) {
		router, _, handler := setupDocumentTestRouter()

		router.GET("/documents", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/documents?order_dir=sideways", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_AddLine(t *testing.T) {
	t.Run("should add a line to a draft", func(t *testing.T) {
		router, mockRepo, handler := setupDocumentTestRouter()

		tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
		doc := createTestDocument(t, tenantID)

		router.POST("/documents/:id/lines", handler.AddLine)

		mockRepo.On("FindByID", mock.Anything, tenantID, doc.ID).
			Return(doc, nil)
		mockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*document.Document")).
			Return(nil)

		reqBody := map[string]interface{}{
			"description":  "Travel expenses",
			"account_code": "4100",
			"quantity":     "1",
			"unit_amount":  "80.00",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/documents/"+doc.ID.String()+"/lines", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)

		data := response["data"].(map[string]interface{})
		assert.Len(t, data["lines"].([]interface{}), 2)

		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject a line without an account code", func(t *testing.T) {
		router, _, handler := setupDocumentTestRouter()

		router.POST("/documents/:id/lines", handler.AddLine)

		reqBody := map[string]interface{}{
			"description": "Travel expenses",
			"quantity":    "1",
			"unit_amount": "80.00",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/documents/"+uuid.New().String()+"/lines", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_Delete(t *testing.T) {
	t.Run("should delete a draft", func(t *testing.T) {
		router, mockRepo, handler := setupDocumentTestRouter()

		tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
		doc := createTestDocument(t, tenantID)

		router.DELETE("/documents/:id", handler.Delete)

		mockRepo.On("FindByID", mock.Anything, tenantID, doc.ID).
			Return(doc, nil)
		mockRepo.On("SoftDelete", mock.Anything, tenantID, doc.ID).
			Return(nil)

		req, _ := http.NewRequest(http.MethodDelete, "/documents/"+doc.ID.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockRepo.AssertExpectations(t)
	})
}

func TestDocumentHandler_Cancel(t *testing.T) {
	t.Run("should require a reason", func(t *testing.T) {
		router, _, handler := setupDocumentTestRouter()

		router.POST("/documents/:id/cancel", handler.Cancel)

		body, _ := json.Marshal(map[string]interface{}{})

		req, _ := http.NewRequest(http.MethodPost, "/documents/"+uuid.New().String()+"/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_Submit(t *testing.T) {
	t.Run("should require an authenticated user", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		mockRepo := new(MockDocumentRepository)
		service := docapp.NewWorkflowService(nil, mockRepo, nil, nil, nil, nil, nil, nil, nil, zap.NewNop())
		handler := NewDocumentHandler(service)

		// No auth middleware: the actor cannot be resolved.
		router := gin.New()
		router.POST("/documents/:id/submit", handler.Submit)

		req, _ := http.NewRequest(http.MethodPost, "/documents/"+uuid.New().String()+"/submit", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDocumentHandler_Decide(t *testing.T) {
	t.Run("should reject an unknown decision", func(t *testing.T) {
		router, _, handler := setupDocumentTestRouter()

		router.POST("/documents/:id/decide", handler.Decide)

		reqBody := map[string]interface{}{
			"level_index": 0,
			"decision":    "maybe",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/documents/"+uuid.New().String()+"/decide", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
