package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saicherry93479/little-loopies-fulfillment/controllers"
	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/services"
)

type stubStoreService struct {
	candidates []models.StoreCandidate
	assignment *models.StoreAssignment
	err        *services.ServiceError
}

func (s *stubStoreService) FindEligibleStores(_ context.Context, _ uuid.UUID) ([]models.StoreCandidate, *services.ServiceError) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func (s *stubStoreService) AssignStore(_ context.Context, _, _ uuid.UUID) (*models.StoreAssignment, *services.ServiceError) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assignment, nil
}

func storeRouter(svc services.StoreService) *gin.Engine {
	controller := controllers.NewStoreController(svc)
	router := gin.New()
	router.GET("/orders/:id/eligible-stores", controller.EligibleStores)
	router.POST("/orders/:id/assign-store", controller.AssignStore)
	return router
}

func TestEligibleStores_OK(t *testing.T) {
	svc := &stubStoreService{
		candidates: []models.StoreCandidate{{ID: uuid.New(), Name: "Koramangala"}},
	}
	router := storeRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString()+"/eligible-stores", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Stores []models.StoreCandidate `json:"stores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Stores, 1)
	assert.Equal(t, "Koramangala", body.Stores[0].Name)
}

func TestEligibleStores_OrderNotFound(t *testing.T) {
	svc := &stubStoreService{err: services.NewNotFoundError("Order not found")}
	router := storeRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString()+"/eligible-stores", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignStore_Created(t *testing.T) {
	orderID := uuid.New()
	storeID := uuid.New()
	svc := &stubStoreService{
		assignment: &models.StoreAssignment{OrderID: orderID, StoreID: storeID, IsActive: true},
	}
	router := storeRouter(svc)

	body, _ := json.Marshal(models.AssignStoreRequest{StoreID: storeID})
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/assign-store", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAssignStore_MissingStoreID(t *testing.T) {
	router := storeRouter(&stubStoreService{})

	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/assign-store", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
