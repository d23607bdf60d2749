package services_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
	aws_pkg "github.com/saicherry93479/little-loopies-fulfillment/pkg/aws"
	"github.com/saicherry93479/little-loopies-fulfillment/repository"
	"github.com/saicherry93479/little-loopies-fulfillment/services"
)

func newStatusService(orderRepo *mockOrderRepo, sns *mockSNS) services.StatusService {
	logger, _ := zap.NewDevelopment()
	var snsClient aws_pkg.SNSPublisher
	if sns != nil {
		snsClient = sns
	}
	return services.NewStatusService(orderRepo, snsClient, "arn:aws:sns:ap-south-1:000000000000:orders", logger)
}

func TestUpdateStatus_Success(t *testing.T) {
	orderID := uuid.New()
	orderRepo := &mockOrderRepo{
		applyOrder: &models.Order{ID: orderID, Status: models.StatusProcessing},
	}
	sns := &mockSNS{}
	svc := newStatusService(orderRepo, sns)

	order, svcErr := svc.UpdateStatus(context.Background(), orderID, &models.UpdateStatusRequest{Status: models.StatusProcessing}, "admin-1")
	require.Nil(t, svcErr)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, models.StatusProcessing, orderRepo.appliedStatus)
	assert.Len(t, sns.published, 1)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	orderRepo := &mockOrderRepo{}
	svc := newStatusService(orderRepo, nil)

	_, svcErr := svc.UpdateStatus(context.Background(), uuid.New(), &models.UpdateStatusRequest{Status: "Teleported"}, "admin-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeValidation, svcErr.Code)
	assert.Empty(t, orderRepo.appliedStatus)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	orderRepo := &mockOrderRepo{
		applyErr: fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, models.StatusDelivered, models.StatusProcessing),
	}
	svc := newStatusService(orderRepo, nil)

	_, svcErr := svc.UpdateStatus(context.Background(), uuid.New(), &models.UpdateStatusRequest{Status: models.StatusProcessing}, "admin-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Equal(t, services.CodeInvalidTransition, svcErr.Code)
}

func TestUpdateStatus_OrderNotFound(t *testing.T) {
	orderRepo := &mockOrderRepo{applyErr: gorm.ErrRecordNotFound}
	svc := newStatusService(orderRepo, nil)

	_, svcErr := svc.UpdateStatus(context.Background(), uuid.New(), &models.UpdateStatusRequest{Status: models.StatusProcessing}, "admin-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestGetStatusHistory_Success(t *testing.T) {
	orderID := uuid.New()
	orderRepo := &mockOrderRepo{
		order: &models.Order{ID: orderID, Status: models.StatusShipped},
		history: []models.OrderStatusHistory{
			{OrderID: orderID, Status: models.StatusOrdered},
			{OrderID: orderID, Status: models.StatusProcessing},
			{OrderID: orderID, Status: models.StatusShipped},
		},
	}
	svc := newStatusService(orderRepo, nil)

	history, svcErr := svc.GetStatusHistory(context.Background(), orderID)
	require.Nil(t, svcErr)
	require.Len(t, history, 3)
	// Oldest first; the latest entry matches the order's current status.
	assert.Equal(t, models.StatusOrdered, history[0].Status)
	assert.Equal(t, orderRepo.order.Status, history[len(history)-1].Status)
}

func TestGetStatusHistory_OrderNotFound(t *testing.T) {
	orderRepo := &mockOrderRepo{findErr: gorm.ErrRecordNotFound}
	svc := newStatusService(orderRepo, nil)

	_, svcErr := svc.GetStatusHistory(context.Background(), uuid.New())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
