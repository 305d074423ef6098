package reconciliation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/courier"
	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
	"github.com/vendoria/commerce-service/internal/gateway"
	"github.com/vendoria/commerce-service/internal/services/reconciliation"
)

// MockDBPort mocks the database port
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	// Execute the function with a nil transaction for testing
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// MockShipmentRepository mocks the shipment repository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, tx ports.DBTX, shipment *models.Shipment) error {
	args := m.Called(ctx, tx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Shipment, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetByAWB(ctx context.Context, db ports.DBTX, awb string) (*models.Shipment, error) {
	args := m.Called(ctx, db, awb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status string) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockShipmentRepository) UpdateDocuments(ctx context.Context, tx ports.DBTX, id uuid.UUID, invoiceURL, manifestURL, labelURL string) error {
	args := m.Called(ctx, tx, id, invoiceURL, manifestURL, labelURL)
	return args.Error(0)
}

// MockOrderItemRepository mocks the order item repository
type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) Create(ctx context.Context, tx ports.DBTX, item *models.OrderItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockOrderItemRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.OrderItem, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepository) ListByOrder(ctx context.Context, db ports.DBTX, orderID uuid.UUID) ([]*models.OrderItem, error) {
	args := m.Called(ctx, db, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepository) ListBySeller(ctx context.Context, db ports.DBTX, sellerID uuid.UUID, limit, offset int32) ([]*models.OrderItem, error) {
	args := m.Called(ctx, db, sellerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepository) ListByShipment(ctx context.Context, db ports.DBTX, shipmentID uuid.UUID) ([]*models.OrderItem, error) {
	args := m.Called(ctx, db, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepository) UpdateStatusByShipment(ctx context.Context, tx ports.DBTX, shipmentID uuid.UUID, status models.OrderItemStatus, statusCode int32) (int64, error) {
	args := m.Called(ctx, tx, shipmentID, status, statusCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderItemRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.OrderItemStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockOrderItemRepository) AssignShipment(ctx context.Context, tx ports.DBTX, id, shipmentID uuid.UUID) error {
	args := m.Called(ctx, tx, id, shipmentID)
	return args.Error(0)
}

func (m *MockOrderItemRepository) GetByRefundID(ctx context.Context, db ports.DBTX, refundID string) (*models.OrderItem, error) {
	args := m.Called(ctx, db, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepository) GetByPaymentTransactionID(ctx context.Context, db ports.DBTX, transactionID string) (*models.OrderItem, error) {
	args := m.Called(ctx, db, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepository) UpdateRefund(ctx context.Context, tx ports.DBTX, id uuid.UUID, upd models.RefundUpdate) error {
	args := m.Called(ctx, tx, id, upd)
	return args.Error(0)
}

// MockTrackingRepository mocks the tracking repository
type MockTrackingRepository struct {
	mock.Mock
}

func (m *MockTrackingRepository) Append(ctx context.Context, tx ports.DBTX, entries []*models.TrackingEntry) error {
	args := m.Called(ctx, tx, entries)
	return args.Error(0)
}

func (m *MockTrackingRepository) ListByOrderItem(ctx context.Context, db ports.DBTX, orderItemID uuid.UUID) ([]*models.TrackingEntry, error) {
	args := m.Called(ctx, db, orderItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrackingEntry), args.Error(1)
}

func newTestService(t *testing.T) (*reconciliation.Service, *MockShipmentRepository, *MockOrderItemRepository, *MockTrackingRepository) {
	t.Helper()
	mockDB := new(MockDBPort)
	mockShipments := new(MockShipmentRepository)
	mockItems := new(MockOrderItemRepository)
	mockTracking := new(MockTrackingRepository)
	svc := reconciliation.NewService(mockDB, mockShipments, mockItems, mockTracking, zap.NewNop())
	return svc, mockShipments, mockItems, mockTracking
}

func TestService_ReconcileTracking_ShippedFansOutToItems(t *testing.T) {
	svc, mockShipments, mockItems, mockTracking := newTestService(t)

	ctx := context.Background()
	shipmentID := uuid.New()
	itemA := &models.OrderItem{ID: uuid.New(), Status: models.ItemShipped}
	itemB := &models.OrderItem{ID: uuid.New(), Status: models.ItemShipped}

	mockShipments.On("GetByAWB", ctx, mock.Anything, "AWB123").
		Return(&models.Shipment{ID: shipmentID, AWB: "AWB123"}, nil)
	mockShipments.On("UpdateStatus", ctx, mock.Anything, shipmentID, "Shipped").
		Return(nil)
	mockItems.On("UpdateStatusByShipment", ctx, mock.Anything, shipmentID, models.ItemShipped, int32(6)).
		Return(int64(2), nil)
	mockItems.On("ListByShipment", ctx, mock.Anything, shipmentID).
		Return([]*models.OrderItem{itemA, itemB}, nil)
	mockTracking.On("Append", ctx, mock.Anything, mock.MatchedBy(func(entries []*models.TrackingEntry) bool {
		if len(entries) != 2 {
			return false
		}
		for _, e := range entries {
			if e.Status != models.ItemShipped || e.StatusCode != 6 || e.Remarks != "shipped" {
				return false
			}
		}
		return entries[0].OrderItemID == itemA.ID && entries[1].OrderItemID == itemB.ID
	})).Return(nil)

	result, err := svc.ReconcileTracking(ctx, &courier.TrackingUpdate{AWB: "AWB123", CurrentStatusID: 6})

	require.NoError(t, err)
	assert.Equal(t, reconciliation.OutcomeApplied, result.Outcome)
	assert.Equal(t, 2, result.ItemsUpdated)

	mockShipments.AssertExpectations(t)
	mockItems.AssertExpectations(t)
	mockTracking.AssertExpectations(t)
}

func TestService_ReconcileTracking_UnrecognizedCodeIsNoOp(t *testing.T) {
	svc, mockShipments, mockItems, mockTracking := newTestService(t)

	result, err := svc.ReconcileTracking(context.Background(), &courier.TrackingUpdate{AWB: "AWB123", CurrentStatusID: 42})

	require.NoError(t, err)
	assert.Equal(t, reconciliation.OutcomeUnrecognizedCode, result.Outcome)
	assert.Zero(t, result.ItemsUpdated)

	// Nothing should be touched for a code outside the table.
	mockShipments.AssertNotCalled(t, "GetByAWB", mock.Anything, mock.Anything, mock.Anything)
	mockItems.AssertNotCalled(t, "UpdateStatusByShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTracking.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ReconcileTracking_UnknownAWBIsNoOp(t *testing.T) {
	svc, mockShipments, mockItems, _ := newTestService(t)

	ctx := context.Background()
	mockShipments.On("GetByAWB", ctx, mock.Anything, "MISSING").
		Return((*models.Shipment)(nil), domain.ErrShipmentNotFound)

	result, err := svc.ReconcileTracking(ctx, &courier.TrackingUpdate{AWB: "MISSING", CurrentStatusID: 7})

	require.NoError(t, err)
	assert.Equal(t, reconciliation.OutcomeUnknownReference, result.Outcome)
	mockItems.AssertNotCalled(t, "UpdateStatusByShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ReconcileTracking_CancelledMapsCode5(t *testing.T) {
	svc, mockShipments, mockItems, mockTracking := newTestService(t)

	ctx := context.Background()
	shipmentID := uuid.New()
	item := &models.OrderItem{ID: uuid.New(), Status: models.ItemCancelled}

	mockShipments.On("GetByAWB", ctx, mock.Anything, "AWB900").
		Return(&models.Shipment{ID: shipmentID, AWB: "AWB900"}, nil)
	mockShipments.On("UpdateStatus", ctx, mock.Anything, shipmentID, "Cancelled").
		Return(nil)
	mockItems.On("UpdateStatusByShipment", ctx, mock.Anything, shipmentID, models.ItemCancelled, int32(5)).
		Return(int64(1), nil)
	mockItems.On("ListByShipment", ctx, mock.Anything, shipmentID).
		Return([]*models.OrderItem{item}, nil)
	mockTracking.On("Append", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ReconcileTracking(ctx, &courier.TrackingUpdate{AWB: "AWB900", CurrentStatusID: 5})

	require.NoError(t, err)
	assert.Equal(t, reconciliation.OutcomeApplied, result.Outcome)
	assert.Equal(t, 1, result.ItemsUpdated)
	mockShipments.AssertExpectations(t)
}

func TestService_ReconcileTracking_ReplayAppendsTrackingAgain(t *testing.T) {
	// Replaying the same webhook leaves shipment and item status unchanged but
	// appends a second set of tracking rows; the log has no dedup key.
	svc, mockShipments, mockItems, mockTracking := newTestService(t)

	ctx := context.Background()
	shipmentID := uuid.New()
	item := &models.OrderItem{ID: uuid.New(), Status: models.ItemDelivered}

	mockShipments.On("GetByAWB", ctx, mock.Anything, "AWB777").
		Return(&models.Shipment{ID: shipmentID, AWB: "AWB777"}, nil)
	mockShipments.On("UpdateStatus", ctx, mock.Anything, shipmentID, "Delivered").
		Return(nil)
	mockItems.On("UpdateStatusByShipment", ctx, mock.Anything, shipmentID, models.ItemDelivered, int32(7)).
		Return(int64(1), nil)
	mockItems.On("ListByShipment", ctx, mock.Anything, shipmentID).
		Return([]*models.OrderItem{item}, nil)
	mockTracking.On("Append", ctx, mock.Anything, mock.Anything).Return(nil)

	upd := &courier.TrackingUpdate{AWB: "AWB777", CurrentStatusID: 7}

	_, err := svc.ReconcileTracking(ctx, upd)
	require.NoError(t, err)
	_, err = svc.ReconcileTracking(ctx, upd)
	require.NoError(t, err)

	mockTracking.AssertNumberOfCalls(t, "Append", 2)
}

func TestService_ReconcileTracking_FanOutFailureAborts(t *testing.T) {
	svc, mockShipments, mockItems, mockTracking := newTestService(t)

	ctx := context.Background()
	shipmentID := uuid.New()

	mockShipments.On("GetByAWB", ctx, mock.Anything, "AWB321").
		Return(&models.Shipment{ID: shipmentID, AWB: "AWB321"}, nil)
	mockShipments.On("UpdateStatus", ctx, mock.Anything, shipmentID, "Out For Delivery").
		Return(nil)
	mockItems.On("UpdateStatusByShipment", ctx, mock.Anything, shipmentID, models.ItemOutForDelivery, int32(19)).
		Return(int64(0), errors.New("connection reset"))

	_, err := svc.ReconcileTracking(ctx, &courier.TrackingUpdate{AWB: "AWB321", CurrentStatusID: 19})

	require.Error(t, err)
	mockTracking.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func refundEvent(event, refundID, paymentID, status string, amount int64) *gateway.Event {
	ev := &gateway.Event{Event: event}
	ev.Payload.Refund.Entity = gateway.RefundEntity{
		ID:        refundID,
		PaymentID: paymentID,
		Status:    status,
		Amount:    amount,
		Currency:  "INR",
	}
	return ev
}

func TestService_ReconcileRefund_MatchesByRefundID(t *testing.T) {
	svc, _, mockItems, _ := newTestService(t)

	ctx := context.Background()
	itemID := uuid.New()

	mockItems.On("GetByRefundID", ctx, mock.Anything, "rfnd_001").
		Return(&models.OrderItem{ID: itemID}, nil)
	mockItems.On("UpdateRefund", ctx, mock.Anything, itemID, mock.MatchedBy(func(upd models.RefundUpdate) bool {
		return upd.RefundID == "rfnd_001" &&
			upd.RefundStatus == "processed" &&
			upd.IsRefunded &&
			upd.RefundedAmount.Equal(decimal.NewFromFloat(129.99))
	})).Return(nil)

	result, err := svc.ReconcileRefund(ctx, refundEvent("refund.processed", "rfnd_001", "pay_abc", "processed", 12999))

	require.NoError(t, err)
	assert.Equal(t, reconciliation.OutcomeApplied, result.Outcome)
	mockItems.AssertExpectations(t)
	mockItems.AssertNotCalled(t, "GetByPaymentTransactionID", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ReconcileRefund_FallsBackToTransactionID(t *testing.T) {
	svc, _, mockItems, _ := newTestService(t)

	ctx := context.Background()
	itemID := uuid.New()

	mockItems.On("GetByRefundID", ctx, mock.Anything, "rfnd_002").
		Return((*models.OrderItem)(nil), domain.ErrOrderItemNotFound)
	mockItems.On("GetByPaymentTransactionID", ctx, mock.Anything, "pay_xyz").
		Return(&models.OrderItem{ID: itemID}, nil)
	mockItems.On("UpdateRefund", ctx, mock.Anything, itemID, mock.Anything).Return(nil)

	result, err := svc.ReconcileRefund(ctx, refundEvent("refund.created", "rfnd_002", "pay_xyz", "created", 5000))

	require.NoError(t, err)
	assert.Equal(t, reconciliation.OutcomeApplied, result.Outcome)
	mockItems.AssertExpectations(t)
}

func TestService_ReconcileRefund_UnmatchedReferenceIsNoOp(t *testing.T) {
	svc, _, mockItems, _ := newTestService(t)

	ctx := context.Background()
	mockItems.On("GetByRefundID", ctx, mock.Anything, "rfnd_ghost").
		Return((*models.OrderItem)(nil), domain.ErrOrderItemNotFound)
	mockItems.On("GetByPaymentTransactionID", ctx, mock.Anything, "pay_ghost").
		Return((*models.OrderItem)(nil), domain.ErrOrderItemNotFound)

	result, err := svc.ReconcileRefund(ctx, refundEvent("refund.processed", "rfnd_ghost", "pay_ghost", "processed", 100))

	require.NoError(t, err)
	assert.Equal(t, reconciliation.OutcomeUnknownReference, result.Outcome)
	mockItems.AssertNotCalled(t, "UpdateRefund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ReconcileRefund_NonProcessedStatusIsNotRefunded(t *testing.T) {
	svc, _, mockItems, _ := newTestService(t)

	ctx := context.Background()
	itemID := uuid.New()

	mockItems.On("GetByRefundID", ctx, mock.Anything, "rfnd_003").
		Return(&models.OrderItem{ID: itemID}, nil)
	mockItems.On("UpdateRefund", ctx, mock.Anything, itemID, mock.MatchedBy(func(upd models.RefundUpdate) bool {
		return upd.RefundStatus == "failed" && !upd.IsRefunded
	})).Return(nil)

	_, err := svc.ReconcileRefund(ctx, refundEvent("refund.failed", "rfnd_003", "pay_abc", "failed", 2500))

	require.NoError(t, err)
	mockItems.AssertExpectations(t)
}
