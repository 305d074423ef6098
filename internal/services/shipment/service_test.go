package shipment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/courier"
	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
	"github.com/vendoria/commerce-service/internal/services/shipment"
)

// MockDBPort mocks the database port
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// MockShipmentRepository mocks the shipment repository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, tx ports.DBTX, sh *models.Shipment) error {
	args := m.Called(ctx, tx, sh)
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

// MockOrderRepository mocks the order repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, tx ports.DBTX, o *models.Order) error {
	args := m.Called(ctx, tx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, db ports.DBTX, userID uuid.UUID, limit, offset int32) ([]*models.Order, error) {
	args := m.Called(ctx, db, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.OrderStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

// MockTrackingRepository mocks the tracking log repository
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

// MockSellerRepository mocks the seller repository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) Create(ctx context.Context, tx ports.DBTX, s *models.Seller) error {
	args := m.Called(ctx, tx, s)
	return args.Error(0)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Seller, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerRepository) GetByEmail(ctx context.Context, db ports.DBTX, email string) (*models.Seller, error) {
	args := m.Called(ctx, db, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerRepository) Update(ctx context.Context, tx ports.DBTX, s *models.Seller) error {
	args := m.Called(ctx, tx, s)
	return args.Error(0)
}

// MockProductRepository mocks the product repository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, tx ports.DBTX, p *models.Product) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, db ports.DBTX, categoryID *uuid.UUID, limit, offset int32) ([]*models.Product, error) {
	args := m.Called(ctx, db, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, tx ports.DBTX, p *models.Product) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, tx ports.DBTX, id uuid.UUID, delta int32) error {
	args := m.Called(ctx, tx, id, delta)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, tx ports.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockCourierGateway mocks the outbound courier port
type MockCourierGateway struct {
	mock.Mock
}

func (m *MockCourierGateway) CreateShipment(ctx context.Context, req *ports.CreateShipmentRequest) (*ports.CreateShipmentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.CreateShipmentResult), args.Error(1)
}

func (m *MockCourierGateway) CancelShipment(ctx context.Context, awb string) error {
	args := m.Called(ctx, awb)
	return args.Error(0)
}

func (m *MockCourierGateway) Track(ctx context.Context, awb string) (*ports.TrackingResult, error) {
	args := m.Called(ctx, awb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TrackingResult), args.Error(1)
}

func (m *MockCourierGateway) GenerateLabel(ctx context.Context, shipmentID string) (string, error) {
	args := m.Called(ctx, shipmentID)
	return args.String(0), args.Error(1)
}

type testMocks struct {
	shipments *MockShipmentRepository
	items     *MockOrderItemRepository
	orders    *MockOrderRepository
	tracking  *MockTrackingRepository
	sellers   *MockSellerRepository
	products  *MockProductRepository
	courier   *MockCourierGateway
}

func newTestService(t *testing.T) (*shipment.Service, *testMocks) {
	t.Helper()
	m := &testMocks{
		shipments: new(MockShipmentRepository),
		items:     new(MockOrderItemRepository),
		orders:    new(MockOrderRepository),
		tracking:  new(MockTrackingRepository),
		sellers:   new(MockSellerRepository),
		products:  new(MockProductRepository),
		courier:   new(MockCourierGateway),
	}
	svc := shipment.NewService(new(MockDBPort), m.shipments, m.items, m.orders, m.tracking, m.sellers, m.products, m.courier, zap.NewNop())
	return svc, m
}

func TestService_CancelShipment_AppliesCancelledMapping(t *testing.T) {
	svc, m := newTestService(t)

	ctx := context.Background()
	shipmentID := uuid.New()
	itemA := uuid.New()
	itemB := uuid.New()

	m.shipments.On("GetByID", ctx, mock.Anything, shipmentID).
		Return(&models.Shipment{ID: shipmentID, AWB: "AWB555", Status: "Shipped"}, nil)
	m.courier.On("CancelShipment", ctx, "AWB555").Return(nil)

	m.shipments.On("UpdateStatus", ctx, mock.Anything, shipmentID, "Cancelled").Return(nil)
	m.items.On("UpdateStatusByShipment", ctx, mock.Anything, shipmentID, models.ItemCancelled, courier.CodeCancelled).
		Return(int64(2), nil)
	m.items.On("ListByShipment", ctx, mock.Anything, shipmentID).
		Return([]*models.OrderItem{
			{ID: itemA, Status: models.ItemCancelled},
			{ID: itemB, Status: models.ItemCancelled},
		}, nil)
	m.tracking.On("Append", ctx, mock.Anything, mock.MatchedBy(func(entries []*models.TrackingEntry) bool {
		if len(entries) != 2 {
			return false
		}
		for _, e := range entries {
			if e.StatusCode != courier.CodeCancelled || e.Status != models.ItemCancelled || e.Remarks != "cancelled by seller" {
				return false
			}
		}
		return true
	})).Return(nil)

	err := svc.CancelShipment(ctx, shipmentID)

	require.NoError(t, err)
	m.shipments.AssertExpectations(t)
	m.items.AssertExpectations(t)
	m.tracking.AssertExpectations(t)
	m.courier.AssertExpectations(t)
}

func TestService_CancelShipment_CourierFailureLeavesStateUntouched(t *testing.T) {
	svc, m := newTestService(t)

	ctx := context.Background()
	shipmentID := uuid.New()

	m.shipments.On("GetByID", ctx, mock.Anything, shipmentID).
		Return(&models.Shipment{ID: shipmentID, AWB: "AWB556", Status: "Shipped"}, nil)
	m.courier.On("CancelShipment", ctx, "AWB556").Return(errors.New("courier unavailable"))

	err := svc.CancelShipment(ctx, shipmentID)

	require.Error(t, err)
	m.shipments.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.tracking.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateStatus_AppliesMappingWithTracking(t *testing.T) {
	svc, m := newTestService(t)

	ctx := context.Background()
	shipmentID := uuid.New()
	itemID := uuid.New()

	m.shipments.On("GetByID", ctx, mock.Anything, shipmentID).
		Return(&models.Shipment{ID: shipmentID, AWB: "AWB557", Status: "Out For Delivery"}, nil)
	m.shipments.On("UpdateStatus", ctx, mock.Anything, shipmentID, "Delivered").Return(nil)
	m.items.On("UpdateStatusByShipment", ctx, mock.Anything, shipmentID, models.ItemDelivered, courier.CodeDelivered).
		Return(int64(1), nil)
	m.items.On("ListByShipment", ctx, mock.Anything, shipmentID).
		Return([]*models.OrderItem{{ID: itemID, Status: models.ItemDelivered}}, nil)
	m.tracking.On("Append", ctx, mock.Anything, mock.MatchedBy(func(entries []*models.TrackingEntry) bool {
		return len(entries) == 1 &&
			entries[0].OrderItemID == itemID &&
			entries[0].StatusCode == courier.CodeDelivered &&
			entries[0].Remarks == "manual seller update"
	})).Return(nil)

	sh, err := svc.UpdateStatus(ctx, shipmentID, courier.CodeDelivered)

	require.NoError(t, err)
	assert.Equal(t, "Delivered", sh.Status)
	m.shipments.AssertExpectations(t)
	m.items.AssertExpectations(t)
	m.tracking.AssertExpectations(t)
}

func TestService_UpdateStatus_UnrecognizedCodeRejected(t *testing.T) {
	svc, m := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), 42)

	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeValidationFailed))
	m.shipments.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}