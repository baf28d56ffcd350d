package flights

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SearchDirect(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, q, limit)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SearchOneStop(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Itinerary, error) {
	args := m.Called(ctx, q, limit)
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetItineraries(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockCache) SetItineraries(ctx context.Context, q domain.SearchQuery, itineraries []domain.Itinerary) error {
	args := m.Called(ctx, q, itineraries)
	return args.Error(0)
}

func testFlight(id int64, origin, dest string, minutes int) domain.Flight {
	return domain.Flight{
		ID: id, Year: 2015, Month: 7, DayOfMonth: 10, CarrierID: "AS", FlightNum: "24",
		OriginCity: origin, DestCity: dest, Duration: minutes, Capacity: 5, Price: decimal.NewFromInt(200),
	}
}

func TestFlightService_Search_DirectFillsAllSlots(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()
	q := domain.SearchQuery{Origin: "Seattle WA", Destination: "Boston MA", DayOfMonth: 10, MaxItineraries: 2}

	direct := []domain.Flight{testFlight(1, "Seattle WA", "Boston MA", 300), testFlight(2, "Seattle WA", "Boston MA", 310)}
	mockRepo.On("SearchDirect", ctx, q, 2).Return(direct, nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, []domain.Itinerary{domain.Direct(direct[0]), domain.Direct(direct[1])}, result)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "SearchOneStop")
}

func TestFlightService_Search_SupplementsWithOneStop(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()
	q := domain.SearchQuery{Origin: "Seattle WA", Destination: "Boston MA", DayOfMonth: 10, MaxItineraries: 3}

	direct := []domain.Flight{testFlight(1, "Seattle WA", "Boston MA", 300)}
	oneStop := []domain.Itinerary{
		domain.OneStop(testFlight(5, "Seattle WA", "Chicago IL", 200), testFlight(6, "Chicago IL", "Boston MA", 130)),
	}
	mockRepo.On("SearchDirect", ctx, q, 3).Return(direct, nil).Once()
	mockRepo.On("SearchOneStop", ctx, q, 2).Return(oneStop, nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Nil(t, result[0].Second)
	assert.Equal(t, int64(5), result[1].First.ID)
	assert.Equal(t, 330, result[1].Duration())
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Search_DirectOnlySkipsOneStop(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()
	q := domain.SearchQuery{Origin: "A", Destination: "B", DayOfMonth: 1, DirectOnly: true, MaxItineraries: 4}

	mockRepo.On("SearchDirect", ctx, q, 4).Return([]domain.Flight{}, nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Empty(t, result)
	mockRepo.AssertNotCalled(t, "SearchOneStop")
}

func TestFlightService_Search_HugeLimitSizedByResults(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()
	q := domain.SearchQuery{Origin: "Seattle WA", Destination: "Boston MA", DayOfMonth: 10, MaxItineraries: 2_000_000_000_000}

	direct := []domain.Flight{testFlight(1, "Seattle WA", "Boston MA", 300)}
	mockRepo.On("SearchDirect", ctx, q, q.MaxItineraries).Return(direct, nil).Once()
	mockRepo.On("SearchOneStop", ctx, q, q.MaxItineraries-1).Return([]domain.Itinerary{}, nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, []domain.Itinerary{domain.Direct(direct[0])}, result)
	assert.Equal(t, 1, cap(result))
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Search_InvalidQuery(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	_, err := service.Search(context.Background(), domain.SearchQuery{Origin: "A", Destination: "B", DayOfMonth: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidSearch)
	mockRepo.AssertNotCalled(t, "SearchDirect")
}

func TestFlightService_Search_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()
	q := domain.SearchQuery{Origin: "A", Destination: "B", DayOfMonth: 1, MaxItineraries: 1}

	cached := []domain.Itinerary{domain.Direct(testFlight(9, "A", "B", 60))}
	mockCache.On("GetItineraries", ctx, q).Return(cached, nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, cached, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "SearchDirect")
	mockCache.AssertNotCalled(t, "SetItineraries")
}

func TestFlightService_Search_CacheMissStoresResult(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()
	q := domain.SearchQuery{Origin: "A", Destination: "B", DayOfMonth: 1, DirectOnly: true, MaxItineraries: 1}

	direct := []domain.Flight{testFlight(9, "A", "B", 60)}
	expected := []domain.Itinerary{domain.Direct(direct[0])}
	mockCache.On("GetItineraries", ctx, q).Return(([]domain.Itinerary)(nil), errors.New("cache error")).Once()
	mockRepo.On("SearchDirect", ctx, q, 1).Return(direct, nil).Once()
	mockCache.On("SetItineraries", ctx, q, expected).Return(nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Search_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()
	q := domain.SearchQuery{Origin: "A", Destination: "B", DayOfMonth: 1, MaxItineraries: 1}

	expectedErr := errors.New("database error")
	mockCache.On("GetItineraries", ctx, q).Return(([]domain.Itinerary)(nil), nil).Once()
	mockRepo.On("SearchDirect", ctx, q, 1).Return([]domain.Flight{}, expectedErr).Once()

	result, err := service.Search(ctx, q)

	assert.Nil(t, result)
	assert.Equal(t, expectedErr, err)
	mockCache.AssertNotCalled(t, "SetItineraries")
}

func TestFlightService_GetByID_NotFound(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(999)).Return(nil, domain.ErrFlightNotFound).Once()

	result, err := service.GetByID(ctx, 999)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	mockRepo.AssertExpectations(t)
}
