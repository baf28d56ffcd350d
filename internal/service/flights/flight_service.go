package flights

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type FlightUseCase interface {
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

// SearchCache stores search results. Flights never change, so a cached
// result stays valid until it expires. A miss is reported as nil, nil.
type SearchCache interface {
	GetItineraries(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error)
	SetItineraries(ctx context.Context, q domain.SearchQuery, itineraries []domain.Itinerary) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache SearchCache
}

func NewFlightService(repo repository.FlightRepository, cache SearchCache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

// Search returns up to q.MaxItineraries itineraries: direct flights first,
// then, unless q.DirectOnly, one-stop connections filling the remaining slots.
// Searches run outside a transaction since they write nothing.
func (s *FlightService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetItineraries(ctx, q)
		if err != nil {
			logger.Warn(ctx, "search cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	direct, err := s.repo.SearchDirect(ctx, q, q.MaxItineraries)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Itinerary, 0, len(direct))
	for _, f := range direct {
		result = append(result, domain.Direct(f))
	}

	if !q.DirectOnly && len(result) < q.MaxItineraries {
		oneStop, err := s.repo.SearchOneStop(ctx, q, q.MaxItineraries-len(result))
		if err != nil {
			return nil, err
		}
		result = append(result, oneStop...)
	}

	if s.cache != nil {
		if err := s.cache.SetItineraries(ctx, q, result); err != nil {
			logger.Warn(ctx, "search cache write failed", "error", err)
		}
	}
	return result, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

var _ FlightUseCase = (*FlightService)(nil)
