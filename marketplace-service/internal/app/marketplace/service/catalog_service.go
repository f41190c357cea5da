package service

import (
	"context"
	"fmt"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/infrastructure"
	"homehero/marketplace-service/internal/app/marketplace/repository"
	"homehero/pkg/metrics"
)

// HomeServicesLimit - сколько последних услуг показывается на главной и в /stats
const HomeServicesLimit = 5

// CatalogService - услуги провайдеров и отзывы к ним
type CatalogService struct {
	serviceRepo repository.ServiceRepository
	events      eventPublisher
	ownership   ownership
}

// NewCatalogService создает сервис каталога; ownerOnly включает политику MUTATION_POLICY=owner
func NewCatalogService(
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	kafkaProducer infrastructure.MessagePublisher,
	ownerOnly bool,
) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		events:      eventPublisher{producer: kafkaProducer},
		ownership:   ownership{ownerOnly: ownerOnly, userRepo: userRepo},
	}
}

func (s *CatalogService) ListServices(ctx context.Context) ([]entity.Service, error) {
	services, err := s.serviceRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) FilterServices(ctx context.Context, priceRange entity.PriceRange) ([]entity.Service, error) {
	services, err := s.serviceRepo.GetByPriceRange(ctx, priceRange)
	if err != nil {
		return nil, fmt.Errorf("failed to filter services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) HomeServices(ctx context.Context) ([]entity.Service, error) {
	services, err := s.serviceRepo.GetRecent(ctx, HomeServicesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*entity.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return service, nil
}

// MyServices - email из запроса, если передан, должен совпадать с principal
func (s *CatalogService) MyServices(ctx context.Context, principal string, email string) ([]entity.Service, error) {
	if email != "" && email != principal {
		return nil, ErrForbidden
	}

	services, err := s.serviceRepo.GetByOwner(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get services by owner: %w", err)
	}
	return services, nil
}

// CreateService - владелец и время создания берутся с сервера
func (s *CatalogService) CreateService(ctx context.Context, principal string, req *entity.CreateServiceRequest) (*entity.InsertResult, error) {
	service := &entity.Service{
		ServiceName:    req.ServiceName,
		ImageURL:       req.ImageURL,
		Description:    req.Description,
		Price:          req.Price.Value,
		Category:       req.Category,
		Email:          principal,
		CreatedAt:      time.Now().UTC(),
		ServiceReviews: []entity.Review{},
	}

	result, err := s.serviceRepo.Create(ctx, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	metrics.ServicesCreated.Inc()
	s.events.publish(ctx, entity.EventServiceCreated, service.ID.Hex(), principal, map[string]interface{}{
		"serviceName": service.ServiceName,
		"price":       service.Price,
		"category":    service.Category,
	})

	return result, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, principal string, id string, req *entity.UpdateServiceRequest) (*entity.UpdateResult, error) {
	if err := s.ownership.check(ctx, principal, s.serviceOwner(id)); err != nil {
		return nil, err
	}

	result, err := s.serviceRepo.Update(ctx, id, req, time.Now().UTC())
	if err != nil {
		return nil, translate(err)
	}

	if result.MatchedCount > 0 {
		s.events.publish(ctx, entity.EventServiceUpdated, id, principal, nil)
	}
	return result, nil
}

func (s *CatalogService) DeleteService(ctx context.Context, principal string, id string) (*entity.DeleteResult, error) {
	if err := s.ownership.check(ctx, principal, s.serviceOwner(id)); err != nil {
		return nil, err
	}

	result, err := s.serviceRepo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	if result.DeletedCount > 0 {
		s.events.publish(ctx, entity.EventServiceDeleted, id, principal, nil)
	}
	return result, nil
}

// AddReview дописывает отзыв в конец serviceReviews; reviewerEmail = principal
func (s *CatalogService) AddReview(ctx context.Context, principal string, id string, req *entity.CreateReviewRequest) (*entity.UpdateResult, error) {
	review := entity.Review{
		User:          req.User,
		Rating:        int(req.Rating.Value),
		Comment:       req.Comment,
		CreatedAt:     time.Now().UTC(),
		ReviewerEmail: principal,
	}

	result, err := s.serviceRepo.AddReview(ctx, id, review)
	if err != nil {
		return nil, translate(err)
	}

	if result.ModifiedCount > 0 {
		metrics.ReviewsAdded.Inc()
		metrics.ReviewsRating.Observe(float64(review.Rating))
		s.events.publish(ctx, entity.EventReviewAdded, id, principal, map[string]int{"rating": review.Rating})
	}
	return result, nil
}

func (s *CatalogService) Testimonials(ctx context.Context) ([]entity.Testimonial, error) {
	testimonials, err := s.serviceRepo.GetTestimonials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get testimonials: %w", err)
	}
	return testimonials, nil
}

func (s *CatalogService) serviceOwner(id string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		service, err := s.serviceRepo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return service.Email, nil
	}
}
