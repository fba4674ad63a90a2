package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/snaytau/shop-api/internal/dto"
	"github.com/snaytau/shop-api/internal/model"
	"github.com/snaytau/shop-api/internal/repository"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already exists")
	ErrAdminImmutable = errors.New("cannot delete admin users")
)

const recentLimit = 5

type AdminService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

func NewAdminService(userRepo repository.UserRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository) *AdminService {
	return &AdminService{userRepo: userRepo, productRepo: productRepo, orderRepo: orderRepo}
}

// Stats aggregates the dashboard numbers: entity counts, all-time revenue,
// and per-day revenue for the trailing week.
func (s *AdminService) Stats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	orders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	revenue, err := s.orderRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	daily, err := s.orderRepo.DailyRevenue(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}

	points := make([]dto.DailyRevenuePoint, 0, len(daily))
	for _, d := range daily {
		points = append(points, dto.DailyRevenuePoint{Date: d.Date, Amount: d.Amount})
	}

	return &dto.AdminStatsResponse{
		TotalUsers:    users,
		TotalOrders:   orders,
		TotalRevenue:  revenue,
		TotalProducts: products,
		DailyRevenue:  points,
	}, nil
}

func (s *AdminService) RecentOrders(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.ListRecent(ctx, recentLimit)
}

func (s *AdminService) RecentUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListRecent(ctx, recentLimit)
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

func (s *AdminService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.AdminUpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Email != user.Email {
		taken, err := s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken != nil {
			return nil, ErrEmailTaken
		}
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Role == "admin" {
		return ErrAdminImmutable
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
