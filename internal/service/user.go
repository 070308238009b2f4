package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
)

// UserService maps usernames vouched for by the authentication proxy to users.
type UserService struct {
	users repo.UserRepo
}

// NewUserService constructs a UserService backed by the provided UserRepo.
func NewUserService(users repo.UserRepo) *UserService {
	return &UserService{users: users}
}

// Resolve returns the user called username, creating it on first sight.
// Returns domain.ErrUnauthenticated for a blank username.
func (s *UserService) Resolve(ctx context.Context, username string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("service.UserService.Resolve: %w", domain.ErrUnauthenticated)
	}
	u, err := s.users.GetOrCreate(ctx, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Resolve: %w", err)
	}
	return u, nil
}
