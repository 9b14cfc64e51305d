package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// UserRepository serves the user collection. A trainer session lists its
// managed clients (GET /trainer/clients); any other session lists the
// visible users (GET /users).
type UserRepository struct {
	*Collection[domain.User]
}

// NewUserRepository wires the user collection for the given session role.
func NewUserRepository(apiClient *api.Client, role domain.Role, store cache.Store[domain.User], network Reachability, logger *zap.Logger) *UserRepository {
	list := apiClient.ListUsers
	if role == domain.RoleTrainer {
		list = apiClient.ListTrainerClients
	}
	return &UserRepository{
		Collection: NewCollection(domain.KindUser, store, Remote[domain.User]{
			List:   list,
			Put:    apiClient.PutUser,
			Delete: apiClient.DeleteUser,
		}, network, logger),
	}
}

// Clients returns the cached-or-fresh users holding the client role.
func (r *UserRepository) Clients(ctx context.Context) ([]domain.User, error) {
	return r.FetchAll(ctx, func(u domain.User) bool { return u.IsClient() })
}

// UpdateProfile saves a profile edit locally and queues it for upload.
func (r *UserRepository) UpdateProfile(ctx context.Context, user domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.Save(ctx, user)
}
