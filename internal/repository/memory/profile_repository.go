package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-fitness-be/internal/entity"
)

// ProfileRepository is an in-process cache for user profiles so the chat
// path does not hit postgres on every turn.
type ProfileRepository struct {
	cache *cache.Cache
}

func NewProfileRepository() *ProfileRepository {
	// Profiles change rarely; 15 minutes is fresh enough, purge every 5.
	c := cache.New(15*time.Minute, 5*time.Minute)
	return &ProfileRepository{
		cache: c,
	}
}

func (r *ProfileRepository) Save(user *entity.User) {
	r.cache.Set(user.Id.String(), user, cache.DefaultExpiration)
}

func (r *ProfileRepository) Get(userId string) (*entity.User, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.(*entity.User), true
	}
	return nil, false
}

func (r *ProfileRepository) Delete(userId string) {
	r.cache.Delete(userId)
}
