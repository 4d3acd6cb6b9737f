package store

import (
	"context"
	"encoding/json"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// CartStore est le contrat de persistance des paniers.
// Clear est idempotent : vider un panier déjà vide est sans effet.
type CartStore interface {
	Get(ctx context.Context, userID string) (models.Cart, error)
	Save(ctx context.Context, userID string, cart models.Cart) error
	Clear(ctx context.Context, userID string) error
}

// RedisCartStore stocke les paniers en JSON dans Redis (30 jours) et
// publie chaque changement sur cartsync:<userID> pour la synchro websocket.
type RedisCartStore struct{}

func NewRedisCartStore() *RedisCartStore {
	return &RedisCartStore{}
}

const cartTTL = 30 * 24 * time.Hour

func cartKey(userID string) string {
	return "cart:" + userID
}

// CartSyncChannel retourne le canal pub/sub du panier d'un utilisateur
func CartSyncChannel(userID string) string {
	return "cartsync:" + userID
}

func (s *RedisCartStore) Get(ctx context.Context, userID string) (models.Cart, error) {
	data, err := database.Redis.Get(ctx, cartKey(userID)).Result()
	if err != nil || data == "" {
		return models.Cart{}, nil // panier vide
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

func (s *RedisCartStore) Save(ctx context.Context, userID string, cart models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := database.Redis.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		return err
	}
	database.Redis.Publish(ctx, CartSyncChannel(userID), "updated")
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, userID string) error {
	if err := database.Redis.Del(ctx, cartKey(userID)).Err(); err != nil {
		return err
	}
	database.Redis.Publish(ctx, CartSyncChannel(userID), "cleared")
	return nil
}
