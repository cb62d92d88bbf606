package walletRepo

import (
	"context"
	"errors"

	"courtside/database"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound            = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// WalletRepository reads and updates the credit balance on user documents.
type WalletRepository interface {
	// GetBalance returns 0 for users that have no document yet.
	GetBalance(ctx context.Context, userID string) (float64, error)
	GetFCMToken(ctx context.Context, userID string) (string, error)
	// Deduct atomically subtracts amount when the balance covers it and returns the new balance.
	Deduct(ctx context.Context, userID string, amount float64) (float64, error)
	// Credit adds amount, creating the user's document if needed, and returns the new balance.
	Credit(ctx context.Context, userID string, amount float64) (float64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoWalletRepo struct {
	coll *mongo.Collection
}

func NewMongoWalletRepo() WalletRepository {
	return NewMongoWalletRepoWithDB(database.DB())
}

func NewMongoWalletRepoWithDB(db *mongo.Database) WalletRepository {
	return &mongoWalletRepo{coll: db.Collection("users")}
}
