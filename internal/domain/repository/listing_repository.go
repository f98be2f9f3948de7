package repository

import (
	"context"

	"turtlecoin/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id int64) (*entity.Listing, error)
	// GetLatestByTurtle returns the most recent listing registered for a
	// turtle, used to reject duplicate enrollment by the same owner.
	GetLatestByTurtle(ctx context.Context, turtleID int64) (*entity.Listing, error)
	List(ctx context.Context, page, size int) ([]*entity.Listing, error)
	Update(ctx context.Context, listing *entity.Listing) error
}
