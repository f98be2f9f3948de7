package usecase

import (
	"context"

	"turtlecoin/internal/domain/entity"
	"turtlecoin/internal/domain/repository"
	"turtlecoin/pkg/errors"
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewListingUseCase(listingRepo repository.ListingRepository, userRepo repository.UserRepository) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

type EnrollListingInput struct {
	TurtleID int64
	Title    string
	Content  string
	Price    float64
	Weight   float64
	Photos   []string
	Tags     []string
}

// Enroll registers a turtle for sale. A turtle whose latest listing belongs
// to the same owner cannot be enrolled again.
func (uc *ListingUseCase) Enroll(ctx context.Context, sellerID int64, input EnrollListingInput) (*entity.Listing, error) {
	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, err
	}

	existing, err := uc.listingRepo.GetLatestByTurtle(ctx, input.TurtleID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}
	if existing != nil && existing.SellerID == sellerID {
		return nil, errors.Conflict("This turtle is already enrolled for sale")
	}

	listing := &entity.Listing{
		TurtleID: input.TurtleID,
		SellerID: sellerID,
		Title:    input.Title,
		Content:  input.Content,
		Price:    input.Price,
		Weight:   input.Weight,
		Photos:   input.Photos,
		Tags:     input.Tags,
		Progress: "sale",
	}
	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (uc *ListingUseCase) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	return uc.listingRepo.GetByID(ctx, id)
}

func (uc *ListingUseCase) List(ctx context.Context, page, size int) ([]*entity.Listing, error) {
	return uc.listingRepo.List(ctx, page, size)
}
