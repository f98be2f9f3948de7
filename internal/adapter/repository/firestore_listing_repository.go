package repository

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"turtlecoin/internal/domain/entity"
	"turtlecoin/internal/domain/repository"
	"turtlecoin/pkg/errors"
	"turtlecoin/pkg/logger"
)

type firestoreListingRepository struct {
	client *firestore.Client
}

func NewFirestoreListingRepository(client *firestore.Client) repository.ListingRepository {
	return &firestoreListingRepository{
		client: client,
	}
}

func (r *firestoreListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == 0 {
		id, err := nextSequence(ctx, r.client, "listings")
		if err != nil {
			return errors.Internal("Failed to allocate listing id", err)
		}
		listing.ID = id
	}

	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := r.client.Collection("listings").Doc(strconv.FormatInt(listing.ID, 10)).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}
	return nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	doc, err := r.client.Collection("listings").Doc(strconv.FormatInt(id, 10)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}
	return &listing, nil
}

func (r *firestoreListingRepository) GetLatestByTurtle(ctx context.Context, turtleID int64) (*entity.Listing, error) {
	iter := r.client.Collection("listings").
		Where("turtleId", "==", turtleID).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Listing", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query listing by turtle", err)
	}

	var listing entity.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}
	return &listing, nil
}

func (r *firestoreListingRepository) List(ctx context.Context, page, size int) ([]*entity.Listing, error) {
	query := r.client.Collection("listings").
		OrderBy("createdAt", firestore.Desc).
		Offset(page * size).
		Limit(size)

	iter := query.Documents(ctx)
	var listings []*entity.Listing
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating listings: %v", err)
			return nil, errors.Internal("Failed to iterate listings", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			logger.Warn("Skipping unparsable listing document: %v", err)
			continue
		}
		listings = append(listings, &listing)
	}

	return listings, nil
}

func (r *firestoreListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now()

	_, err := r.client.Collection("listings").Doc(strconv.FormatInt(listing.ID, 10)).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	return nil
}
