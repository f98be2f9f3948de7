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
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == 0 {
		id, err := nextSequence(ctx, r.client, "users")
		if err != nil {
			return errors.Internal("Failed to allocate user id", err)
		}
		user.ID = id
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.client.Collection("users").Doc(strconv.FormatInt(user.ID, 10)).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(strconv.FormatInt(id, 10)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	iter := r.client.Collection("users").Where("email", "==", email).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("User", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query user by email", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	_, err := r.client.Collection("users").Doc(strconv.FormatInt(user.ID, 10)).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

// nextSequence allocates monotonically increasing numeric ids from a counter
// document, the document-store stand-in for an auto-increment column.
func nextSequence(ctx context.Context, client *firestore.Client, name string) (int64, error) {
	ref := client.Collection("counters").Doc(name)

	var next int64
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			value, err := doc.DataAt("value")
			if err != nil {
				return err
			}
			if v, ok := value.(int64); ok {
				next = v
			}
		}
		next++
		return tx.Set(ref, map[string]interface{}{"value": next})
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
