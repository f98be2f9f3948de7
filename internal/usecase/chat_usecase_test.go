package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turtlecoin/internal/adapter/repository"
	"turtlecoin/internal/domain/entity"
	"turtlecoin/internal/infrastructure/sse"
	"turtlecoin/pkg/errors"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]*entity.User), nextID: 1000}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type fakeListingRepo struct {
	nextID   int64
	listings map[int64]*entity.Listing
	latest   map[int64]*entity.Listing
}

func newFakeListingRepo(listings ...*entity.Listing) *fakeListingRepo {
	repo := &fakeListingRepo{
		nextID:   1000,
		listings: make(map[int64]*entity.Listing),
		latest:   make(map[int64]*entity.Listing),
	}
	for _, l := range listings {
		repo.listings[l.ID] = l
		repo.latest[l.TurtleID] = l
	}
	return repo
}

func (r *fakeListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == 0 {
		r.nextID++
		listing.ID = r.nextID
	}
	r.listings[listing.ID] = listing
	r.latest[listing.TurtleID] = listing
	return nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return listing, nil
}

func (r *fakeListingRepo) GetLatestByTurtle(ctx context.Context, turtleID int64) (*entity.Listing, error) {
	listing, ok := r.latest[turtleID]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return listing, nil
}

func (r *fakeListingRepo) List(ctx context.Context, page, size int) ([]*entity.Listing, error) {
	return nil, nil
}

func (r *fakeListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.listings[listing.ID] = listing
	return nil
}

func buyer() *entity.User {
	return &entity.User{ID: 7, Email: "buyer@turtle.io", Nickname: "shellseeker", ProfileImage: "img/buyer"}
}

func seller() *entity.User {
	return &entity.User{ID: 13, Email: "seller@turtle.io", Nickname: "pondkeeper", ProfileImage: "img/seller"}
}

func newChatFixture(t *testing.T, listings ...*entity.Listing) (*ChatUseCase, *fakeUserRepo, *sse.Hub) {
	t.Helper()
	users := newFakeUserRepo(buyer(), seller())
	hub := sse.NewHub()
	uc := NewChatUseCase(repository.NewMemoryChatRepository(), users, newFakeListingRepo(listings...), hub)
	return uc, users, hub
}

func TestOpenRoomCreatesAndReuses(t *testing.T) {
	uc, _, _ := newChatFixture(t)
	ctx := context.Background()

	roomID, err := uc.OpenRoom(ctx, 7, 13)
	require.NoError(t, err)
	require.NotEmpty(t, roomID)

	again, err := uc.OpenRoom(ctx, 13, 7)
	require.NoError(t, err)
	assert.Equal(t, roomID, again, "either side resolves to the same room")
}

func TestOpenRoomRejectsSelfAndUnknownUsers(t *testing.T) {
	uc, _, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := uc.OpenRoom(ctx, 7, 7)
	assert.True(t, errors.Is(err, "INVALID_PARTICIPANTS"))

	_, err = uc.OpenRoom(ctx, 7, 999)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestSendTextAndReadBack(t *testing.T) {
	uc, _, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := uc.OpenRoom(ctx, 7, 13)
	require.NoError(t, err)

	_, err = uc.SendText(ctx, 7, 13, "Is the turtle still available?")
	require.NoError(t, err)

	rooms, err := uc.Rooms(ctx, 13, 0, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].UnreadForSelf)
	assert.Equal(t, "Is the turtle still available?", rooms[0].LastText)
	assert.Equal(t, int64(7), rooms[0].OtherUserID)

	_, err = uc.SendText(ctx, 13, 7, "It is, come take a look")
	require.NoError(t, err)

	history, err := uc.History(ctx, 7, 13, 0, 20)
	require.NoError(t, err)
	require.Len(t, history, 2)

	reply, ok := history[0].(TextMessageView)
	require.True(t, ok)
	assert.Equal(t, int64(13), reply.UserID)
	assert.Equal(t, "It is, come take a look", reply.Message)
	require.NotNil(t, reply.Nickname)
	assert.Equal(t, "pondkeeper", *reply.Nickname)

	question, ok := history[1].(TextMessageView)
	require.True(t, ok)
	assert.Equal(t, int64(7), question.UserID)
}

func TestSendTextRequiresExistingRoom(t *testing.T) {
	uc, _, _ := newChatFixture(t)

	_, err := uc.SendText(context.Background(), 7, 13, "hello?")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestSendTextToRoomRejectsStrangers(t *testing.T) {
	uc, users, _ := newChatFixture(t)
	ctx := context.Background()

	roomID, err := uc.OpenRoom(ctx, 7, 13)
	require.NoError(t, err)

	require.NoError(t, users.Create(ctx, &entity.User{ID: 99, Nickname: "lurker"}))
	_, err = uc.SendTextToRoom(ctx, 99, roomID, "let me in")
	assert.True(t, errors.Is(err, "NOT_A_PARTICIPANT"))

	_, err = uc.SendTextToRoom(ctx, 7, roomID, "works for members")
	assert.NoError(t, err)
}

func TestOpenRoomFromListingDropsOneCard(t *testing.T) {
	listing := &entity.Listing{
		ID:       9,
		TurtleID: 4,
		SellerID: 13,
		Title:    "Red-eared",
		Price:    50000,
		Photos:   []string{"img/1", "img/2"},
	}
	uc, _, _ := newChatFixture(t, listing)
	ctx := context.Background()

	roomID, err := uc.OpenRoomFromListing(ctx, 7, 9)
	require.NoError(t, err)

	history, err := uc.History(ctx, 7, 13, 0, 20)
	require.NoError(t, err)
	require.Len(t, history, 1)

	card, ok := history[0].(ListingCardView)
	require.True(t, ok)
	assert.Equal(t, int64(9), card.ListingID)
	assert.Equal(t, "Red-eared", card.Title)
	assert.Equal(t, float64(50000), card.Price)
	assert.Equal(t, "img/1", card.Image, "first photo is the card thumbnail")

	rooms, err := uc.Rooms(ctx, 13, 0, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Empty(t, rooms[0].LastText, "cards do not become the room preview")
	assert.Zero(t, rooms[0].UnreadForSelf)

	again, err := uc.OpenRoomFromListing(ctx, 7, 9)
	require.NoError(t, err)
	assert.Equal(t, roomID, again)

	history, err = uc.History(ctx, 7, 13, 0, 20)
	require.NoError(t, err)
	assert.Len(t, history, 1, "re-entering the room does not duplicate the card")
}

func TestHistoryResetsUnread(t *testing.T) {
	uc, _, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := uc.OpenRoom(ctx, 7, 13)
	require.NoError(t, err)
	_, err = uc.SendText(ctx, 7, 13, "ping")
	require.NoError(t, err)

	rooms, err := uc.Rooms(ctx, 13, 0, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, 1, rooms[0].UnreadForSelf)

	_, err = uc.History(ctx, 13, 7, 0, 20)
	require.NoError(t, err)

	rooms, err = uc.Rooms(ctx, 13, 0, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Zero(t, rooms[0].UnreadForSelf, "reading history clears the reader's counter")

	rooms, err = uc.Rooms(ctx, 7, 0, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Zero(t, rooms[0].UnreadForSelf, "the sender never accrued unread")
}

func TestParallelSendsKeepHistoryOrdered(t *testing.T) {
	uc, _, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := uc.OpenRoom(ctx, 7, 13)
	require.NoError(t, err)

	const total = 100
	var wg sync.WaitGroup
	errs := make(chan error, total)
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := uc.SendText(ctx, 7, 13, fmt.Sprintf("burst %d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var all []MessageView
	for page := 0; ; page++ {
		batch, err := uc.History(ctx, 13, 7, page, 30)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	require.Len(t, all, total)

	prev := ""
	for i, view := range all {
		msg, ok := view.(TextMessageView)
		require.True(t, ok)
		if i > 0 {
			assert.LessOrEqual(t, msg.RegistTime, prev, "newest first, timestamps never increase")
		}
		prev = msg.RegistTime
	}
}

func TestSendTextNotifiesReceiver(t *testing.T) {
	uc, _, hub := newChatFixture(t)
	ctx := context.Background()

	roomID, err := uc.OpenRoom(ctx, 7, 13)
	require.NoError(t, err)

	sub := hub.Subscribe(13)
	defer hub.Close(sub)

	_, err = uc.SendText(ctx, 7, 13, "heads up")
	require.NoError(t, err)

	select {
	case event := <-sub.Events():
		assert.Equal(t, "chat", event.Name)
		var push chatPush
		require.NoError(t, json.Unmarshal(event.Data, &push))
		assert.Equal(t, roomID, push.RoomID)
		assert.Equal(t, entity.MessageTypeText, push.Kind)
		assert.Equal(t, int64(7), push.Sender)
		assert.Equal(t, "heads up", push.Text)
	default:
		t.Fatal("expected a push frame for the receiver")
	}
}

func TestDeletedAccountsRenderAsNull(t *testing.T) {
	uc, users, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := uc.OpenRoom(ctx, 7, 13)
	require.NoError(t, err)
	_, err = uc.SendText(ctx, 13, 7, "last words")
	require.NoError(t, err)

	users.delete(13)

	history, err := uc.History(ctx, 7, 13, 0, 20)
	require.NoError(t, err)
	require.Len(t, history, 1)

	msg, ok := history[0].(TextMessageView)
	require.True(t, ok)
	assert.Equal(t, int64(13), msg.UserID)
	assert.Equal(t, "last words", msg.Message)
	assert.Nil(t, msg.Nickname)
	assert.Nil(t, msg.UserProfile)

	rooms, err := uc.Rooms(ctx, 7, 0, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Nil(t, rooms[0].OtherNickname)
	assert.Nil(t, rooms[0].OtherProfileImage)
}
