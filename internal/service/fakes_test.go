package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/thumbsmith/thumbsmith/internal/hf"
	"github.com/thumbsmith/thumbsmith/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserStore is an in-memory UserStore with the same reservation
// semantics as the SQL implementation: the quota check and increment
// happen under one lock.
type fakeUserStore struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) add(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u.ID = f.seq
	f.users[u.ID] = &u
	stored := u
	return &stored
}

func (f *fakeUserStore) get(id int64) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.users[id]
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.add(*user), nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) ReserveGeneration(ctx context.Context, userID int64, freeLimit int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	if u.IsPremium || u.GenerationCount < freeLimit {
		u.GenerationCount++
		return true, nil
	}
	return false, nil
}

func (f *fakeUserStore) ReleaseGeneration(ctx context.Context, userID int64) error {
	return f.AdjustGenerationCount(ctx, userID, -1)
}

func (f *fakeUserStore) AdjustGenerationCount(ctx context.Context, userID int64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.GenerationCount += delta
		if u.GenerationCount < 0 {
			u.GenerationCount = 0
		}
	}
	return nil
}

func (f *fakeUserStore) SetPremium(ctx context.Context, userID int64, premium bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.IsPremium = premium
	}
	return nil
}

func (f *fakeUserStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f *fakeUserStore) CountPremium(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.users {
		if u.IsPremium {
			n++
		}
	}
	return n, nil
}

type fakeThumbnailStore struct {
	mu     sync.Mutex
	seq    int64
	thumbs map[int64]*models.Thumbnail
}

func newFakeThumbnailStore() *fakeThumbnailStore {
	return &fakeThumbnailStore{thumbs: make(map[int64]*models.Thumbnail)}
}

func (f *fakeThumbnailStore) Create(ctx context.Context, t *models.Thumbnail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.ID = f.seq
	stored := *t
	f.thumbs[t.ID] = &stored
	return nil
}

func (f *fakeThumbnailStore) FindByID(ctx context.Context, id int64) (*models.Thumbnail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.thumbs[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeThumbnailStore) FindByIDs(ctx context.Context, ids []int64) ([]models.Thumbnail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Thumbnail
	for _, id := range ids {
		if t, ok := f.thumbs[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeThumbnailStore) ListByUser(ctx context.Context, userID int64) ([]models.Thumbnail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Thumbnail
	for _, t := range f.thumbs {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeThumbnailStore) ListAll(ctx context.Context, limit int) ([]models.ThumbnailWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ThumbnailWithOwner
	for _, t := range f.thumbs {
		if len(out) >= limit {
			break
		}
		out = append(out, models.ThumbnailWithOwner{Thumbnail: *t})
	}
	return out, nil
}

func (f *fakeThumbnailStore) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.thumbs[id]; !ok {
		return false, nil
	}
	delete(f.thumbs, id)
	return true, nil
}

func (f *fakeThumbnailStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.thumbs), nil
}

type fakePaymentStore struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{orders: make(map[string]*models.Payment)}
}

func (f *fakePaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	payment.ID = f.seq
	stored := *payment
	f.orders[payment.OrderID] = &stored
	return nil
}

func (f *fakePaymentStore) Confirm(ctx context.Context, orderID string, userID int64, paymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.orders[orderID]
	if !ok || p.UserID != userID || p.Status != models.PaymentStatusPending {
		return false, nil
	}
	p.PaymentID = paymentID
	p.Status = models.PaymentStatusConfirmed
	return true, nil
}

func (f *fakePaymentStore) FindByOrder(ctx context.Context, orderID string, userID int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.orders[orderID]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentStore) ListAll(ctx context.Context) ([]models.PaymentWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentWithOwner
	for _, p := range f.orders {
		out = append(out, models.PaymentWithOwner{Payment: *p})
	}
	return out, nil
}

func (f *fakePaymentStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders), nil
}

type fakeEnhancer struct {
	mu     sync.Mutex
	result string
	err    error
	calls  int
}

func (f *fakeEnhancer) Enhance(ctx context.Context, prompt, style string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.result != "" {
		return f.result, nil
	}
	return prompt, nil
}

type fakeImageGenerator struct {
	mu         sync.Mutex
	err        error
	calls      int
	lastPrompt string
	lastOpts   hf.GenerateOptions
}

func (f *fakeImageGenerator) Generate(ctx context.Context, prompt string, opts hf.GenerateOptions) (*hf.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastPrompt = prompt
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 1024
	}
	if height == 0 {
		height = 1024
	}
	return &hf.Image{Data: []byte("png-bytes"), Size: fmt.Sprintf("%dx%d", width, height)}, nil
}

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// fakeNotifier records deliveries; callers fire it on a goroutine, so
// access is lock-guarded.
type fakeNotifier struct {
	mu      sync.Mutex
	ready   int
	premium int
}

func (f *fakeNotifier) SendThumbnailReady(to, name, prompt, imageURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready++
}

func (f *fakeNotifier) SendPremiumActivated(to, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.premium++
}
