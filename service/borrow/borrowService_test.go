package borrow_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eminekibar/SmartLibrarySystem/model"
	bookrepo "github.com/eminekibar/SmartLibrarySystem/repository/book"
	"github.com/eminekibar/SmartLibrarySystem/service/borrow"
)

// fakeStore backs both store interfaces with maps, mirroring the SQL
// repos' contracts: sql.ErrNoRows for missing rows, guarded stock delta.
type fakeStore struct {
	mu     sync.Mutex
	books  map[int64]*model.Book
	reqs   map[int64]*model.BorrowRequest
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books: make(map[int64]*model.Book),
		reqs:  make(map[int64]*model.BorrowRequest),
	}
}

func (f *fakeStore) addBook(id int64, stock int) {
	f.books[id] = &model.Book{ID: id, Title: "Book", Author: "Author", Stock: stock}
}

func (f *fakeStore) Get(_ context.Context, id int64) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) AdjustStock(_ context.Context, id int64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok || b.Stock+delta < 0 {
		return bookrepo.ErrInsufficientStock
	}
	b.Stock += delta
	return nil
}

func (f *fakeStore) Insert(_ context.Context, req *model.BorrowRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	req.ID = f.nextID
	cp := *req
	f.reqs[req.ID] = &cp
	return req.ID, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*model.BorrowRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetDetail(ctx context.Context, id int64) (*model.RequestDetail, error) {
	r, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RequestDetail{BorrowRequest: *r, BookTitle: "Book", BookAuthor: "Author"}, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]model.RequestDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RequestDetail
	for _, r := range f.reqs {
		if r.UserID == userID {
			out = append(out, model.RequestDetail{BorrowRequest: *r})
		}
	}
	return out, nil
}

func (f *fakeStore) List(_ context.Context, status *model.Status) ([]model.RequestDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RequestDetail
	for _, r := range f.reqs {
		if status == nil || r.Status == *status {
			out = append(out, model.RequestDetail{BorrowRequest: *r})
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status model.Status, deliveryDate, returnDate *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	r.DeliveryDate = deliveryDate
	r.ReturnDate = returnDate
	return nil
}

func (f *fakeStore) DeletePending(_ context.Context, id, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok || r.UserID != userID || r.Status != model.StatusPending {
		return false, nil
	}
	delete(f.reqs, id)
	return true, nil
}

func (f *fakeStore) ActiveStatus(_ context.Context, userID, bookID int64) (*model.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.BorrowRequest
	for _, r := range f.reqs {
		if r.UserID == userID && r.BookID == bookID && r.Status != model.StatusReturned {
			if latest == nil || r.RequestDate.After(latest.RequestDate) || (r.RequestDate.Equal(latest.RequestDate) && r.ID > latest.ID) {
				latest = r
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	s := latest.Status
	return &s, nil
}

func (f *fakeStore) stock(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books[id].Stock
}

func (f *fakeStore) status(id int64) model.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[id].Status
}

func TestCreateRequest_BookNotFound(t *testing.T) {
	store := newFakeStore()
	svc := borrow.New(store, store)

	_, err := svc.CreateRequest(context.Background(), 1, 99)
	require.Error(t, err)
	require.Equal(t, borrow.ErrBookNotFound, borrow.Code(err))
}

func TestCreateRequest_OutOfStock(t *testing.T) {
	store := newFakeStore()
	store.addBook(1, 0)
	svc := borrow.New(store, store)

	_, err := svc.CreateRequest(context.Background(), 1, 1)
	require.Error(t, err)
	require.Equal(t, borrow.ErrOutOfStock, borrow.Code(err))
	require.Empty(t, store.reqs, "no request may be inserted when stock is empty")
}

func TestCreateRequest_Success(t *testing.T) {
	store := newFakeStore()
	store.addBook(1, 3)
	svc := borrow.New(store, store)

	req, err := svc.CreateRequest(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, req.Status)
	require.WithinDuration(t, time.Now(), req.RequestDate, time.Second)
	require.Nil(t, req.DeliveryDate)
	require.Nil(t, req.ReturnDate)
	require.Equal(t, 3, store.stock(1), "creation must not touch stock")
}

func TestAdvanceStatus_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addBook(1, 2)
	svc := borrow.New(store, store)

	req, err := svc.CreateRequest(ctx, 7, 1)
	require.NoError(t, err)

	got, err := svc.AdvanceStatus(ctx, req.ID, "Approved")
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, got.Status)
	require.Nil(t, got.DeliveryDate)
	require.Equal(t, 2, store.stock(1), "approval has no stock side effect")

	got, err = svc.AdvanceStatus(ctx, req.ID, "Delivered")
	require.NoError(t, err)
	require.Equal(t, model.StatusDelivered, got.Status)
	require.NotNil(t, got.DeliveryDate)
	require.WithinDuration(t, time.Now(), *got.DeliveryDate, time.Second)
	require.Nil(t, got.ReturnDate)
	require.Equal(t, 1, store.stock(1))

	got, err = svc.AdvanceStatus(ctx, req.ID, "Returned")
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, got.Status)
	require.NotNil(t, got.DeliveryDate)
	require.NotNil(t, got.ReturnDate)
	require.WithinDuration(t, time.Now(), *got.ReturnDate, time.Second)
	require.Equal(t, 2, store.stock(1))
}

func TestAdvanceStatus_RejectsEverythingButSuccessor(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addBook(1, 2)
	svc := borrow.New(store, store)

	req, err := svc.CreateRequest(ctx, 7, 1)
	require.NoError(t, err)

	for _, target := range []string{
		"Pending",   // staying in place
		"Delivered", // skipping a stage
		"Returned",  // skipping two stages
		"Rejected",  // unrecognized token
		"pending",   // tokens are not normalized
	} {
		_, err := svc.AdvanceStatus(ctx, req.ID, target)
		require.Error(t, err, "target %q", target)
		require.Equal(t, borrow.ErrInvalidTransition, borrow.Code(err), "target %q", target)
		require.Equal(t, model.StatusPending, store.status(req.ID), "stored status must not move for target %q", target)
	}

	_, err = svc.AdvanceStatus(ctx, req.ID, "Approved")
	require.NoError(t, err)

	// Backward is just as illegal as skipping.
	_, err = svc.AdvanceStatus(ctx, req.ID, "Pending")
	require.Equal(t, borrow.ErrInvalidTransition, borrow.Code(err))
	require.Equal(t, model.StatusApproved, store.status(req.ID))
	require.Equal(t, 2, store.stock(1))
}

func TestAdvanceStatus_DeliveredTwice(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addBook(1, 2)
	svc := borrow.New(store, store)

	req, err := svc.CreateRequest(ctx, 7, 1)
	require.NoError(t, err)
	_, err = svc.AdvanceStatus(ctx, req.ID, "Approved")
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(ctx, req.ID, "Delivered")
	require.NoError(t, err)
	require.Equal(t, 1, store.stock(1))

	_, err = svc.AdvanceStatus(ctx, req.ID, "Delivered")
	require.Equal(t, borrow.ErrInvalidTransition, borrow.Code(err))
	require.Equal(t, 1, store.stock(1), "stock must only be decremented once")
}

func TestAdvanceStatus_RequestNotFound(t *testing.T) {
	store := newFakeStore()
	svc := borrow.New(store, store)

	_, err := svc.AdvanceStatus(context.Background(), 42, "Approved")
	require.Equal(t, borrow.ErrRequestNotFound, borrow.Code(err))
}

// Two requests contend for one copy: the stock check at creation does not
// allocate, so the second delivery is the one that fails.
func TestAdvanceStatus_StockContention(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addBook(1, 1)
	svc := borrow.New(store, store)

	r1, err := svc.CreateRequest(ctx, 1, 1)
	require.NoError(t, err)
	r2, err := svc.CreateRequest(ctx, 2, 1)
	require.NoError(t, err, "creation has no stock allocation")

	_, err = svc.AdvanceStatus(ctx, r1.ID, "Approved")
	require.NoError(t, err)
	_, err = svc.AdvanceStatus(ctx, r1.ID, "Delivered")
	require.NoError(t, err)
	require.Equal(t, 0, store.stock(1))

	_, err = svc.AdvanceStatus(ctx, r2.ID, "Approved")
	require.NoError(t, err, "approval has no stock check")

	_, err = svc.AdvanceStatus(ctx, r2.ID, "Delivered")
	require.Equal(t, borrow.ErrOutOfStock, borrow.Code(err))
	require.Equal(t, 0, store.stock(1))
	require.Equal(t, model.StatusApproved, store.status(r2.ID))

	// Returning the first copy frees it again, even at zero stock.
	got, err := svc.AdvanceStatus(ctx, r1.ID, "Returned")
	require.NoError(t, err)
	require.NotNil(t, got.ReturnDate)
	require.Equal(t, 1, store.stock(1))
}

func TestAdvanceStatus_ConcurrentAdvanceAppliesOnce(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addBook(1, 5)
	svc := borrow.New(store, store)

	req, err := svc.CreateRequest(ctx, 1, 1)
	require.NoError(t, err)
	_, err = svc.AdvanceStatus(ctx, req.ID, "Approved")
	require.NoError(t, err)

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdvanceStatus(ctx, req.ID, "Delivered")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount int
	for err := range errs {
		if err == nil {
			okCount++
		} else {
			require.Equal(t, borrow.ErrInvalidTransition, borrow.Code(err))
		}
	}
	require.Equal(t, 1, okCount, "exactly one caller may deliver")
	require.Equal(t, 4, store.stock(1), "stock decremented exactly once")
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addBook(1, 1)
	svc := borrow.New(store, store)

	req, err := svc.CreateRequest(ctx, 7, 1)
	require.NoError(t, err)

	require.Equal(t, borrow.ErrNotOwner, borrow.Code(svc.Withdraw(ctx, req.ID, 8)))
	require.NoError(t, svc.Withdraw(ctx, req.ID, 7))
	require.Equal(t, borrow.ErrRequestNotFound, borrow.Code(svc.Withdraw(ctx, req.ID, 7)))

	// Once a request leaves Pending it can no longer be withdrawn.
	req2, err := svc.CreateRequest(ctx, 7, 1)
	require.NoError(t, err)
	_, err = svc.AdvanceStatus(ctx, req2.ID, "Approved")
	require.NoError(t, err)
	require.Equal(t, borrow.ErrInvalidTransition, borrow.Code(svc.Withdraw(ctx, req2.ID, 7)))
}

func TestActiveRequestStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addBook(1, 2)
	svc := borrow.New(store, store)

	got, err := svc.ActiveRequestStatus(ctx, 7, 1)
	require.NoError(t, err)
	require.Nil(t, got)

	req, err := svc.CreateRequest(ctx, 7, 1)
	require.NoError(t, err)

	got, err = svc.ActiveRequestStatus(ctx, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, model.StatusPending, *got)

	// Duplicates are allowed at creation; the helper is informational.
	_, err = svc.CreateRequest(ctx, 7, 1)
	require.NoError(t, err)

	for _, target := range []string{"Approved", "Delivered", "Returned"} {
		_, err = svc.AdvanceStatus(ctx, req.ID, target)
		require.NoError(t, err)
	}
}
