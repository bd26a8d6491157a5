package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deundomarinel09/easyshop-engine/internal/cart"
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

var storeLocation = domain.GeoPoint{Lat: 14.5995, Lng: 120.9842}

type mockPlacer struct {
	mu       sync.Mutex
	payloads []domain.OrderPayload
	err      error
	entered  chan struct{}
	block    chan struct{}
}

func (m *mockPlacer) PlaceOrder(_ context.Context, p domain.OrderPayload) error {
	if m.entered != nil {
		close(m.entered)
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.payloads = append(m.payloads, p)
	return nil
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Name:    "Juan dela Cruz",
		Email:   "juan@example.com",
		Phone:   "09171234567",
		Address: "123 Mango St., Brgy. Maligaya",
	}
}

func setup(t *testing.T) (*Service, *cart.Service, *mockPlacer) {
	t.Helper()
	cartSvc := cart.NewService(cart.NewMemoryStore(), zerolog.Nop())
	placer := &mockPlacer{}
	return NewService(cartSvc, placer, storeLocation, zerolog.Nop()), cartSvc, placer
}

func seedCart(t *testing.T, cartSvc *cart.Service, buyerID string) {
	t.Helper()
	require.NoError(t, cartSvc.AddItem(context.Background(), buyerID, domain.Product{
		ID:            1,
		Name:          "rice",
		Price:         decimal.NewFromInt(100),
		Stock:         10,
		Weight:        decimal.NewFromInt(3),
		UnitOfMeasure: "kg",
	}))
	require.NoError(t, cartSvc.SetQuantity(context.Background(), buyerID, 1, 2))
}

func TestSubmit_Success_ClearsCart(t *testing.T) {
	sut, cartSvc, placer := setup(t)
	ctx := context.Background()
	seedCart(t, cartSvc, "123")

	fees, err := sut.Submit(ctx, "123", validRequest())
	require.NoError(t, err)

	assert.True(t, fees.ItemsSubtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, fees.DistanceFee.IsZero(), "no delivery point selected")
	assert.True(t, fees.WeightFee.Equal(decimal.NewFromInt(10)), "6 kg total, 1 kg over the allowance")

	require.Len(t, placer.payloads, 1)
	assert.Equal(t, "123", placer.payloads[0].BuyerID)
	assert.Equal(t, domain.OrderStatusPending, placer.payloads[0].Status)

	items, err := cartSvc.Items(ctx, "123")
	require.NoError(t, err)
	assert.Empty(t, items, "cart clears only after confirmed submission")
}

func TestSubmit_BackendFailure_KeepsCart(t *testing.T) {
	sut, cartSvc, placer := setup(t)
	ctx := context.Background()
	seedCart(t, cartSvc, "123")
	placer.err = errors.New("backend down")

	_, err := sut.Submit(ctx, "123", validRequest())
	require.Error(t, err)

	items, _ := cartSvc.Items(ctx, "123")
	assert.Len(t, items, 1, "failed submission must not touch the cart")
}

func TestSubmit_EmptyCart(t *testing.T) {
	sut, _, _ := setup(t)

	_, err := sut.Submit(context.Background(), "123", validRequest())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_MissingContactInfo(t *testing.T) {
	sut, cartSvc, _ := setup(t)
	seedCart(t, cartSvc, "123")

	req := validRequest()
	req.Address = "  "
	_, err := sut.Submit(context.Background(), "123", req)
	require.ErrorIs(t, err, ErrMissingContactInfo)
}

func TestSubmit_DuplicateSubmissionRefused(t *testing.T) {
	sut, cartSvc, placer := setup(t)
	ctx := context.Background()
	seedCart(t, cartSvc, "123")
	placer.entered = make(chan struct{})
	placer.block = make(chan struct{})

	first := make(chan error, 1)
	go func() {
		_, err := sut.Submit(ctx, "123", validRequest())
		first <- err
	}()

	select {
	case <-placer.entered:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the backend")
	}

	_, err := sut.Submit(ctx, "123", validRequest())
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(placer.block)
	require.NoError(t, <-first)
}

func TestQuote_UsesFreshCartRead(t *testing.T) {
	sut, cartSvc, _ := setup(t)
	ctx := context.Background()
	seedCart(t, cartSvc, "123")

	before, err := sut.Quote(ctx, "123", nil)
	require.NoError(t, err)
	require.True(t, before.ItemsSubtotal.Equal(decimal.NewFromInt(200)))

	require.NoError(t, cartSvc.RemoveItem(ctx, "123", 1))

	after, err := sut.Quote(ctx, "123", nil)
	require.NoError(t, err)
	assert.True(t, after.ItemsSubtotal.IsZero(), "quote must reflect the removal")
}
