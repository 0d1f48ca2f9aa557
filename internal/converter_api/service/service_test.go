package service

import (
	"context"
	"github.com/google/uuid"
	"github.com/langowen/converter/internal/converter_api/metrics"
	"github.com/langowen/converter/internal/entities"
	"github.com/langowen/converter/pkg/converter"
	"github.com/langowen/converter/pkg/gateway"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type mockConverter struct {
	mock.Mock
}

func (m *mockConverter) SupportedCurrencyCodes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockConverter) IsCurrencyValid(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockConverter) Exchange(ctx context.Context, base, quote string, amount float64) (*converter.Result, error) {
	args := m.Called(ctx, base, quote, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*converter.Result), args.Error(1)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) SaveConversion(ctx context.Context, conversion *entities.Conversion) error {
	return m.Called(ctx, conversion).Error(0)
}

func (m *mockStorage) ListConversions(ctx context.Context, limit int) ([]entities.Conversion, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Conversion), args.Error(1)
}

type mockRedis struct {
	mock.Mock
}

func (m *mockRedis) PublishConversion(ctx context.Context, conversion *entities.Conversion) error {
	return m.Called(ctx, conversion).Error(0)
}

type fixture struct {
	svc       *Service
	converter *mockConverter
	storage   *mockStorage
	redis     *mockRedis
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		converter: &mockConverter{},
		storage:   &mockStorage{},
		redis:     &mockRedis{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}

	svc, err := NewService(f.converter, f.storage, f.redis, f.metrics)
	require.NoError(t, err)
	f.svc = svc

	return f
}

func TestNewService_NilDependency(t *testing.T) {
	_, err := NewService(nil, &mockStorage{}, &mockRedis{}, metrics.New(prometheus.NewRegistry()))
	assert.Error(t, err)
}

func TestCurrencies(t *testing.T) {
	f := newFixture(t)
	f.converter.On("SupportedCurrencyCodes", mock.Anything).Return([]string{"AED", "USD"}, nil)

	codes, err := f.svc.Currencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AED", "USD"}, codes)
}

func TestCurrencies_CountsFailure(t *testing.T) {
	f := newFixture(t)
	fetchErr := &converter.FetchError{Base: "AED", StatusCode: 401, Category: converter.CategoryUnauthorized}
	f.converter.On("SupportedCurrencyCodes", mock.Anything).Return(nil, fetchErr)

	_, err := f.svc.Currencies(context.Background())

	var target *converter.FetchError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ConversionErrorsTotal.WithLabelValues("currencies", "fetch_unauthorized")))
}

func TestIsValid(t *testing.T) {
	f := newFixture(t)
	f.converter.On("IsCurrencyValid", mock.Anything, "USD").Return(true, nil)
	f.converter.On("IsCurrencyValid", mock.Anything, "XXX").Return(false, nil)

	ok, err := f.svc.IsValid(context.Background(), "USD")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsValid(context.Background(), "XXX")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConvert_JournalsAndPublishes(t *testing.T) {
	f := newFixture(t)
	updated := time.Unix(1585267200, 0).UTC()
	f.converter.On("Exchange", mock.Anything, "USD", "EUR", 100.0).Return(&converter.Result{
		Base: "USD", Quote: "EUR", Amount: 100, Rate: 0.9, Value: 90, RatesUpdatedAt: updated,
	}, nil)

	matches := mock.MatchedBy(func(c *entities.Conversion) bool {
		return c.Base == "USD" && c.Quote == "EUR" && c.Result == 90
	})
	f.storage.On("SaveConversion", mock.Anything, matches).Return(nil).Once()
	f.redis.On("PublishConversion", mock.Anything, matches).Return(nil).Once()

	conv, err := f.svc.Convert(context.Background(), "USD", "EUR", 100)
	require.NoError(t, err)

	assert.InDelta(t, 90.0, conv.Result, 1e-12)
	assert.InDelta(t, 0.9, conv.Rate, 1e-12)
	assert.Equal(t, updated, conv.RatesUpdatedAt)
	assert.NotEqual(t, uuid.Nil, conv.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ConversionsTotal.WithLabelValues("USD", "EUR")))

	f.storage.AssertExpectations(t)
	f.redis.AssertExpectations(t)
}

func TestConvert_SideEffectFailuresDoNotFail(t *testing.T) {
	f := newFixture(t)
	f.converter.On("Exchange", mock.Anything, "USD", "EUR", 1.0).Return(&converter.Result{
		Base: "USD", Quote: "EUR", Amount: 1, Rate: 0.9, Value: 0.9,
	}, nil)
	f.storage.On("SaveConversion", mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.redis.On("PublishConversion", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	conv, err := f.svc.Convert(context.Background(), "USD", "EUR", 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, conv.Result, 1e-12)
}

func TestConvert_ErrorSkipsSideEffects(t *testing.T) {
	f := newFixture(t)
	f.converter.On("Exchange", mock.Anything, "XXX", "USD", 100.0).
		Return(nil, &converter.InvalidCurrencyError{Code: "XXX"})

	_, err := f.svc.Convert(context.Background(), "XXX", "USD", 100)

	var target *converter.InvalidCurrencyError
	require.True(t, errors.As(err, &target))
	f.storage.AssertNotCalled(t, "SaveConversion", mock.Anything, mock.Anything)
	f.redis.AssertNotCalled(t, "PublishConversion", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ConversionErrorsTotal.WithLabelValues("convert", "invalid_currency")))
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	want := []entities.Conversion{{Base: "USD", Quote: "EUR"}}
	f.storage.On("ListConversions", mock.Anything, DefaultHistoryLimit).Return(want, nil)
	f.storage.On("ListConversions", mock.Anything, 5).Return(want, nil)

	got, err := f.svc.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = f.svc.History(context.Background(), 5)
	require.NoError(t, err)

	for _, limit := range []int{-1, MaxHistoryLimit + 1} {
		_, err = f.svc.History(context.Background(), limit)
		assert.ErrorIs(t, err, entities.ErrInvalidLimit)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: &converter.InvalidAmountError{Amount: -1}, want: "invalid_amount"},
		{err: errors.Wrap(&converter.InvalidCurrencyError{Code: "X"}, "op"), want: "invalid_currency"},
		{err: &converter.MissingRateError{Base: "USD", Quote: "JPY"}, want: "missing_rate"},
		{err: &converter.FetchError{Category: converter.CategoryNotFound}, want: "fetch_not-found"},
		{err: &converter.MalformedResponseError{Err: errors.New("bad")}, want: "malformed_response"},
		{err: &gateway.URLError{Raw: "x", Err: gateway.ErrMissingHost}, want: "invalid_url"},
		{err: &gateway.NetworkError{Op: "open", Err: context.DeadlineExceeded}, want: "network_timeout"},
		{err: &gateway.NetworkError{Op: "open", Err: errors.New("refused")}, want: "network"},
		{err: errors.New("boom"), want: "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}
