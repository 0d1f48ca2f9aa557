package public

import (
	"context"
	"encoding/json"
	"github.com/langowen/converter/internal/entities"
	"github.com/langowen/converter/pkg/converter"
	"github.com/langowen/converter/pkg/gateway"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Currencies(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockService) IsValid(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockService) Convert(ctx context.Context, base, quote string, amount float64) (*entities.Conversion, error) {
	args := m.Called(ctx, base, quote, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Conversion), args.Error(1)
}

func (m *mockService) History(ctx context.Context, limit int) ([]entities.Conversion, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Conversion), args.Error(1)
}

func serve(t *testing.T, svc Service, target string) *httptest.ResponseRecorder {
	t.Helper()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	rec := httptest.NewRecorder()
	NewRouter(svc, metrics).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestGetCurrencies(t *testing.T) {
	svc := &mockService{}
	svc.On("Currencies", mock.Anything).Return([]string{"AED", "USD", "EUR"}, nil)

	rec := serve(t, svc, "/currencies")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body currenciesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"AED", "USD", "EUR"}, body.Currencies)
}

func TestGetCurrencyValidity(t *testing.T) {
	svc := &mockService{}
	svc.On("IsValid", mock.Anything, "USD").Return(true, nil)
	svc.On("IsValid", mock.Anything, "XXX").Return(false, nil)

	rec := serve(t, svc, "/currencies/USD")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"USD","valid":true}`, rec.Body.String())

	rec = serve(t, svc, "/currencies/XXX")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"XXX","valid":false}`, rec.Body.String())
}

func TestConvert(t *testing.T) {
	svc := &mockService{}
	conversion := entities.NewConversion("USD", "EUR", 100, 0.9, 90, time.Time{})
	svc.On("Convert", mock.Anything, "USD", "EUR", 100.0).Return(conversion, nil)

	rec := serve(t, svc, "/convert?base=USD&quote=EUR&amount=100")
	require.Equal(t, http.StatusOK, rec.Code)

	var body entities.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, conversion.ID, body.ID)
	assert.InDelta(t, 90.0, body.Result, 1e-12)
}

func TestConvert_BadQuery(t *testing.T) {
	svc := &mockService{}

	for _, target := range []string{
		"/convert?base=USD&quote=EUR",
		"/convert?quote=EUR&amount=1",
		"/convert?base=USD&quote=EUR&amount=ten",
	} {
		rec := serve(t, svc, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConvert_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid amount", err: &converter.InvalidAmountError{Amount: -1}, want: http.StatusBadRequest},
		{name: "invalid currency", err: &converter.InvalidCurrencyError{Code: "XXX"}, want: http.StatusBadRequest},
		{name: "unauthorized", err: &converter.FetchError{StatusCode: 401, Category: converter.CategoryUnauthorized}, want: http.StatusBadGateway},
		{name: "missing rate", err: &converter.MissingRateError{Base: "GBP", Quote: "JPY"}, want: http.StatusBadGateway},
		{name: "malformed", err: &converter.MalformedResponseError{Err: errors.New("bad")}, want: http.StatusBadGateway},
		{name: "timeout", err: &gateway.NetworkError{Op: "open", Err: context.DeadlineExceeded}, want: http.StatusGatewayTimeout},
		{name: "network", err: &gateway.NetworkError{Op: "open", Err: errors.New("refused")}, want: http.StatusBadGateway},
		{name: "internal", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Convert", mock.Anything, "USD", "EUR", 1.0).Return(nil, errors.Wrap(tt.err, "service.Convert"))

			rec := serve(t, svc, "/convert?base=USD&quote=EUR&amount=1")

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	svc := &mockService{}
	svc.On("Currencies", mock.Anything).Return(nil, errors.New("password=hunter2"))

	rec := serve(t, svc, "/currencies")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "hunter2"))
}

func TestGetConversions(t *testing.T) {
	svc := &mockService{}
	svc.On("History", mock.Anything, 0).Return(nil, nil)
	svc.On("History", mock.Anything, 5).Return([]entities.Conversion{{Base: "USD", Quote: "EUR"}}, nil)
	svc.On("History", mock.Anything, 500).Return(nil, errors.Wrap(entities.ErrInvalidLimit, "service.History"))

	rec := serve(t, svc, "/conversions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"conversions":[]}`, rec.Body.String())

	rec = serve(t, svc, "/conversions?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var body conversionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Conversions, 1)
	assert.Equal(t, "USD", body.Conversions[0].Base)

	rec = serve(t, svc, "/conversions?limit=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, svc, "/conversions?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	rec := serve(t, &mockService{}, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}
