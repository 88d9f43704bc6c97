package exchange

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-currency-converter/domain"
	"go-currency-converter/ratestore"
)

func quote(from, to, rate string) domain.Quote {
	return domain.Quote{From: from, To: to, Rate: decimal.RequireFromString(rate)}
}

var exampleQuotes = []domain.Quote{
	quote("CAD", "GBP", "0.58"),
	quote("EUR", "JPY", "141.39"),
	quote("GBP", "EUR", "1.18"),
	quote("USD", "CAD", "1.34"),
}

func configured(t *testing.T) Service {
	t.Helper()
	s := NewService(ratestore.New(), log.NewNopLogger())
	_, err := s.UpdateConfiguration(context.Background(), exampleQuotes)
	require.NoError(t, err)
	return s
}

func TestService_Convert(t *testing.T) {
	service := configured(t)

	type args struct {
		amount string
		from   domain.Currency
		to     domain.Currency
	}
	tests := []struct {
		name    string
		args    args
		want    string
		wantErr error
	}{
		{"usd -> cad", args{"1000", "USD", "CAD"}, "1340", nil},
		{"usd -> gbp", args{"1000", "USD", "GBP"}, "777.2", nil},
		{"cad -> eur", args{"1000", "CAD", "EUR"}, "684.4", nil},
		{"usd -> eur", args{"1000", "USD", "EUR"}, "917.064", nil},
		{"lower case", args{"10", "usd", "cad"}, "13.4", nil},
		{"eur -> usd", args{"1", "EUR", "USD"}, "", domain.ErrRateNotFound},
		{"cad -> usd", args{"1000", "CAD", "USD"}, "", domain.ErrRateNotFound},
		{"eur -> cad", args{"1000", "EUR", "CAD"}, "", domain.ErrRateNotFound},
		{"usd -> usd", args{"1000", "USD", "USD"}, "", domain.ErrRateNotFound},
		{"bad code", args{"1000", "USDX", "CAD"}, "", domain.ErrInvalidCurrency},
		{"missing code", args{"1000", "", "CAD"}, "", domain.ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Convert(context.Background(), decimal.RequireFromString(tt.args.amount), tt.args.from, tt.args.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.Exchanged{}, got)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Amount), "got %v", got.Amount)
		})
	}
}

func TestService_ClearConfiguration(t *testing.T) {
	service := configured(t)

	service.ClearConfiguration(context.Background())
	service.ClearConfiguration(context.Background())

	_, err := service.Convert(context.Background(), decimal.NewFromInt(1), "USD", "CAD")
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	table, err := service.Rates(context.Background())
	require.NoError(t, err)
	assert.False(t, table.Configured())
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Rates())
}

func TestService_ConvertBeforeConfiguration(t *testing.T) {
	service := NewService(ratestore.New(), log.NewNopLogger())

	_, err := service.Convert(context.Background(), decimal.NewFromInt(1), "USD", "CAD")

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestService_UpdateConfigurationKeepsPreviousOnError(t *testing.T) {
	service := configured(t)
	before, err := service.Rates(context.Background())
	require.NoError(t, err)

	_, err = service.UpdateConfiguration(context.Background(), []domain.Quote{
		quote("USD", "CAD", "2"),
		quote("GB", "EUR", "1.18"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)

	after, err := service.Rates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)

	got, err := service.Convert(context.Background(), decimal.NewFromInt(1000), "USD", "CAD")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1340).Equal(got.Amount))

	_, err = service.UpdateConfiguration(context.Background(), []domain.Quote{quote("USD", "CAD", "-2")})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestService_UpdateConfigurationReplaces(t *testing.T) {
	service := configured(t)

	table, err := service.UpdateConfiguration(context.Background(), []domain.Quote{
		quote("eur", "usd", "1.1"),
		quote("EUR", "USD", "1.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	got, err := service.Convert(context.Background(), decimal.NewFromInt(1), "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.1").Equal(got.Rate))

	_, err = service.Convert(context.Background(), decimal.NewFromInt(1), "USD", "CAD")
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestService_IdentityMustBeConfigured(t *testing.T) {
	service := NewService(ratestore.New(), log.NewNopLogger())
	_, err := service.UpdateConfiguration(context.Background(), []domain.Quote{
		quote("USD", "USD", "1"),
		quote("USD", "CAD", "1.34"),
	})
	require.NoError(t, err)

	got, err := service.Convert(context.Background(), decimal.NewFromInt(5), "USD", "USD")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(got.Amount))

	_, err = service.Convert(context.Background(), decimal.NewFromInt(5), "CAD", "CAD")
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestService_ConcurrentConvertAndUpdate(t *testing.T) {
	service := configured(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := service.Convert(ctx, decimal.NewFromInt(1000), "USD", "GBP")
				if err != nil {
					assert.True(t, errors.Is(err, domain.ErrRateNotFound))
					continue
				}
				assert.True(t, decimal.RequireFromString("777.2").Equal(got.Amount))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			if j%5 == 0 {
				service.ClearConfiguration(ctx)
				continue
			}
			_, err := service.UpdateConfiguration(ctx, exampleQuotes)
			assert.NoError(t, err)
		}
	}()

	wg.Wait()
}
