package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"go-currency-converter/closure"
	"go-currency-converter/domain"
	"go-currency-converter/ratestore"
)

// Service converts amounts between currencies using a configured set of rates
type Service interface {
	// ClearConfiguration drops the active rates. Conversions fail until rates are configured again.
	ClearConfiguration(ctx context.Context)

	// UpdateConfiguration validates quotes, derives every reachable rate and makes the result
	// the active table. On error the previous table stays active.
	UpdateConfiguration(ctx context.Context, quotes []domain.Quote) (*ratestore.Table, error)

	// Convert converts amount using the direct or derived rate for from -> to.
	Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error)

	// Rates returns the active table. With no rates configured it returns an empty,
	// unversioned table rather than an error.
	Rates(ctx context.Context) (*ratestore.Table, error)
}

// service converter backed by a ratestore.Store
type service struct {
	// store holds the active table, lookups never block on updates
	store *ratestore.Store

	// update serializes UpdateConfiguration so tables are published in call order
	update sync.Mutex

	logger log.Logger
}

// NewService constructs a valid Service with no rates configured
func NewService(store *ratestore.Store, logger log.Logger) Service {
	return &service{
		store:  store,
		logger: logger,
	}
}

func (s *service) ClearConfiguration(_ context.Context) {
	s.store.Clear()
}

func (s *service) UpdateConfiguration(_ context.Context, quotes []domain.Quote) (*ratestore.Table, error) {
	direct, err := domain.ParseQuotes(quotes)
	if err != nil {
		return nil, fmt.Errorf("update configuration: %w", err)
	}

	s.update.Lock()
	defer s.update.Unlock()

	result := closure.Build(direct)
	if len(result.Duplicates) > 0 {
		level.Warn(s.logger).Log("msg", "duplicate quotes ignored, first quote kept", "pairs", fmt.Sprint(result.Duplicates))
	}
	if len(result.Unreachable) > 0 {
		level.Debug(s.logger).Log("msg", "pairs without a connecting chain", "count", len(result.Unreachable))
	}

	table := ratestore.NewTable(result.Rates, result.Direct)
	s.store.Replace(table)
	return table, nil
}

// Convert computes a conversion from one currency to another with the active rates.
// Converting a currency to itself needs an explicitly configured rate like any other pair.
func (s *service) Convert(_ context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error) {
	pair, err := domain.NewPair(string(from), string(to))
	if err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert: %w", err)
	}

	rate, err := s.store.Lookup(pair)
	if err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert: %w", err)
	}

	return domain.Exchanged{
		Rate:   rate,
		Amount: amount.Mul(rate),
	}, nil
}

func (s *service) Rates(_ context.Context) (*ratestore.Table, error) {
	table := s.store.Table()
	if table == nil {
		return &ratestore.Table{}, nil
	}
	return table, nil
}
