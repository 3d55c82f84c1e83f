package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"haul/internal/repository"
)

// maxTxAttempts bounds how often a unit of work is re-run after losing a
// compare-and-swap race.
const maxTxAttempts = 3

// runInTx runs fn in a store transaction. A repository.ErrConflict from fn
// means a conditional write lost a race; the whole unit is re-run so that fn
// re-reads the current state and reaches its own verdict.
func runInTx(ctx context.Context, store repository.Store, fn func(tx repository.Store) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := store.WithTransaction(ctx, fn)
		if !errors.Is(err, repository.ErrConflict) {
			return storeError(err)
		}
	}
	return ErrConcurrentUpdate
}

// storeError converts store outages into ErrStoreUnavailable.
func storeError(err error) error {
	if err != nil && errors.Is(err, repository.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

// notFound replaces repository.ErrNotFound with target.
func notFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}

// maxMoney is the largest value a NUMERIC(14,2) money column holds.
var maxMoney = decimal.RequireFromString("999999999999.99")

// Exponent bounds checked before any comparison, since comparing or rounding
// rescales to the smaller exponent.
const (
	minMoneyExponent = -20
	maxMoneyExponent = 11
)

// inMoneyRange reports whether d is positive and fits a money column.
func inMoneyRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if !d.IsPositive() || exp < minMoneyExponent || exp > maxMoneyExponent {
		return false
	}
	return d.LessThanOrEqual(maxMoney)
}

// validMoney reports whether d is a positive amount expressed in cents that
// fits a money column.
func validMoney(d decimal.Decimal) bool {
	if !inMoneyRange(d) {
		return false
	}
	return d.Exponent() >= -2 || d.Equal(d.Truncate(2))
}

// ResultPage is one page of a newest-first listing. NextOffset resumes the
// listing after the last returned item.
type ResultPage[T any] struct {
	Items      []T
	NextOffset int
	HasMore    bool
}

// listPage fetches one extra row to learn whether another page exists.
func listPage[T any](page repository.Page, fetch func(repository.Page) ([]T, error)) (*ResultPage[T], error) {
	p := page.Normalize()
	items, err := fetch(repository.Page{Limit: p.Limit + 1, Offset: p.Offset})
	if err != nil {
		return nil, storeError(err)
	}

	result := &ResultPage[T]{}
	if len(items) > p.Limit {
		items = items[:p.Limit]
		result.HasMore = true
	}
	if items == nil {
		items = []T{}
	}
	result.Items = items
	result.NextOffset = p.Offset + len(items)
	return result, nil
}
