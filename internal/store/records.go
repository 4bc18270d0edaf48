package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
)

// AddInstrument validates and inserts an instrument, assigning an id when
// it has none.
func (s *Store) AddInstrument(inst model.Instrument) (model.Instrument, error) {
	code, err := fx.NormalizeCode(inst.Currency)
	if err != nil {
		return inst, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	inst.Currency = code
	switch {
	case !inst.Principal.IsPositive():
		return inst, fmt.Errorf("%w: principal must be positive", ErrInvalidRecord)
	case inst.StartDate.IsZero() || !inst.StartDate.IsValid():
		return inst, fmt.Errorf("%w: start date required", ErrInvalidRecord)
	case inst.TermMonths < 1:
		return inst, fmt.Errorf("%w: term must be at least one month", ErrInvalidRecord)
	case inst.AnnualRatePercent != nil && inst.AnnualRatePercent.IsNegative():
		return inst, fmt.Errorf("%w: rate cannot be negative", ErrInvalidRecord)
	}
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}

	var rate sql.NullString
	if inst.AnnualRatePercent != nil {
		rate = sql.NullString{String: inst.AnnualRatePercent.String(), Valid: true}
	}

	_, err = s.exec(squirrel.Insert("instruments").
		Columns("id", "label", "principal", "currency", "start_date", "term_months", "annual_rate", "created_at").
		Values(inst.ID, inst.Label, inst.Principal.String(), inst.Currency, inst.StartDate.String(), inst.TermMonths, rate, nowUTC()))
	if err != nil {
		return inst, fmt.Errorf("inserting instrument: %w", err)
	}
	return inst, nil
}

// ListInstruments returns all instruments ordered by start date.
func (s *Store) ListInstruments() ([]model.Instrument, error) {
	rows, err := s.query(squirrel.
		Select("id", "label", "principal", "currency", "start_date", "term_months", "annual_rate").
		From("instruments").
		OrderBy("start_date ASC", "id ASC"))
	if err != nil {
		return nil, fmt.Errorf("listing instruments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Instrument
	for rows.Next() {
		var inst model.Instrument
		var principal, start string
		var rate sql.NullString
		if err := rows.Scan(&inst.ID, &inst.Label, &principal, &inst.Currency, &start, &inst.TermMonths, &rate); err != nil {
			return nil, err
		}
		if inst.Principal, err = decimal.NewFromString(principal); err != nil {
			return nil, fmt.Errorf("instrument %s principal: %w", inst.ID, err)
		}
		if inst.StartDate, err = civil.ParseDate(start); err != nil {
			return nil, fmt.Errorf("instrument %s start date: %w", inst.ID, err)
		}
		if rate.Valid && rate.String != "" {
			r, err := decimal.NewFromString(rate.String)
			if err != nil {
				return nil, fmt.Errorf("instrument %s rate: %w", inst.ID, err)
			}
			inst.AnnualRatePercent = &r
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// DeleteInstrument removes an instrument by id.
func (s *Store) DeleteInstrument(id string) error {
	return s.deleteByID("instruments", id)
}

// UpsertAccount inserts an account or updates the balance of the account
// with the same name.
func (s *Store) UpsertAccount(a model.Account) (model.Account, error) {
	code, err := fx.NormalizeCode(a.Currency)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	a.Currency = code
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return a, fmt.Errorf("%w: account name required", ErrInvalidRecord)
	}
	if a.Balance.IsNegative() {
		return a, fmt.Errorf("%w: balance cannot be negative", ErrInvalidRecord)
	}

	existing, err := s.accountByName(a.Name)
	switch {
	case err == nil:
		a.ID = existing.ID
	case errors.Is(err, ErrNotFound):
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
	default:
		return a, err
	}

	_, err = s.exec(squirrel.Insert("accounts").
		Columns("id", "name", "balance", "currency", "as_of").
		Values(a.ID, a.Name, a.Balance.String(), a.Currency, a.AsOf.String()).
		Suffix("ON CONFLICT(name) DO UPDATE SET balance = excluded.balance, currency = excluded.currency, as_of = excluded.as_of"))
	if err != nil {
		return a, fmt.Errorf("saving account: %w", err)
	}
	return a, nil
}

func (s *Store) accountByName(name string) (model.Account, error) {
	accounts, err := s.listAccounts(squirrel.Eq{"name": name})
	if err != nil {
		return model.Account{}, err
	}
	if len(accounts) == 0 {
		return model.Account{}, ErrNotFound
	}
	return accounts[0], nil
}

// ListAccounts returns all accounts ordered by name.
func (s *Store) ListAccounts() ([]model.Account, error) {
	return s.listAccounts(nil)
}

func (s *Store) listAccounts(where squirrel.Sqlizer) ([]model.Account, error) {
	b := squirrel.Select("id", "name", "balance", "currency", "as_of").From("accounts").OrderBy("name ASC")
	if where != nil {
		b = b.Where(where)
	}
	rows, err := s.query(b)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		var balance, asOf string
		if err := rows.Scan(&a.ID, &a.Name, &balance, &a.Currency, &asOf); err != nil {
			return nil, err
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("account %s balance: %w", a.Name, err)
		}
		a.AsOf, _ = civil.ParseDate(asOf)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAccount removes an account by id or name.
func (s *Store) DeleteAccount(idOrName string) error {
	if a, err := s.accountByName(idOrName); err == nil {
		idOrName = a.ID
	}
	return s.deleteByID("accounts", idOrName)
}

// AddExpense validates and inserts a monthly expense.
func (s *Store) AddExpense(e model.Expense) (model.Expense, error) {
	code, err := fx.NormalizeCode(e.Currency)
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	e.Currency = code
	if !e.Monthly.IsPositive() {
		return e, fmt.Errorf("%w: monthly amount must be positive", ErrInvalidRecord)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err = s.exec(squirrel.Insert("expenses").
		Columns("id", "label", "monthly", "currency").
		Values(e.ID, e.Label, e.Monthly.String(), e.Currency))
	if err != nil {
		return e, fmt.Errorf("inserting expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns all expenses ordered by label.
func (s *Store) ListExpenses() ([]model.Expense, error) {
	rows, err := s.query(squirrel.Select("id", "label", "monthly", "currency").From("expenses").OrderBy("label ASC"))
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Expense
	for rows.Next() {
		var e model.Expense
		var monthly string
		if err := rows.Scan(&e.ID, &e.Label, &monthly, &e.Currency); err != nil {
			return nil, err
		}
		if e.Monthly, err = decimal.NewFromString(monthly); err != nil {
			return nil, fmt.Errorf("expense %s amount: %w", e.Label, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteExpense removes an expense by id.
func (s *Store) DeleteExpense(id string) error {
	return s.deleteByID("expenses", id)
}
