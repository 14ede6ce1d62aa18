package services

import (
	"context"

	"spendwise/internal/core"
)

// AddExpense validates and normalizes the submitted fields, then inserts the
// record under the given account. Nothing is inserted when validation fails.
func (s *Service) AddExpense(ctx context.Context, accountID int64, in core.NewExpenseInput) (core.ExpenseRecord, error) {
	record, err := in.Normalize(s.now())
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	record.OwnerID = accountID

	id, err := s.repo.InsertExpense(ctx, record)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	record.ID = id

	return record, nil
}

// ListExpensesWithBalance assembles the dashboard view: the owner's expenses
// in date-descending order, their total, the monthly income, and the
// remaining balance. Reads are fresh on every call.
func (s *Service) ListExpensesWithBalance(ctx context.Context, accountID int64) (core.Overview, error) {
	expenses, err := s.repo.ExpensesByOwner(ctx, accountID)
	if err != nil {
		return core.Overview{}, err
	}

	total, err := s.repo.SumAmountByOwner(ctx, accountID)
	if err != nil {
		return core.Overview{}, err
	}

	acc, err := s.repo.AccountByID(ctx, accountID)
	if err != nil {
		return core.Overview{}, err
	}

	return core.Overview{
		Expenses:         expenses,
		Total:            total,
		MonthlyIncome:    acc.MonthlyIncome,
		RemainingBalance: core.RemainingBalance(acc.MonthlyIncome, total),
	}, nil
}

// DeleteExpense removes the record if it belongs to the account. The call
// reports success even when nothing matched.
func (s *Service) DeleteExpense(ctx context.Context, accountID, id int64) error {
	return s.repo.DeleteExpense(ctx, accountID, id)
}
