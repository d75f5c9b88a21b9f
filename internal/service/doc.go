// Package service contains the application use cases: account management,
// boards, and task placement within board columns.
//
// Services receive store interfaces and a store.TxRunner through their
// constructors and never depend on a concrete database. Every change to
// task positions runs inside one transaction that first locks the board
// row, so concurrent moves on the same board are serialised and each
// column's positions stay a dense 0..n-1 sequence.
//
// Expected failures are returned as sentinel errors (store.ErrNotFound,
// store.ErrDuplicate, domain.ErrValidation, ErrNotOwned, ...) possibly
// wrapped in a ServiceError; callers test them with errors.Is.
package service
