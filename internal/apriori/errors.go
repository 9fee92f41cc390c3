package apriori

import "errors"

var (
	// ErrEmptyInput indicates Encode received no transactions.
	ErrEmptyInput = errors.New("apriori: no transactions to encode")
	// ErrInvalidParameter indicates a threshold or argument outside its valid range.
	ErrInvalidParameter = errors.New("apriori: invalid parameter")
	// ErrNotFound indicates a required subset support was never computed.
	ErrNotFound = errors.New("apriori: itemset support not found")
)
