package domain

import "errors"

var (
	ErrTransactionNotFound  = errors.New("transaction_not_found")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
)
