package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSoldOut            = errors.New("no tickets available")
	ErrEventNotOnSale     = errors.New("event is not available for purchase")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrOracleUnavailable  = errors.New("payment provider unavailable")
	ErrTicketAlreadyUsed  = errors.New("ticket already used")
	ErrInvalidTicketCode  = errors.New("invalid ticket code")
)
