package domain

import "errors"

// Определяем переменные-ошибки, которые могут быть возвращены из Use Cases.
// REST-адаптер отображает их на HTTP-статусы, ядро работает только с ними.
var (
	ErrPropertyNotFound = errors.New("property not found or not available")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrContractNotFound = errors.New("contract not found")
	ErrEscrowNotFound   = errors.New("escrow account not found")

	ErrUnauthorized = errors.New("caller is not a permitted party")

	ErrSelfOfferForbidden    = errors.New("owner cannot submit an offer on own property")
	ErrOfferTooLow           = errors.New("offer amount is below the minimum threshold")
	ErrDuplicatePendingOffer = errors.New("buyer already has a live offer on this property")
	ErrOfferNotPending       = errors.New("offer is not in pending status")
	ErrOfferExpired          = errors.New("offer has expired")

	ErrInvalidState  = errors.New("operation is not valid for the current status")
	ErrInvalidAmount = errors.New("amount must be positive and within bounds")

	ErrDepositExceedsTotal = errors.New("deposit would exceed the escrow total")
	ErrInsufficientFunds   = errors.New("release exceeds unreleased deposited funds")
	ErrEscrowExists        = errors.New("escrow account already exists for this contract")

	ErrPropertyHasOpenDeals = errors.New("property has live offers or contracts")
)
