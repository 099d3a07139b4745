package bank

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransferError is a common interface of transfer rejections.
// Rejected transfers leave both accounts untouched
type TransferError interface {
	error
	transferError()
}

// InvalidTransferError is returned for transfers that can never
// succeed: self-transfers and negative amounts
type InvalidTransferError struct {
	msg string
}

func newInvalidTransferError(msg string) *InvalidTransferError {
	return &InvalidTransferError{msg: msg}
}

func (e *InvalidTransferError) Error() string {
	return e.msg
}

func (e *InvalidTransferError) transferError() {}

// NotEnoughFundsError is returned when a transfer would drive
// the source balance negative
type NotEnoughFundsError struct {
	BalanceXTS   int
	RequestedXTS int
}

func newNotEnoughFundsError(balanceXTS int, requestedXTS int) *NotEnoughFundsError {
	return &NotEnoughFundsError{BalanceXTS: balanceXTS, RequestedXTS: requestedXTS}
}

func (e *NotEnoughFundsError) Error() string {
	return fmt.Sprintf("Not enough funds: %v XTS available, %v XTS requested", e.BalanceXTS, e.RequestedXTS)
}

func (e *NotEnoughFundsError) transferError() {}

// IsTransferError reports whether err is a transfer rejection
// rather than an unexpected failure
func IsTransferError(err error) bool {
	_, ok := errors.Cause(err).(TransferError)
	return ok
}
