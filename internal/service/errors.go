package service

import (
	"errors"
	"fmt"
)

// 订单相关错误
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderFetchFailed  = errors.New("order fetch failed")
	ErrOrderCreateFailed = errors.New("order create failed")
	ErrOrderUpdateFailed = errors.New("order update failed")
)

// 客户相关错误
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerFetchFailed = errors.New("customer fetch failed")
	ErrCustomerCodeTaken   = errors.New("customer code already in use")
	ErrCustomerWriteFailed = errors.New("customer write failed")
	ErrAddressNotFound     = errors.New("shipping address not found")
	ErrChatContactNotFound = errors.New("chat contact not found")
	ErrChatContactLinked   = errors.New("chat contact already linked to another customer")
)

// 商品相关错误
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductCodeTaken   = errors.New("product code already in use")
	ErrProductWriteFailed = errors.New("product write failed")
	ErrVariationNotFound  = errors.New("product variation not found")
)

// 生产与库存相关错误
var (
	ErrBatchNotFound     = errors.New("production batch not found")
	ErrBatchWriteFailed  = errors.New("production batch write failed")
	ErrStockInsufficient = errors.New("insufficient stock")
	ErrStockWriteFailed  = errors.New("stock write failed")
)

// 门店相关错误
var (
	ErrBranchNotFound = errors.New("branch not found")
)

// ValidationError 输入校验错误，消息直接面向调用方
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StateConflictError 生命周期状态冲突错误，消息直接面向调用方
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string {
	return e.Message
}

func newStateConflictError(format string, args ...interface{}) *StateConflictError {
	return &StateConflictError{Message: fmt.Sprintf(format, args...)}
}
