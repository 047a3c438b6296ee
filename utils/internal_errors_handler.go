package utils

import (
	"errors"
	"fmt"
)

const (
	_ = iota
	INVALID_REQUEST_DATA
	INVALID_MEMBER_ID_FORMAT
	INVALID_PIPELINE_ID_FORMAT
	INVALID_DEAL_ID_FORMAT
	INVALID_LEAD_ID_FORMAT
	CANNOT_CONNECT_TO_MONGODB
	CANNOT_FIND_MEMBERS_IN_MONGODB
	CANNOT_INSERT_MEMBER_TO_MONGODB
	CANNOT_UPDATE_MEMBER_IN_MONGODB
	CANNOT_DELETE_MEMBER_FROM_MONGODB
	CANNOT_FIND_PIPELINES_IN_MONGODB
	CANNOT_INSERT_PIPELINE_TO_MONGODB
	CANNOT_UPDATE_PIPELINE_IN_MONGODB
	CANNOT_DELETE_PIPELINE_FROM_MONGODB
	CANNOT_FIND_DEALS_IN_MONGODB
	CANNOT_INSERT_DEAL_TO_MONGODB
	CANNOT_UPDATE_DEAL_IN_MONGODB
	CANNOT_MOVE_DEAL_IN_MONGODB
	CANNOT_DELETE_DEAL_FROM_MONGODB
	CANNOT_FIND_LEADS_IN_MONGODB
	CANNOT_INSERT_LEAD_TO_MONGODB
	CANNOT_UPDATE_LEAD_IN_MONGODB
	CANNOT_DELETE_LEAD_FROM_MONGODB
	CANNOT_PROMOTE_LEAD
	CANNOT_CONNECT_TO_MYSQL
	CANNOT_IMPORT_LEGACY_LEADS
	CANNOT_FIND_RECYCLE_BIN_IN_MONGODB
	CANNOT_OPEN_BOARD_FEED
)

func SendInternalError(internalErrorCode int) string {
	return fmt.Sprintf("Ocorreu um erro interno no servidor. Por favor, tente novamente mais tarde (Cod: %d)", internalErrorCode)
}

// ValidationError is returned before any write is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError means the referenced record vanished before the mutation ran.
// Callers treat it as an abandoned no-op.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// RemoteWriteError wraps a rejected or failed write against the store.
type RemoteWriteError struct {
	Op  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

func NewRemoteWriteError(op string, err error) error {
	return &RemoteWriteError{Op: op, Err: err}
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsRemoteWriteError(err error) bool {
	var target *RemoteWriteError
	return errors.As(err, &target)
}
