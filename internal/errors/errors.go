// internal/errors/errors.go
package appErrors

import (
	"fmt"
	"strings"
)

// ErrCampaignNotFound is returned when no campaign row matches an id.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrDeliveryNotFound means no notification was logged for the
// (campaign, user, lock) triple a conversion was claimed against.
type ErrDeliveryNotFound struct {
	CampaignID string
	UserID     int64
	LockID     int64
}

func (e *ErrDeliveryNotFound) Error() string {
	return fmt.Sprintf("no notification for campaign %s, user %d, lock %d", e.CampaignID, e.UserID, e.LockID)
}

func NewDeliveryNotFound(campaignID string, userID, lockID int64) error {
	return &ErrDeliveryNotFound{CampaignID: campaignID, UserID: userID, LockID: lockID}
}

// ValidationError lists the request fields that were missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required parameters: " + strings.Join(e.Fields, ", ")
}

func NewValidation(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// BackendError wraps a failure of the scan store, relational store or push gateway.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func NewBackend(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}
