package model

import "time"

// Lock is a tracked device as stored in the wide-column lock table.
type Lock struct {
	LockID                int64  `dynamodbav:"lock_id" json:"lock_id"`
	BatteryCheckTimestamp string `dynamodbav:"battery_check_timestamp" json:"battery_check_timestamp"`
}

// PageCursor is an opaque continuation token handed back by a scan backend.
type PageCursor any

type ScanRequest struct {
	Threshold time.Time
	Cursor    PageCursor
}

// LockPage is one page of a scan. A nil Next means the scan is complete.
type LockPage struct {
	Locks []Lock
	Next  PageCursor
}

// Recipient is a notification-eligible (lock, user, token) tuple.
type Recipient struct {
	LockID   int64  `db:"lock_id" json:"lock_id"`
	UserID   int64  `db:"user_id" json:"user_id"`
	FCMToken string `db:"fcm_id" json:"fcm_id"`
}
