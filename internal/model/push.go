package model

type AndroidHints struct {
	Priority string
	Icon     string
	Color    string
}

type APNSHints struct {
	Badge int
	Sound string
}

// PushMessage is a gateway-neutral notification for a single device token.
type PushMessage struct {
	Token   string
	Title   string
	Body    string
	Data    map[string]string
	Android AndroidHints
	APNS    APNSHints
}

type SendOutcome struct {
	Success   bool
	MessageID string
	Err       error
}

// BatchResult mirrors a multicast response: one outcome per message, in order.
type BatchResult struct {
	SuccessCount int
	FailureCount int
	Responses    []SendOutcome
}

type DispatchResult struct {
	TotalSent   int `json:"total_sent"`
	TotalFailed int `json:"total_failed"`
	Batches     int `json:"batches"`
}
