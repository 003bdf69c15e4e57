package models

import "time"

type SecurityEventType string

const (
	EventAuthSuccess              SecurityEventType = "AUTH_SUCCESS"
	EventAuthFailed               SecurityEventType = "AUTH_FAILED"
	EventMFASuccess               SecurityEventType = "MFA_SUCCESS"
	EventMFAFailed                SecurityEventType = "MFA_FAILED"
	EventLogout                   SecurityEventType = "LOGOUT"
	EventTransferSuccess          SecurityEventType = "TRANSFER_SUCCESS"
	EventTransferApprovalRequired SecurityEventType = "TRANSFER_APPROVAL_REQUIRED"
	EventTransferApproved         SecurityEventType = "TRANSFER_APPROVED"
	EventBillPayment              SecurityEventType = "BILL_PAYMENT"
)

// PlaceholderIPAddress is recorded as the network origin of every entry.
const PlaceholderIPAddress = "192.168.1.100"

type SecurityLogEntry struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	EventType   SecurityEventType `json:"eventType"`
	Description string            `json:"description"`
	Username    string            `json:"username"`
	IPAddress   string            `json:"ipAddress"`
}
