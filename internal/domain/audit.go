package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who touched money-moving state, for compliance and
// after-the-fact dispute handling.
type AuditLog struct {
	ID           string
	OperatorID   string // who performed the action
	Action       string // what action (payout.approve, settlement.create, ...)
	ResourceType string // payout, settlement, wallet
	ResourceID   string
	IPAddress    string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string // success, failure
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionSettlementCreate AuditAction = "settlement.create"
	AuditActionPayoutRequest    AuditAction = "payout.request"
	AuditActionPayoutApprove    AuditAction = "payout.approve"
	AuditActionPayoutReject     AuditAction = "payout.reject"
	AuditActionWalletTopup      AuditAction = "wallet.topup"
	AuditActionWalletDebit      AuditAction = "wallet.debit"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	OperatorID   string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
