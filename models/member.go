package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member statuses. Transitions only ever move forward:
// pending -> approved -> activated.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusActivated = "activated"
)

// Member represents the structure of a founding circle member document in MongoDB
type Member struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email       string             `bson:"email" json:"email" index:"unique"`
	QueueNumber int                `bson:"queueNumber" json:"queueNumber"`
	AccessCode  string             `bson:"accessCode,omitempty" json:"accessCode,omitempty"`
	Status      string             `bson:"status" json:"status"`
	SignedUpAt  time.Time          `bson:"signedUpAt" json:"signedUpAt"`
	ApprovedAt  *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	ActivatedAt *time.Time         `bson:"activatedAt,omitempty" json:"activatedAt,omitempty"`
	Metadata    MemberMetadata     `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// MemberMetadata holds free-form annotations set at signup and never
// mutated by the workflow
type MemberMetadata struct {
	ReferralSource string `bson:"referralSource,omitempty" json:"referralSource,omitempty"`
}

// JoinWaitlistRequest is the request body for joining the waitlist
type JoinWaitlistRequest struct {
	Email          string `json:"email"`
	ReferralSource string `json:"referralSource,omitempty"`
}

// JoinWaitlistResponse is returned to an applicant after joining (or
// re-joining, which is idempotent) the waitlist
type JoinWaitlistResponse struct {
	QueueNumber int    `json:"queueNumber"`
	AccessCode  string `json:"accessCode,omitempty"`
	Message     string `json:"message"`
}

// ValidateCodeRequest is the request body for validating an access code
// during downstream signup
type ValidateCodeRequest struct {
	AccessCode string `json:"accessCode"`
	Email      string `json:"email"`
}

// ValidateCodeResponse reports whether a presented (code, email) pair is
// valid for activation
type ValidateCodeResponse struct {
	Valid       bool   `json:"valid"`
	Email       string `json:"email,omitempty"`
	QueueNumber int    `json:"queueNumber,omitempty"`
}

// BulkApproveRequest is the request body for approving a batch of pending members
type BulkApproveRequest struct {
	Count int `json:"count"`
}

// WaitlistStats aggregates member counts by status plus remaining
// founding member capacity
type WaitlistStats struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	Approved       int64 `json:"approved"`
	Activated      int64 `json:"activated"`
	RemainingSlots int64 `json:"remainingSlots"`
}
