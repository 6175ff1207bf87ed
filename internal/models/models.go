package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent  = "student"
	RoleFaculty  = "faculty"
	RoleOperator = "location-operator"
)

// Order statuses form a strict lattice. A status never moves backwards.
const (
	OrderStatusInQueue    = "in_queue"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusReady      = "ready"
	OrderStatusCompleted  = "completed"
)

const (
	PaymentStatusCreated   = "created"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

var orderStatusRank = map[string]int{
	OrderStatusInQueue:    0,
	OrderStatusPaid:       1,
	OrderStatusProcessing: 2,
	OrderStatusReady:      3,
	OrderStatusCompleted:  4,
}

func ValidOrderStatus(s string) bool {
	_, ok := orderStatusRank[s]
	return ok
}

// PrevOrderStatus returns the only status an order may hold immediately
// before moving to s. ok is false for in_queue and unknown statuses.
func PrevOrderStatus(s string) (string, bool) {
	rank, ok := orderStatusRank[s]
	if !ok || rank == 0 {
		return "", false
	}
	for name, r := range orderStatusRank {
		if r == rank-1 {
			return name, true
		}
	}
	return "", false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PrintSpec is the fixed schema of a print job. Unknown shapes are rejected
// at validation, not passed through untyped.
type PrintSpec struct {
	Pages     int    `gorm:"not null"        json:"pages"`
	ColorMode string `gorm:"not null"        json:"color_mode"`
	PaperSize string `gorm:"not null"        json:"paper_size"`
	Copies    int    `gorm:"not null"        json:"copies"`
	Binding   string `gorm:"not null"        json:"binding"`
	Location  string `gorm:"index;not null"  json:"location"`
}

type Order struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"  json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	FileURL   string     `gorm:"not null"              json:"file_url"`
	FileName  string     `gorm:"not null"              json:"file_name"`
	Spec      PrintSpec  `gorm:"embedded"              json:"spec"`
	Status    string     `gorm:"index;not null"        json:"status"`
	PaymentID *uuid.UUID `gorm:"type:uuid"             json:"payment_id,omitempty"`
	CreatedAt time.Time  `gorm:"index"                 json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Payment struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	OrderID          *uuid.UUID `gorm:"type:uuid"                json:"order_id,omitempty"`
	Amount           int64      `gorm:"not null;check:amount>0"  json:"amount"`
	Currency         string     `gorm:"not null"                 json:"currency"`
	Status           string     `gorm:"index;not null"           json:"status"`
	GatewayOrderID   string     `gorm:"uniqueIndex;not null"     json:"razorpay_order_id"`
	GatewayPaymentID string     `json:"razorpay_payment_id,omitempty"`
	GatewaySignature string     `json:"-"`
	Receipt          string     `json:"receipt"`
	Method           string     `json:"payment_method,omitempty"`
	Bank             string     `json:"bank,omitempty"`
	Wallet           string     `json:"wallet,omitempty"`
	VPA              string     `json:"vpa,omitempty"`
	FailureReason    string     `json:"failure_reason,omitempty"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	CreatedAt        time.Time  `gorm:"index"                    json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
