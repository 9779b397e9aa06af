package payment

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Type string

const (
	TypeMembershipFee   Type = "MEMBERSHIP_FEE"
	TypeClassFee        Type = "CLASS_FEE"
	TypeTrainingSession Type = "TRAINING_SESSION"
)

var paymentTypes = []interface{}{
	string(TypeMembershipFee), string(TypeClassFee), string(TypeTrainingSession),
}

type Method string

const (
	MethodCash          Method = "CASH"
	MethodCreditCard    Method = "CREDIT_CARD"
	MethodDebitCard     Method = "DEBIT_CARD"
	MethodBankTransfer  Method = "BANK_TRANSFER"
	MethodDigitalWallet Method = "DIGITAL_WALLET"
)

var methods = []interface{}{
	string(MethodCash), string(MethodCreditCard), string(MethodDebitCard),
	string(MethodBankTransfer), string(MethodDigitalWallet),
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

var statuses = []interface{}{
	string(StatusPending), string(StatusCompleted), string(StatusCancelled), string(StatusRefunded),
}

func parse(s string, allowed []interface{}) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, a := range allowed {
		if v == a {
			return v, true
		}
	}
	return v, false
}

func ParseType(s string) (Type, bool) {
	v, ok := parse(s, paymentTypes)
	return Type(v), ok
}

func ParseMethod(s string) (Method, bool) {
	v, ok := parse(s, methods)
	return Method(v), ok
}

func ParseStatus(s string) (Status, bool) {
	v, ok := parse(s, statuses)
	return Status(v), ok
}

type Payment struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"user_id"`
	Type          Type       `db:"type" json:"type" swaggertype:"string" example:"MEMBERSHIP_FEE"`
	Method        Method     `db:"method" json:"method" swaggertype:"string" example:"CREDIT_CARD"`
	Status        Status     `db:"status" json:"status" swaggertype:"string" example:"PENDING"`
	AmountCents   int64      `db:"amount_cents" json:"amount_cents"`
	Description   string     `db:"description" json:"description"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	PaymentDate   *time.Time `db:"payment_date" json:"payment_date,omitempty"`
	TransactionID string     `db:"transaction_id" json:"transaction_id" example:"TXN-1A2B3C4D"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Transition is one edge of the payment state machine.
type Transition struct {
	From Status
	To   Status
	// Conflict is reported when the payment is not in From.
	Conflict string
}

var (
	Process = Transition{From: StatusPending, To: StatusCompleted, Conflict: "Payment cannot be processed in current status"}
	Refund  = Transition{From: StatusCompleted, To: StatusRefunded, Conflict: "Payment cannot be refunded in current status"}
	Cancel  = Transition{From: StatusPending, To: StatusCancelled, Conflict: "Payment cannot be cancelled in current status"}
)

type PaymentRequest struct {
	UserID      int        `json:"user_id" example:"5"`
	Type        string     `json:"type" example:"MEMBERSHIP_FEE"`
	Method      string     `json:"method" example:"CREDIT_CARD"`
	AmountCents int64      `json:"amount_cents" example:"4999"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (r PaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(1)),
		validation.Field(&r.Type, validation.Required, validation.In(paymentTypes...)),
		validation.Field(&r.Method, validation.Required, validation.In(methods...)),
		validation.Field(&r.AmountCents, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
}

// QuickPaymentRequest is the body of the per-type convenience endpoints.
type QuickPaymentRequest struct {
	UserID      int    `json:"user_id" example:"5"`
	AmountCents int64  `json:"amount_cents" example:"4999"`
	Method      string `json:"method" example:"CASH"`
}

func (r QuickPaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(1)),
		validation.Field(&r.AmountCents, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Method, validation.Required, validation.In(methods...)),
	)
}

type RefundRequest struct {
	Notes string `json:"notes" example:"Class cancelled by gym"`
}

func (r RefundRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Notes, validation.Length(0, 500)),
	)
}

// quickPayment describes the defaults of a convenience creator.
type quickPayment struct {
	Type        Type
	Description string
	DueIn       time.Duration
}

var (
	membershipFee   = quickPayment{Type: TypeMembershipFee, Description: "Membership fee payment", DueIn: 30 * 24 * time.Hour}
	classFee        = quickPayment{Type: TypeClassFee, Description: "Class fee payment", DueIn: 7 * 24 * time.Hour}
	trainingSession = quickPayment{Type: TypeTrainingSession, Description: "Training session payment", DueIn: 7 * 24 * time.Hour}
)
