package entity

import "time"

type TransactionStatus string

const (
	TransactionInitiated  TransactionStatus = "INITIATED"
	TransactionCaptured   TransactionStatus = "CAPTURED"
	TransactionFailed     TransactionStatus = "FAILED"
	TransactionUnverified TransactionStatus = "UNVERIFIED"
)

// CheckoutRequest is what the console client submits to start a payment.
type CheckoutRequest struct {
	Plan        Plan     `json:"plan"         validate:"required"`
	Customer    Customer `json:"customer"     validate:"required"`
	TermsAgreed bool     `json:"terms_agreed"`
}

type Plan struct {
	Name            string  `json:"name"             validate:"required,max=100"`
	PricePerUser    float64 `json:"price_per_user"   validate:"gte=0"`
	UserCount       int     `json:"user_count"       validate:"gte=1"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

type Customer struct {
	UserID    string `json:"user_id"    validate:"required,max=64"`
	FirstName string `json:"first_name" validate:"max=60"`
	Email     string `json:"email"      validate:"required,email"`
	Phone     string `json:"phone"      validate:"max=20"`
}

// PaymentParams is the fixed parameter set submitted to the hosted gateway as
// an HTML form POST. Field names follow the gateway's wire contract; the hash
// is supplied by the external signer and attached last.
type PaymentParams struct {
	Key         string `json:"key"`
	TxnID       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	FirstName   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SURL        string `json:"surl"`
	FURL        string `json:"furl"`
	UDF1        string `json:"udf1"`
	UDF2        string `json:"udf2"`
	UDF3        string `json:"udf3"`
	UDF4        string `json:"udf4"`
	UDF5        string `json:"udf5"`
	Hash        string `json:"hash,omitempty"`
}

// Fields flattens the parameter set into the form-field map the browser posts
// to the hosted payment page.
func (p *PaymentParams) Fields() map[string]string {
	return map[string]string{
		"key":         p.Key,
		"txnid":       p.TxnID,
		"amount":      p.Amount,
		"productinfo": p.ProductInfo,
		"firstname":   p.FirstName,
		"email":       p.Email,
		"phone":       p.Phone,
		"surl":        p.SURL,
		"furl":        p.FURL,
		"udf1":        p.UDF1,
		"udf2":        p.UDF2,
		"udf3":        p.UDF3,
		"udf4":        p.UDF4,
		"udf5":        p.UDF5,
		"hash":        p.Hash,
	}
}

// PaymentForm is the redirect payload handed back to the browser: a form POST
// target plus the signed field set.
type PaymentForm struct {
	Action string            `json:"action"`
	Method string            `json:"method"`
	Fields map[string]string `json:"fields"`
	TxnID  string            `json:"txnid"`
	Totals *OrderTotals      `json:"totals"`
}

// PaymentTransaction is the persisted ledger row correlating an initiated
// checkout with the gateway's return trip by transaction ID.
type PaymentTransaction struct {
	TxnID       string            `json:"txnid"`
	Amount      string            `json:"amount"`
	ProductInfo string            `json:"productinfo"`
	FirstName   string            `json:"firstname"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	PlanName    string            `json:"plan_name"`
	UserCount   int               `json:"user_count"`
	UserID      string            `json:"user_id"`
	Status      TransactionStatus `json:"status"`
	GatewayID   string            `json:"gateway_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PaymentReturnResult is the outcome surfaced after the gateway lands the
// browser back on the success/failure page. Message is always user-safe; raw
// gateway internals stay in the logs.
type PaymentReturnResult struct {
	Verified bool              `json:"verified"`
	TxnID    string            `json:"txnid"`
	Status   TransactionStatus `json:"status"`
	Message  string            `json:"message"`
}
