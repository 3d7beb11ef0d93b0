package models

import "strings"

// SettlementStatus is the payment backend's classification of a payment
// attempt, as reported by the purchase status endpoint.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSuccess SettlementStatus = "success"
	SettlementFailed  SettlementStatus = "failed"
	SettlementUnknown SettlementStatus = "unknown"
)

// ParseSettlementStatus normalizes the wire value. Synonyms used by the
// payment provider are folded into the three known states.
func ParseSettlementStatus(s string) SettlementStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "succeeded", "completed", "paid":
		return SettlementSuccess
	case "pending", "processing", "initiated":
		return SettlementPending
	case "failed", "cancelled", "canceled", "expired", "declined":
		return SettlementFailed
	default:
		return SettlementUnknown
	}
}

// PaymentStatusResponse is returned by GET /api/purchase/verify/:paymentId.
type PaymentStatusResponse struct {
	Status      string `json:"status"`
	BuyerEmail  string `json:"buyerEmail,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	FileID      string `json:"fileId,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Settlement returns the normalized status.
func (r PaymentStatusResponse) Settlement() SettlementStatus {
	return ParseSettlementStatus(r.Status)
}

// CheckoutRequest is the billing form submitted to start a mobile-money payment.
type CheckoutRequest struct {
	FileID          string `json:"fileId" validate:"required"`
	FirstName       string `json:"firstName" validate:"required,min=2"`
	LastName        string `json:"lastName" validate:"required,min=2"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,min=8"`
	Country         string `json:"country" validate:"required,country"`
	City            string `json:"city" validate:"required,min=2"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	UserID          *int64 `json:"userId"`
	IsGuestPurchase bool   `json:"isGuestPurchase"`
}

// CheckoutResponse tells the client where to continue the payment.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	OrderID     string `json:"orderId,omitempty"`
}

// VerificationRequest asks the server to email a one-time code.
type VerificationRequest struct {
	Email string `json:"email"`
}

// VerificationResponse is the reply to a verification request.
type VerificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CodeVerificationRequest redeems a one-time code.
type CodeVerificationRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
}

// CodeVerificationResponse carries the guest access token on success.
type CodeVerificationResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken,omitempty"`
	Message     string `json:"message,omitempty"`
}
