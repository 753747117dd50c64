package models

// CreateSessionRequest starts an editing session for one print size.
type CreateSessionRequest struct {
	SizeID string `json:"sizeId" validate:"required"`
}

// UpdateSettingsRequest applies the same edit to every selected copy.
type UpdateSettingsRequest struct {
	CopyIDs  []string     `json:"copyIds" validate:"required,min=1,dive,required"`
	Margins  *MarginStyle `json:"margins,omitempty" validate:"omitempty,margin"`
	Rotation *int         `json:"rotation,omitempty" validate:"omitempty,oneof=0 90 180 270"`
	Fit      *FitMode     `json:"fit,omitempty" validate:"omitempty,oneof=fill fit"`
}

func (r UpdateSettingsRequest) Patch() SettingsPatch {
	return SettingsPatch{Margins: r.Margins, Rotation: r.Rotation, Fit: r.Fit}
}

type RotateRequest struct {
	CopyIDs []string `json:"copyIds" validate:"required,min=1,dive,required"`
}

// CommitRequest moves the copies of a session into an order.
type CommitRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type PayRequest struct {
	Method PaymentMethod `json:"method" validate:"required,oneof=card transfer"`
}

// SessionResponse is the editor view of a session.
type SessionResponse struct {
	ID         string `json:"id"`
	SizeID     string `json:"sizeId"`
	PhotoCount int    `json:"photoCount"`
	Copies     []Copy `json:"copies"`
}

type UploadResponse struct {
	Photo  SourcePhoto `json:"photo"`
	Copies []Copy      `json:"copies"`
}

// OrderResponse is an order with its pricing breakdown and display total.
type OrderResponse struct {
	Order        Order             `json:"order"`
	Pricing      *PricingBreakdown `json:"pricing,omitempty"`
	DisplayTotal string            `json:"displayTotal"`
}

type PayResponse struct {
	Order    Order  `json:"order"`
	PrintRef string `json:"printRef,omitempty"`
}

// SizeResponse is a catalog entry as listed to customers.
type SizeResponse struct {
	SizeDescriptor
	DisplayPrice    string `json:"displayPrice"`
	InitialQuantity int    `json:"initialQuantity"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
