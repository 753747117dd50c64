package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeUnprocessable Code = "UNPROCESSABLE_INPUT"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:    http.StatusBadRequest,
	CodeNotFound:      http.StatusNotFound,
	CodeStateConflict: http.StatusConflict,
	CodeUnprocessable: http.StatusUnprocessableEntity,
	CodeInternal:      http.StatusInternalServerError,
	CodeDependency:    http.StatusServiceUnavailable,
}

// Coder is implemented by every error of this package.
type Coder interface {
	error
	Code() Code
}

type Error struct {
	code    Code
	message string
	cause   error
	details any
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// WithDetails returns a copy of e carrying structured details for API responses.
func (e *Error) WithDetails(details any) *Error {
	out := *e
	out.details = details
	return &out
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

var (
	ErrInvalidQuantity   = New(CodeValidation, "quantity must be at least 1")
	ErrInvalidSettings   = New(CodeValidation, "invalid copy settings")
	ErrInvalidScale      = New(CodeValidation, "output scale must be in (0, 1]")
	ErrUnsupportedUpload = New(CodeValidation, "unsupported upload")
	ErrInvalidPayment    = New(CodeValidation, "payment method must be card or transfer")
	ErrOrderLocked       = New(CodeStateConflict, "order can no longer be modified")
	ErrInvalidTransition = New(CodeStateConflict, "order state transition not allowed")
	ErrOrderNotFound     = New(CodeNotFound, "order not found")
	ErrSessionNotFound   = New(CodeNotFound, "editing session not found")
	ErrPhotoNotFound     = New(CodeNotFound, "photo not found")
	ErrLineItemNotFound  = New(CodeNotFound, "line item not found")
	ErrCopyNotFound      = New(CodeNotFound, "copy not found")
	ErrMissingRender     = New(CodeUnprocessable, "copy has no rendered composition")
)

// UnknownSizeError is returned when a size id is not registered in the catalog.
type UnknownSizeError struct {
	SizeID string
}

func (e *UnknownSizeError) Error() string {
	return fmt.Sprintf("unknown print size %q", e.SizeID)
}

func (e *UnknownSizeError) Code() Code { return CodeValidation }

// InvalidMarginError means the margins leave no room for the photo on the canvas.
type InvalidMarginError struct {
	SizeID          string
	MarginPixels    float64
	EffectiveWidth  float64
	EffectiveHeight float64
}

func (e *InvalidMarginError) Error() string {
	return fmt.Sprintf("margin of %.2fpx leaves no content area on size %q (%.2f x %.2f)",
		e.MarginPixels, e.SizeID, e.EffectiveWidth, e.EffectiveHeight)
}

func (e *InvalidMarginError) Code() Code { return CodeUnprocessable }

// ImageDecodeError wraps a failure to read the source raster of a photo.
type ImageDecodeError struct {
	PhotoID string
	Err     error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("failed to decode photo %q: %v", e.PhotoID, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

func (e *ImageDecodeError) Code() Code { return CodeUnprocessable }

// OddPair describes one pair-priced line item holding an odd number of copies.
type OddPair struct {
	SizeID      string `json:"sizeId"`
	TotalCopies int    `json:"totalCopies"`
}

// OddPairQuantityError blocks checkout until every pair-priced size has an even count.
type OddPairQuantityError struct {
	Items []OddPair
}

func (e *OddPairQuantityError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf("%s=%d", item.SizeID, item.TotalCopies))
	}
	return fmt.Sprintf("pair-priced sizes require an even number of copies (%s)", strings.Join(parts, ", "))
}

func (e *OddPairQuantityError) Code() Code { return CodeValidation }

// UserMessage is the text shown to the customer at the cart screen.
func (e *OddPairQuantityError) UserMessage() string {
	return "Los tamaños 10x15 y 10x10 requieren un total de impresiones par (2, 4, 6, etc.). Agrega una copia más para continuar."
}

// EmptyOrderError is returned when checkout is attempted without line items.
type EmptyOrderError struct{}

func (e *EmptyOrderError) Error() string { return "order has no line items" }

func (e *EmptyOrderError) Code() Code { return CodeValidation }

func (e *EmptyOrderError) UserMessage() string {
	return "Tu carrito está vacío. Añade productos para continuar."
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var coded Coder
	if stdErrors.As(err, &coded) {
		return coded.Code()
	}
	return CodeInternal
}

// HTTPStatus maps err to the status code a controller should answer with.
func HTTPStatus(err error) int {
	if status, ok := statusByCode[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// UserMessage returns the end-user text for validation failures, or err.Error().
func UserMessage(err error) string {
	var friendly interface{ UserMessage() string }
	if stdErrors.As(err, &friendly) {
		return friendly.UserMessage()
	}
	return err.Error()
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
