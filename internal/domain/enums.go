package domain

import (
	"encoding/json"
	"strings"
)

type Unit string

const (
	UnitPiece  Unit = "piece"
	UnitWeight Unit = "weight"
	UnitVolume Unit = "volume"
)

// ParseUnit accepts both the canonical names and the shelf symbols (un, kg, lt).
func ParseUnit(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "piece", "un", "unit", "":
		return UnitPiece, nil
	case "weight", "kg":
		return UnitWeight, nil
	case "volume", "lt", "l":
		return UnitVolume, nil
	}
	return "", Invalid("unknown unit %q", raw)
}

func (u Unit) Valid() bool {
	return u == UnitPiece || u == UnitWeight || u == UnitVolume
}

func (u Unit) Symbol() string {
	switch u {
	case UnitWeight:
		return "kg"
	case UnitVolume:
		return "lt"
	default:
		return "un"
	}
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseUnit(raw)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPix        PaymentMethod = "pix"
)

var paymentAliases = map[string]PaymentMethod{
	"cash":           PaymentCash,
	"dinheiro":       PaymentCash,
	"credit_card":    PaymentCreditCard,
	"cartao_credito": PaymentCreditCard,
	"debit_card":     PaymentDebitCard,
	"cartao_debito":  PaymentDebitCard,
	"pix":            PaymentPix,
}

// ParsePaymentMethod maps canonical names and the legacy display codes
// (DINHEIRO, CARTAO_CREDITO, ...) onto the closed set.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	method, ok := paymentAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", Invalid("unsupported payment method %q", raw)
	}
	return method, nil
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentPix:
		return true
	}
	return false
}

func (m PaymentMethod) IsCash() bool {
	return m == PaymentCash
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Dinheiro"
	case PaymentCreditCard:
		return "Cartão de Crédito"
	case PaymentDebitCard:
		return "Cartão de Débito"
	case PaymentPix:
		return "PIX"
	}
	return string(m)
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePaymentMethod(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type CashMovementType string

const (
	CashOpen  CashMovementType = "OPEN"
	CashBleed CashMovementType = "BLEED"
	// CashClose is reserved for an end-of-day close; nothing records it yet.
	CashClose CashMovementType = "CLOSE"
)

func ParseCashMovementType(raw string) (CashMovementType, error) {
	switch CashMovementType(strings.ToUpper(strings.TrimSpace(raw))) {
	case CashOpen:
		return CashOpen, nil
	case CashBleed:
		return CashBleed, nil
	case CashClose:
		return CashClose, nil
	}
	return "", Invalid("unknown cash movement type %q", raw)
}

func (t *CashMovementType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCashMovementType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Recordable reports whether the drawer accepts this movement type.
func (t CashMovementType) Recordable() bool {
	return t == CashOpen || t == CashBleed
}

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
)
