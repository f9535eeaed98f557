package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Collection names one persisted record set. Each payload is a JSON document:
// an array for the entity collections, an object or null for the session.
type Collection string

const (
	Products      Collection = "products"
	Customers     Collection = "customers"
	Suppliers     Collection = "suppliers"
	Sales         Collection = "sales"
	Purchases     Collection = "purchases"
	CashMovements Collection = "cash_movements"
	Session       Collection = "session"
)

func Collections() []Collection {
	return []Collection{Products, Customers, Suppliers, Sales, Purchases, CashMovements, Session}
}

func (c Collection) Valid() bool {
	for _, known := range Collections() {
		if c == known {
			return true
		}
	}
	return false
}

// Repository has load-all/replace-all semantics keyed by collection name.
// Replace writes the whole batch or nothing.
type Repository interface {
	Load(ctx context.Context, name Collection) ([]byte, error)
	Replace(ctx context.Context, batch map[Collection][]byte) error
	Close() error
}

func ValidateBatch(batch map[Collection][]byte) error {
	for name := range batch {
		if !name.Valid() {
			return errors.New("unknown collection " + string(name))
		}
	}
	return nil
}
