package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

// SaleNumberLength is the number of UUID characters kept in a sale number.
const SaleNumberLength = 8

var _ ports.SaleNumberGenerator = (*UUIDSaleNumbers)(nil)

// UUIDSaleNumbers derives short sale numbers from random UUIDs.
type UUIDSaleNumbers struct {
	newUUID func() (uuid.UUID, error)
}

func NewUUIDSaleNumbers() *UUIDSaleNumbers {
	return &UUIDSaleNumbers{newUUID: uuid.NewRandom}
}

func (g *UUIDSaleNumbers) NextSaleNumber(_ context.Context) (string, error) {
	id, err := g.newUUID()
	if err != nil {
		return "", err
	}
	return strings.ToLower(id.String()[:SaleNumberLength]), nil
}
