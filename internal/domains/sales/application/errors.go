package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid sale input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptySaleNumber) ||
		errors.Is(err, domain.ErrEmptySale) ||
		errors.Is(err, domain.ErrEmptyBarcode) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativeMoney) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
