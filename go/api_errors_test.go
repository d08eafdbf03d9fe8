package salesserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesapp "github.com/Apurer/go-gin-sales-server/internal/domains/sales/application"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	apierrors "github.com/Apurer/go-gin-sales-server/internal/shared/errors"
)

func TestMapSalesError_IdempotencyAndBlankNumbers(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"in progress", fmt.Errorf("claim key till-1: %w", salesports.ErrIdempotencyInProgress), http.StatusConflict, TypeSaleInProgress},
		{"payload conflict", salesports.ErrIdempotencyConflict, http.StatusConflict, apierrors.TypeConflict},
		{"blank sale number", fmt.Errorf("%w: %w", salesapp.ErrInvalidInput, domain.ErrEmptySaleNumber), http.StatusBadRequest, apierrors.TypeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problem, ok := MapSalesError(tc.err)
			require.True(t, ok)
			assert.Equal(t, tc.status, problem.Status)
			assert.Equal(t, tc.typ, problem.Type)
		})
	}

	_, ok := MapSalesError(errors.New("disk full"))
	assert.False(t, ok)
}
