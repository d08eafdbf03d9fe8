package salesserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	saleshttpmapper "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/http/mapper"
	salesports "github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	apierrors "github.com/Apurer/go-gin-sales-server/internal/shared/errors"
)

// IdempotencyKeyHeader lets registers retry a sale without committing it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// SalesAPI wires HTTP transport with the sales bounded context service.
type SalesAPI struct {
	service   salesports.Service
	responder *apierrors.ChainedResponder
}

// NewSalesAPI creates a SalesAPI backed by the provided service.
func NewSalesAPI(service salesports.Service, responder *apierrors.ChainedResponder) SalesAPI {
	if responder == nil {
		responder = NewSalesResponder("")
	}
	return SalesAPI{service: service, responder: responder}
}

// Post /api/sales
// Creates a sale
func (api *SalesAPI) CreateSale(c *gin.Context) {
	var payload saleshttpmapper.CreateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.respondBindingError(c, err)
		return
	}
	input := saleshttpmapper.ToCreateSaleInput(payload, c.GetHeader(IdempotencyKeyHeader))
	sale, err := api.service.CreateSale(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saleshttpmapper.FromProjection(sale))
}

// Post /api/sales/returns
// Returns one barcode of a sale
func (api *SalesAPI) ReturnItem(c *gin.Context) {
	var payload saleshttpmapper.ReturnRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.respondBindingError(c, err)
		return
	}
	result, err := api.service.ReturnItem(c.Request.Context(), saleshttpmapper.ToReturnItemInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleshttpmapper.FromReturnResult(result))
}

// Post /api/sales/returns/batch
// Processes returns in order and stops at the first failure
func (api *SalesAPI) ReturnItems(c *gin.Context) {
	var payload []saleshttpmapper.ReturnRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.respondBindingError(c, err)
		return
	}
	results, err := api.service.ReturnItems(c.Request.Context(), saleshttpmapper.ToReturnItemInputs(payload))
	if err != nil {
		problem := api.responder.Problem(err).
			WithExtension("completed", saleshttpmapper.FromReturnResults(results))
		api.responder.Respond(c, problem)
		return
	}
	c.JSON(http.StatusOK, saleshttpmapper.FromReturnResults(results))
}

// Get /api/sales
// Lists sales with filters, paging and sorting
func (api *SalesAPI) ListSales(c *gin.Context) {
	input, err := saleshttpmapper.ToListInput(c.Request.URL.Query())
	if err != nil {
		api.responder.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	page, err := api.service.ListSales(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleshttpmapper.FromPage(page))
}

// Get /api/sales/:saleNumber
// Finds a sale by its number
func (api *SalesAPI) GetSale(c *gin.Context) {
	sale, err := api.service.GetSale(c.Request.Context(), c.Param("saleNumber"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleshttpmapper.FromProjection(sale))
}

// Delete /api/sales/:saleNumber
// Soft-deletes a sale and its line items
func (api *SalesAPI) DeleteSale(c *gin.Context) {
	if err := api.service.DeleteSale(c.Request.Context(), c.Param("saleNumber")); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondBindingError reports validator failures per field and anything else as a malformed body.
func (api *SalesAPI) respondBindingError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		api.responder.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	api.responder.ValidationFailed(c, fields)
}
