package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
)

// Transport layer for openapi.yaml. Keep operation, parameter and schema names aligned with
// the contract so the file can be swapped for oapi-codegen output.

// CheckItem is one line of a check-and-reserve request.
type CheckItem struct {
	Barcode    string `json:"barcode"`
	Quantity   int    `json:"quantity"`
	CampaignID *int64 `json:"campaignId,omitempty"`
}

// ProductSnapshot is the authority's answer for one checked line.
type ProductSnapshot struct {
	Barcode   string          `json:"barcode"`
	SkuCode   string          `json:"skuCode"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	InStock   bool            `json:"inStock"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// AdjustItem returns units of one barcode to stock.
type AdjustItem struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

// Error is the error body returned by the inventory API.
type Error struct {
	Message *string `json:"message,omitempty"`
	Status  *string `json:"status,omitempty"`
}

// CheckInventoryParams defines parameters for CheckInventory.
type CheckInventoryParams struct {
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}

// AdjustInventoryParams defines parameters for AdjustInventory.
type AdjustInventoryParams struct {
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}

// CheckInventoryJSONRequestBody defines body for CheckInventory for application/json ContentType.
type CheckInventoryJSONRequestBody = []CheckItem

// AdjustInventoryJSONRequestBody defines body for AdjustInventory for application/json ContentType.
type AdjustInventoryJSONRequestBody = []AdjustItem

// HttpRequestDoer performs HTTP requests.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn is the function signature for the RequestEditor callback function.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// InventoryAPIClient talks to the inventory authority.
type InventoryAPIClient struct {
	Server         string
	Client         HttpRequestDoer
	RequestEditors []RequestEditorFn
}

// ClientOption allows setting custom parameters during construction.
type ClientOption func(*InventoryAPIClient) error

// NewInventoryAPIClient creates a new client with reasonable defaults.
func NewInventoryAPIClient(server string, opts ...ClientOption) (*InventoryAPIClient, error) {
	client := InventoryAPIClient{Server: server}
	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}
	if client.Client == nil {
		client.Client = &http.Client{}
	}
	return &client, nil
}

// WithHTTPClient allows overriding the default Doer.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *InventoryAPIClient) error {
		c.Client = doer
		return nil
	}
}

// WithRequestEditorFn allows setting up a callback function, which will be
// called right before sending the request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *InventoryAPIClient) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

func (c *InventoryAPIClient) CheckInventory(ctx context.Context, params *CheckInventoryParams, body CheckInventoryJSONRequestBody, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewCheckInventoryRequest(c.Server, params, body)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req, reqEditors); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

func (c *InventoryAPIClient) AdjustInventory(ctx context.Context, params *AdjustInventoryParams, body AdjustInventoryJSONRequestBody, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewAdjustInventoryRequest(c.Server, params, body)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req, reqEditors); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

func (c *InventoryAPIClient) applyEditors(ctx context.Context, req *http.Request, additional []RequestEditorFn) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	for _, r := range additional {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// NewCheckInventoryRequest builds the POST /inventory/check request.
func NewCheckInventoryRequest(server string, params *CheckInventoryParams, body CheckInventoryJSONRequestBody) (*http.Request, error) {
	var key *string
	if params != nil {
		key = params.IdempotencyKey
	}
	return newJSONPost(server, "/inventory/check", key, body)
}

// NewAdjustInventoryRequest builds the POST /inventory/adjust request.
func NewAdjustInventoryRequest(server string, params *AdjustInventoryParams, body AdjustInventoryJSONRequestBody) (*http.Request, error) {
	var key *string
	if params != nil {
		key = params.IdempotencyKey
	}
	return newJSONPost(server, "/inventory/adjust", key, body)
}

func newJSONPost(server, operationPath string, idempotencyKey *string, body any) (*http.Request, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}
	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}
	queryURL, err := serverURL.Parse(operationPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, queryURL.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	if idempotencyKey != nil {
		headerParam, err := runtime.StyleParamWithLocation("simple", false, "Idempotency-Key", runtime.ParamLocationHeader, *idempotencyKey)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Idempotency-Key", headerParam)
	}
	return req, nil
}

// ClientWithResponses builds on InventoryAPIClient to offer response payloads.
type ClientWithResponses struct {
	ClientInterface *InventoryAPIClient
}

// NewClientWithResponses creates a new ClientWithResponses, which wraps
// InventoryAPIClient with return type handling.
func NewClientWithResponses(server string, opts ...ClientOption) (*ClientWithResponses, error) {
	client, err := NewInventoryAPIClient(server, opts...)
	if err != nil {
		return nil, err
	}
	return &ClientWithResponses{ClientInterface: client}, nil
}

type CheckInventoryResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *[]ProductSnapshot
	JSONDefault  *Error
}

// Status returns HTTPResponse.Status.
func (r CheckInventoryResponse) Status() string {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.Status
	}
	return http.StatusText(0)
}

// StatusCode returns HTTPResponse.StatusCode.
func (r CheckInventoryResponse) StatusCode() int {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.StatusCode
	}
	return 0
}

type AdjustInventoryResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSONDefault  *Error
}

// Status returns HTTPResponse.Status.
func (r AdjustInventoryResponse) Status() string {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.Status
	}
	return http.StatusText(0)
}

// StatusCode returns HTTPResponse.StatusCode.
func (r AdjustInventoryResponse) StatusCode() int {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.StatusCode
	}
	return 0
}

// CheckInventoryWithResponse request with arbitrary body returning *CheckInventoryResponse.
func (c *ClientWithResponses) CheckInventoryWithResponse(ctx context.Context, params *CheckInventoryParams, body CheckInventoryJSONRequestBody, reqEditors ...RequestEditorFn) (*CheckInventoryResponse, error) {
	rsp, err := c.ClientInterface.CheckInventory(ctx, params, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseCheckInventoryResponse(rsp)
}

// AdjustInventoryWithResponse request with arbitrary body returning *AdjustInventoryResponse.
func (c *ClientWithResponses) AdjustInventoryWithResponse(ctx context.Context, params *AdjustInventoryParams, body AdjustInventoryJSONRequestBody, reqEditors ...RequestEditorFn) (*AdjustInventoryResponse, error) {
	rsp, err := c.ClientInterface.AdjustInventory(ctx, params, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseAdjustInventoryResponse(rsp)
}

// ParseCheckInventoryResponse parses an HTTP response from a CheckInventoryWithResponse call.
// The authority does not always label its JSON, so any non-blank body is decoded.
func ParseCheckInventoryResponse(rsp *http.Response) (*CheckInventoryResponse, error) {
	bodyBytes, err := readBody(rsp)
	if err != nil {
		return nil, err
	}
	response := &CheckInventoryResponse{Body: bodyBytes, HTTPResponse: rsp}
	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return response, nil
	}

	switch {
	case rsp.StatusCode == http.StatusOK:
		var dest []ProductSnapshot
		if err := json.Unmarshal(bodyBytes, &dest); err != nil {
			return nil, fmt.Errorf("decode check response: %w", err)
		}
		response.JSON200 = &dest
	case rsp.StatusCode >= http.StatusBadRequest:
		var dest Error
		if err := json.Unmarshal(bodyBytes, &dest); err == nil {
			response.JSONDefault = &dest
		}
	}
	return response, nil
}

// ParseAdjustInventoryResponse parses an HTTP response from an AdjustInventoryWithResponse call.
func ParseAdjustInventoryResponse(rsp *http.Response) (*AdjustInventoryResponse, error) {
	bodyBytes, err := readBody(rsp)
	if err != nil {
		return nil, err
	}
	response := &AdjustInventoryResponse{Body: bodyBytes, HTTPResponse: rsp}
	if rsp.StatusCode >= http.StatusBadRequest && len(bytes.TrimSpace(bodyBytes)) > 0 {
		var dest Error
		if err := json.Unmarshal(bodyBytes, &dest); err == nil {
			response.JSONDefault = &dest
		}
	}
	return response, nil
}

func readBody(rsp *http.Response) ([]byte, error) {
	defer func() { _ = rsp.Body.Close() }()
	return io.ReadAll(io.LimitReader(rsp.Body, 4<<20))
}
