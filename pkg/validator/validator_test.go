package validator

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(sampleRequest{ProductID: "42", Quantity: 3})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(sampleRequest{Quantity: 3})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Contains(t, fields, "ProductID")
	assert.Equal(t, "is required", fields["ProductID"])
}

func TestValidate_OutOfRange(t *testing.T) {
	err := Validate(sampleRequest{ProductID: "42", Quantity: 100})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Error(), "Quantity")
	assert.Contains(t, valErr.Fields()["Quantity"], "less than or equal to 99")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"product_id":"42","quantity":2}`))

	var req sampleRequest
	require.NoError(t, DecodeAndValidate(r, &req))
	assert.Equal(t, "42", req.ProductID)
	assert.Equal(t, 2, req.Quantity)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))

	var req sampleRequest
	err := DecodeAndValidate(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_InvalidPayload(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity":0}`))

	var req sampleRequest
	err := DecodeAndValidate(r, &req)
	require.Error(t, err)

	var valErr *ValidationError
	assert.True(t, errors.As(err, &valErr))
}
