// Package records decodes invoice records supplied as JSON.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"invoiceqc/pkg/models"
)

// ErrSchema is returned when the input does not match the invoice record schema.
var ErrSchema = errors.New("invoice records do not match schema")

// MaxInputBytes bounds the size of a decoded document.
const MaxInputBytes = 32 << 20

const invoiceSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["invoice_id"],
    "properties": {
      "invoice_id": {"type": "string"},
      "invoice_number": {"$ref": "#/definitions/text"},
      "external_reference": {"$ref": "#/definitions/text"},
      "invoice_date": {"$ref": "#/definitions/text"},
      "due_date": {"$ref": "#/definitions/text"},
      "seller_name": {"$ref": "#/definitions/text"},
      "seller_tax_id": {"$ref": "#/definitions/text"},
      "buyer_name": {"$ref": "#/definitions/text"},
      "buyer_tax_id": {"$ref": "#/definitions/text"},
      "currency": {"$ref": "#/definitions/text"},
      "payment_terms": {"$ref": "#/definitions/text"},
      "raw_text": {"$ref": "#/definitions/text"},
      "net_total": {"$ref": "#/definitions/optionalAmount"},
      "tax_amount": {"$ref": "#/definitions/optionalAmount"},
      "gross_total": {"$ref": "#/definitions/optionalAmount"},
      "line_items": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["description", "line_total"],
          "properties": {
            "description": {"type": "string"},
            "quantity": {"$ref": "#/definitions/optionalAmount"},
            "unit_price": {"$ref": "#/definitions/optionalAmount"},
            "line_total": {"$ref": "#/definitions/amount"}
          }
        }
      }
    }
  },
  "definitions": {
    "text": {"type": ["string", "null"]},
    "amount": {
      "oneOf": [
        {"type": "number"},
        {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"}
      ]
    },
    "optionalAmount": {
      "oneOf": [
        {"type": "null"},
        {"$ref": "#/definitions/amount"}
      ]
    }
  }
}`

var schema = jsonschema.MustCompileString("invoice-records.json", invoiceSchema)

// Decode reads a JSON array of invoice records. The document is checked
// against the record schema before it is mapped; absent fields decode as
// unknown.
func Decode(r io.Reader) ([]models.Invoice, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(data) > MaxInputBytes {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrSchema, MaxInputBytes)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode for an in-memory document.
func DecodeBytes(data []byte) ([]models.Invoice, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var invoices []models.Invoice
	if err := json.Unmarshal(data, &invoices); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	for i := range invoices {
		if invoices[i].LineItems == nil {
			invoices[i].LineItems = []models.LineItem{}
		}
	}
	return invoices, nil
}
