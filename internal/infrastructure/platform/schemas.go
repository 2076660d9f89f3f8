package platform

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

const schemaBaseURL = "https://schemas.dropship.local/platform/"

const productSchema = `{
	"type": "object",
	"required": ["title", "price"],
	"properties": {
		"productId": {"type": "string"},
		"variantId": {"type": "string"},
		"title": {"type": "string"},
		"image": {"type": "string"},
		"price": {
			"type": ["string", "number"],
			"pattern": "^-?[0-9]+(\\.[0-9]+)?$"
		},
		"availableForSale": {"type": "boolean"},
		"inventory": {"type": ["integer", "null"]}
	}
}`

const successSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"}
	}
}`

// resultSchemas holds the JSON schema each function's result must satisfy
var resultSchemas = map[fulfillment.Function]string{
	fulfillment.FunctionSearchProducts: `{
		"type": "object",
		"required": ["products"],
		"properties": {
			"products": {"type": ["array", "null"], "items": ` + productSchema + `}
		}
	}`,
	fulfillment.FunctionGetProduct: `{
		"type": "object",
		"required": ["product"],
		"properties": {
			"product": ` + productSchema + `
		}
	}`,
	fulfillment.FunctionCreatePurchase: `{
		"type": "object",
		"properties": {
			"purchaseId": {"type": "string"},
			"url": {"type": "string"}
		},
		"anyOf": [
			{"required": ["purchaseId"], "properties": {"purchaseId": {"minLength": 1}}},
			{"required": ["url"], "properties": {"url": {"minLength": 1}}}
		]
	}`,
	fulfillment.FunctionGetWebhooks: `{
		"type": "object",
		"required": ["webhooks"],
		"properties": {
			"webhooks": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"required": ["id"],
					"properties": {
						"id": {"type": "string", "minLength": 1},
						"topic": {"type": "string"},
						"endpoint": {"type": "string"}
					}
				}
			}
		}
	}`,
	fulfillment.FunctionCreateWebhook: `{
		"type": "object",
		"required": ["webhookId"],
		"properties": {
			"webhookId": {"type": "string", "minLength": 1}
		}
	}`,
	fulfillment.FunctionDeleteWebhook:          successSchema,
	fulfillment.FunctionAddTracking:            successSchema,
	fulfillment.FunctionAddCartToPlatformOrder: successSchema,
	fulfillment.FunctionUpdateInventory:        successSchema,
}

// compileSchemas compiles one schema per adapter function
func compileSchemas() (map[fulfillment.Function]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	compiled := make(map[fulfillment.Function]*jsonschema.Schema, len(resultSchemas))
	for fn, src := range resultSchemas {
		url := schemaBaseURL + string(fn) + ".json"
		if err := c.AddResource(url, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add %s result schema: %w", fn, err)
		}
		schema, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s result schema: %w", fn, err)
		}
		compiled[fn] = schema
	}
	for _, fn := range fulfillment.AllFunctions() {
		if _, ok := compiled[fn]; !ok {
			return nil, fmt.Errorf("no result schema for %s", fn)
		}
	}
	return compiled, nil
}
