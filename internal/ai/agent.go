package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"consignment-manager/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// CountSheetLine is one parsed line of a handwritten or free-text count sheet.
type CountSheetLine struct {
	ProductName       string `json:"product_name" jsonschema_description:"Product name exactly as it appears in the catalog list"`
	QuantityRemaining int    `json:"quantity_remaining" jsonschema_description:"Number of bottles counted on the shelf"`
}

// CountSheet is the structured form of a free-text stock count report.
type CountSheet struct {
	Lines      []CountSheetLine `json:"lines"`
	Confidence float64          `json:"confidence" jsonschema_description:"Overall parsing confidence between 0.0 and 1.0"`
	Notes      string           `json:"notes" jsonschema_description:"Anything ambiguous or unmatched in the source text"`
}

type AgentService interface {
	ParseCountSheet(ctx context.Context, text string, catalog []core.Product) (*CountSheet, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// ParseCountSheet turns a free-text count report (a WhatsApp message, an email,
// a transcribed note) into structured count lines matched against the catalog.
// Lines naming products outside the catalog are rejected.
func (a *Agent) ParseCountSheet(ctx context.Context, text string, catalog []core.Product) (*CountSheet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.InvalidArgumentf("count sheet text is empty")
	}

	var names strings.Builder
	for _, p := range catalog {
		fmt.Fprintf(&names, "- %s (%s, %s)\n", p.Name, p.Country, p.Type)
	}

	prompt := fmt.Sprintf(`You are a stock-taking assistant for a wine distributor.
The text below is a stock count report from a client. Extract one line per
counted product.
Rules:
1. product_name MUST be copied exactly from the catalog list below.
2. quantity_remaining is the number of bottles counted, never negative.
3. Skip lines you cannot match to the catalog and mention them in notes.
4. Provide a confidence score (0.0-1.0).

Catalog:
%s

Count report: %s`, names.String(), text)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "count_sheet",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A parsed stock count sheet"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var sheet CountSheet
	if err := json.Unmarshal([]byte(content), &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if err := validateSheet(&sheet, catalog); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// validateSheet rejects lines the model hallucinated past the catalog.
func validateSheet(sheet *CountSheet, catalog []core.Product) error {
	known := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		known[strings.ToLower(p.Name)] = struct{}{}
	}
	for _, line := range sheet.Lines {
		if _, ok := known[strings.ToLower(line.ProductName)]; !ok {
			return core.InvalidArgumentf("parsed product %q is not in the catalog", line.ProductName)
		}
		if line.QuantityRemaining < 0 {
			return core.InvalidArgumentf("parsed quantity for %q is negative", line.ProductName)
		}
	}
	return nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v CountSheet
	return reflector.Reflect(v)
}
