package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/docs"
	"github.com/etnz/fiscal/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// ReportFunc computes the fiscal report of the user's portfolio.
type ReportFunc func(ctx context.Context) (*fiscal.Report, error)

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep context of your previous questions.

			The user is here to understand the realized gains and losses of their portfolio,
			year by year, and how wash sales and currency conversion affected them.

			Devise a plan of questions to ask to each expert and come up with the best response
			to the user's request. Never give tax advice beyond what the report computes.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded on Google Search.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader, aware of the financial products and institutions
		and of the latest news about funds or companies.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in trading, you can search and find about anything related to
			financial institutions, companies, markets and funds. You leverage Google Search to
			ground your assertions.
			`}}},
		},
	}
}

// NewAccountant returns the expert that reads the fiscal report computed by
// report.
func NewAccountant(report ReportFunc) *Expert {
	lib := []Function{FiscalReport(report), Topic}
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. They read the fiscal report of the user's portfolio:
		realized gains and losses per year, FIFO matching of sales, wash sales and currency conversion.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an accountant in charge of the user's fiscal report.
			Use the FiscalReport tool to read the realized gains and losses of a year,
			and the Topic tool to learn how they are computed before explaining them.
			Quote amounts exactly as the report prints them.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// FiscalReport returns the function rendering the report computed by report,
// optionally restricted to one year.
func FiscalReport(report ReportFunc) *Func {
	const name = "FiscalReport"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `FiscalReport returns the realized gains and losses of the portfolio, with every sale matched to its purchase, the wash sales and the warnings.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"year": {
						Type:        genai.TypeInteger,
						Description: "The year to report on, like 2023. Every year by default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The fiscal report, formatted in markdown.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			year, err := parseYear(args)
			if err != nil {
				return errorResponse(id, name, err)
			}
			r, err := report(ctx)
			if err != nil {
				return errorResponse(id, name, fmt.Errorf("cannot compute the fiscal report: %w", err))
			}
			if year != 0 {
				r = r.Filter(year)
			}
			return outputResponse(id, name, renderer.RenderReport(r, renderer.ReportRenderOptions{}))
		},
	}
}

// Topic reads the documentation of fcs.
var Topic = &Func{
	Decl: &genai.FunctionDeclaration{
		Name:        "Topic",
		Description: "Topic returns a documentation topic of the fiscal calculator. The topic 'readme' lists the others.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name": {
					Type:        genai.TypeString,
					Description: "The topic name, like 'washsale' or 'fifo'.",
				},
			},
			Required: []string{"name"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "The topic in markdown.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		name, _ := args["name"].(string)
		content, err := docs.GetTopic(strings.TrimSpace(name))
		if err != nil {
			return errorResponse(id, "Topic", err)
		}
		return outputResponse(id, "Topic", content)
	},
}

// parseYear reads the optional year argument. JSON numbers are decoded as
// float64.
func parseYear(args map[string]any) (int, error) {
	v, ok := args["year"]
	if !ok || v == nil {
		return 0, nil
	}
	switch y := v.(type) {
	case float64:
		return int(y), nil
	case int:
		return y, nil
	case string:
		year, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return 0, fmt.Errorf("argument 'year' must be a year like 2023, got %q", y)
		}
		return year, nil
	default:
		return 0, fmt.Errorf("argument 'year' is not a number as expected but %T", v)
	}
}
