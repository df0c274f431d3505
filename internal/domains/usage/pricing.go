package usage

import "github.com/shopspring/decimal"

// modelPrice is USD per million tokens.
type modelPrice struct {
	in  decimal.Decimal
	out decimal.Decimal
}

var prices = map[string]modelPrice{
	"gpt-4o":                   {in: decimal.NewFromFloat(2.50), out: decimal.NewFromFloat(10.00)},
	"gpt-4o-mini":              {in: decimal.NewFromFloat(0.15), out: decimal.NewFromFloat(0.60)},
	"claude-sonnet-4-20250514": {in: decimal.NewFromFloat(3.00), out: decimal.NewFromFloat(15.00)},
	"gemini-2.0-flash":         {in: decimal.NewFromFloat(0.10), out: decimal.NewFromFloat(0.40)},
}

// dallePerImage: image generation bills per image, not per token.
var dallePerImage = decimal.NewFromFloat(0.04)

var million = decimal.NewFromInt(1_000_000)

// EstimateCost prices a call from the static table. Unknown models book at
// zero rather than failing the record.
func EstimateCost(model string, tokensIn, tokensOut int) decimal.Decimal {
	if model == "dall-e-3" {
		return dallePerImage
	}

	p, ok := prices[model]
	if !ok {
		return decimal.Zero
	}

	inCost := p.in.Mul(decimal.NewFromInt(int64(tokensIn))).Div(million)
	outCost := p.out.Mul(decimal.NewFromInt(int64(tokensOut))).Div(million)
	return inCost.Add(outCost)
}
