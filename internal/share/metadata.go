package share

import (
	"strconv"
	"strings"
	"time"

	"tradeplan/internal/models"
)

// Attribute is one trait on a commitment certificate.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// CertificateMetadata is the attribute document describing a plan
// commitment, in the standard collectible-metadata shape.
type CertificateMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// CommitmentMetadata builds the certificate attribute document for a plan.
func CommitmentMetadata(plan models.Plan) CertificateMetadata {
	direction := strings.ToUpper(string(plan.Direction))
	return CertificateMetadata{
		Name:        "Trade Plan - " + plan.Pair,
		Description: "Trading commitment for " + plan.Pair + " " + direction,
		Attributes: []Attribute{
			{TraitType: "Pair", Value: plan.Pair},
			{TraitType: "Direction", Value: direction},
			{TraitType: "Entry", Value: plan.Entry},
			{TraitType: "Target", Value: plan.TakeProfit},
			{TraitType: "Stop Loss", Value: plan.StopLoss},
			{TraitType: "Risk Percent", Value: plan.RiskPercent + "%"},
			{TraitType: "Timestamp", Value: plan.CreatedAt.UTC().Format(time.RFC3339)},
		},
	}
}

// CardParamsFromPlan maps a saved plan onto share card params.
func CardParamsFromPlan(plan models.Plan) CardParams {
	p := CardParams{
		Pair:        plan.Pair,
		Direction:   string(plan.Direction),
		Entry:       plan.Entry,
		TakeProfit:  plan.TakeProfit,
		StopLoss:    plan.StopLoss,
		RiskReward:  formatFloat(plan.RiskReward),
		RiskPercent: plan.RiskPercent,
		Username:    plan.Username,
	}
	p.Defaults()
	return p
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
