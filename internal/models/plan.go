// Package models defines the core data types for trade plans and users.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Direction represents the side of a planned trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ParseDirection normalizes a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionLong:
		return DirectionLong, nil
	case DirectionShort:
		return DirectionShort, nil
	default:
		return "", fmt.Errorf("invalid direction: %q", s)
	}
}

// PlanStatus represents the lifecycle state of a plan.
// A plan starts planned and transitions once, irreversibly, to closed.
type PlanStatus string

const (
	PlanPlanned PlanStatus = "planned"
	PlanClosed  PlanStatus = "closed"
)

// PlanResult represents the outcome of a closed plan.
type PlanResult string

const (
	ResultWin  PlanResult = "win"
	ResultLoss PlanResult = "loss"
)

// ParseResult validates a result string.
func ParseResult(s string) (PlanResult, error) {
	switch PlanResult(strings.ToLower(strings.TrimSpace(s))) {
	case ResultWin:
		return ResultWin, nil
	case ResultLoss:
		return ResultLoss, nil
	default:
		return "", fmt.Errorf("invalid result: %q (must be win or loss)", s)
	}
}

// Draft is an in-progress, unsaved trade plan. Price fields are kept as
// strings because they come straight from user input and may be empty or
// partially typed while editing; they are only parsed at save time.
type Draft struct {
	Pair              string    `json:"pair"`
	Direction         Direction `json:"direction"`
	Entry             string    `json:"entry"`
	StopLoss          string    `json:"stopLoss"`
	TakeProfit        string    `json:"takeProfit"`
	RiskPercent       string    `json:"riskPercent"`
	Thesis            string    `json:"thesis,omitempty"`
	RulesAcknowledged bool      `json:"rulesAcknowledged"`
}

// NewDraft returns a draft with the default risk percent and direction.
func NewDraft() Draft {
	return Draft{
		Direction:   DirectionLong,
		RiskPercent: "1",
	}
}

// Normalize uppercases the pair and defaults the risk percent.
func (d *Draft) Normalize() {
	d.Pair = strings.ToUpper(strings.TrimSpace(d.Pair))
	if strings.TrimSpace(d.RiskPercent) == "" {
		d.RiskPercent = "1"
	}
	if d.Direction != DirectionShort {
		d.Direction = DirectionLong
	}
}

// Validate checks whether the draft can be finalized into a plan.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Pair) == "" {
		return fmt.Errorf("pair is required")
	}
	if _, err := strconv.ParseFloat(d.Entry, 64); err != nil {
		return fmt.Errorf("entry price is not a number: %q", d.Entry)
	}
	if _, err := strconv.ParseFloat(d.StopLoss, 64); err != nil {
		return fmt.Errorf("stop loss is not a number: %q", d.StopLoss)
	}
	if !d.RulesAcknowledged {
		return fmt.Errorf("rules must be acknowledged before saving")
	}
	return nil
}

// Plan is a persisted trade commitment. Identity is the storage path;
// PositionSize and RiskReward are computed once at creation and never
// recomputed, even if the underlying prices would now derive different
// values.
type Plan struct {
	ID                string     `json:"id,omitempty"`
	Pair              string     `json:"pair"`
	Direction         Direction  `json:"direction"`
	Entry             string     `json:"entry"`
	StopLoss          string     `json:"stopLoss"`
	TakeProfit        string     `json:"takeProfit"`
	RiskPercent       string     `json:"riskPercent"`
	Thesis            string     `json:"thesis,omitempty"`
	RulesAcknowledged bool       `json:"rulesAcknowledged"`
	OwnerID           string     `json:"ownerId"`
	Status            PlanStatus `json:"status"`
	Result            PlanResult `json:"result,omitempty"`
	PositionSize      float64    `json:"positionSize"`
	RiskReward        float64    `json:"riskReward"`
	CreatedAt         time.Time  `json:"createdAt"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`

	// Identity links copied from the session at creation time.
	SocialID      string `json:"socialId,omitempty"`
	Username      string `json:"username,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// IsOpen reports whether the plan is still awaiting an outcome.
func (p *Plan) IsOpen() bool {
	return p.Status == PlanPlanned
}
