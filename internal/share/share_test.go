package share

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tradeplan/internal/models"
)

func TestRenderCardDefaults(t *testing.T) {
	svg, err := RenderCard(CardParams{})
	if err != nil {
		t.Fatalf("RenderCard: %v", err)
	}
	s := string(svg)

	for _, want := range []string{
		`width="1200"`, `height="630"`,
		"BTC/USDT", "LONG", "#34d399",
		"COMMITMENT CERTIFICATE", "@Trader",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("card missing %q", want)
		}
	}
}

func TestRenderCardShortUsesShortColors(t *testing.T) {
	svg, err := RenderCard(CardParams{Direction: "short", Pair: "ETH/USDT"})
	if err != nil {
		t.Fatalf("RenderCard: %v", err)
	}
	s := string(svg)

	if !strings.Contains(s, "SHORT") {
		t.Error("direction badge not uppercased")
	}
	if !strings.Contains(s, "rgba(244,63,94,0.2)") {
		t.Error("short badge background missing")
	}
}

func TestRenderCardEscapesInput(t *testing.T) {
	svg, err := RenderCard(CardParams{Pair: `<script>"x"</script>`})
	if err != nil {
		t.Fatalf("RenderCard: %v", err)
	}
	if strings.Contains(string(svg), "<script>") {
		t.Error("unescaped markup in card output")
	}
}

func TestCardImageURLCarriesAllParams(t *testing.T) {
	u := CardImageURL("https://example.com/", CardParams{
		Pair:        "BTC/USDT",
		Direction:   "short",
		Entry:       "100",
		TakeProfit:  "130",
		StopLoss:    "90",
		RiskReward:  "3",
		RiskPercent: "2",
		Username:    "trader",
	})

	if !strings.HasPrefix(u, "https://example.com/api/og/trade?") {
		t.Fatalf("unexpected prefix: %s", u)
	}
	for _, want := range []string{
		"pair=BTC%2FUSDT", "direction=short", "entry=100",
		"tp=130", "sl=90", "rr=3", "risk=2", "username=trader",
	} {
		if !strings.Contains(u, want) {
			t.Errorf("image URL missing %q: %s", want, u)
		}
	}
}

func TestRenderPageEmbedsMiniappMetadata(t *testing.T) {
	html, err := RenderPage(PageParams{
		Card: CardParams{
			Pair:      "BTC/USDT",
			Direction: "long",
			Entry:     "100",
			Username:  "trader",
		},
		BaseURL: "https://share.example.com",
		AppURL:  "https://app.example.com",
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	s := string(html)

	for _, want := range []string{
		`name="fc:miniapp"`,
		`property="og:title"`,
		`name="twitter:card" content="summary_large_image"`,
		"BTC/USDT LONG - TradePlan",
		"launch_frame",
		"https://app.example.com/splash.png",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRenderPageEscapesParams(t *testing.T) {
	html, err := RenderPage(PageParams{
		Card:    CardParams{Username: `<img src=x onerror=alert(1)>`},
		BaseURL: "https://share.example.com",
		AppURL:  "https://app.example.com",
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if strings.Contains(string(html), "<img src=x") {
		t.Error("unescaped markup in page output")
	}
}

func TestCommitmentMetadata(t *testing.T) {
	plan := models.Plan{
		Pair:        "BTC/USDT",
		Direction:   models.DirectionShort,
		Entry:       "100",
		StopLoss:    "110",
		TakeProfit:  "70",
		RiskPercent: "2",
		RiskReward:  3,
		Username:    "trader",
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	meta := CommitmentMetadata(plan)
	if meta.Name != "Trade Plan - BTC/USDT" {
		t.Errorf("Name: got %q", meta.Name)
	}
	if meta.Description != "Trading commitment for BTC/USDT SHORT" {
		t.Errorf("Description: got %q", meta.Description)
	}

	traits := map[string]string{}
	for _, a := range meta.Attributes {
		traits[a.TraitType] = a.Value
	}
	want := map[string]string{
		"Pair":         "BTC/USDT",
		"Direction":    "SHORT",
		"Entry":        "100",
		"Target":       "70",
		"Stop Loss":    "110",
		"Risk Percent": "2%",
		"Timestamp":    "2026-03-01T12:00:00Z",
	}
	for k, v := range want {
		if traits[k] != v {
			t.Errorf("trait %s: got %q, want %q", k, traits[k], v)
		}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"trait_type":"Pair"`) {
		t.Error("trait_type tag missing in JSON")
	}
}

func TestCardParamsFromPlan(t *testing.T) {
	plan := models.Plan{
		Pair:        "SOL/USDT",
		Direction:   models.DirectionLong,
		Entry:       "150",
		StopLoss:    "140",
		TakeProfit:  "180",
		RiskPercent: "1",
		RiskReward:  3,
		Username:    "trader",
	}

	p := CardParamsFromPlan(plan)
	if p.RiskReward != "3" {
		t.Errorf("RiskReward: got %q, want 3", p.RiskReward)
	}
	if p.Pair != "SOL/USDT" || p.Username != "trader" {
		t.Errorf("params: %+v", p)
	}
}
