// Package share renders the public share surface for a plan: the
// commitment-certificate card image, the share page with embed metadata,
// and the certificate attribute document.
package share

import (
	"bytes"
	"strings"
	"text/template"
)

// Card dimensions match the standard large-image embed size.
const (
	CardWidth  = 1200
	CardHeight = 630
)

// CardParams carries the plan fields shown on the certificate card. All
// values arrive as strings from URL query parameters and are escaped
// before rendering.
type CardParams struct {
	Pair        string
	Direction   string
	Entry       string
	TakeProfit  string
	StopLoss    string
	RiskReward  string
	RiskPercent string
	Username    string
}

// Defaults fills empty fields with the same fallbacks the share links use.
func (p *CardParams) Defaults() {
	if p.Pair == "" {
		p.Pair = "BTC/USDT"
	}
	if p.Direction == "" {
		p.Direction = "long"
	}
	if p.Entry == "" {
		p.Entry = "0"
	}
	if p.TakeProfit == "" {
		p.TakeProfit = "0"
	}
	if p.StopLoss == "" {
		p.StopLoss = "0"
	}
	if p.RiskReward == "" {
		p.RiskReward = "0"
	}
	if p.RiskPercent == "" {
		p.RiskPercent = "1"
	}
	if p.Username == "" {
		p.Username = "Trader"
	}
}

// IsLong reports whether the card should use the long color scheme.
func (p CardParams) IsLong() bool {
	return strings.ToLower(p.Direction) != "short"
}

type cardView struct {
	Width, Height  int
	Pair           string
	Direction      string
	Entry          string
	TakeProfit     string
	StopLoss       string
	RiskReward     string
	RiskPercent    string
	Username       string
	DirectionColor string
	DirectionBg    string
}

// Certificate card layout: slate page, near-black rounded panel, pair and
// direction badge up top, labelled detail rows, attribution footer.
var cardTemplate = template.Must(template.New("card").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}" font-family="Inter, sans-serif">
  <rect width="{{.Width}}" height="{{.Height}}" fill="#0f172a"/>
  <rect x="100" y="60" width="1000" height="510" rx="32" fill="#020617" stroke="#1e293b" stroke-width="2"/>
  <text x="148" y="140" font-size="18" font-weight="600" letter-spacing="-0.5" fill="#3b82f6">COMMITMENT CERTIFICATE</text>
  <text x="148" y="210" font-size="56" font-weight="700" fill="#ffffff">{{.Pair}}</text>
  <rect x="620" y="172" width="190" height="48" rx="8" fill="{{.DirectionBg}}"/>
  <text x="715" y="206" font-size="28" font-weight="800" fill="{{.DirectionColor}}" text-anchor="middle">{{.Direction}}</text>
  <text x="148" y="290" font-size="20" fill="#64748b">RISK</text>
  <text x="300" y="292" font-size="28" font-weight="600" fill="#cbd5e1">{{.RiskPercent}}%</text>
  <text x="148" y="340" font-size="20" fill="#64748b">ENTRY</text>
  <text x="300" y="342" font-size="28" font-weight="600" fill="#cbd5e1">{{.Entry}}</text>
  <text x="148" y="390" font-size="20" fill="#fb7185">STOP</text>
  <text x="300" y="392" font-size="28" font-weight="600" fill="#fb7185">{{.StopLoss}}</text>
  <text x="148" y="440" font-size="20" fill="#34d399">TARGET</text>
  <text x="300" y="442" font-size="28" font-weight="600" fill="#34d399">{{.TakeProfit}}</text>
  <text x="148" y="490" font-size="20" fill="#64748b">R:R</text>
  <text x="300" y="492" font-size="28" font-weight="600" fill="#3b82f6">1:{{.RiskReward}}</text>
  <line x1="148" y1="514" x2="1052" y2="514" stroke="#1e293b" stroke-width="1"/>
  <text x="148" y="548" font-size="20" fill="#64748b">@{{.Username}}</text>
  <text x="1052" y="548" font-size="20" font-weight="600" fill="#3b82f6" text-anchor="end">TradePlan</text>
</svg>
`))

// RenderCard renders the commitment-certificate SVG for the given params.
func RenderCard(p CardParams) ([]byte, error) {
	p.Defaults()

	color, bg := "#34d399", "rgba(16,185,129,0.2)"
	if !p.IsLong() {
		color, bg = "#fb7185", "rgba(244,63,94,0.2)"
	}

	view := cardView{
		Width:          CardWidth,
		Height:         CardHeight,
		Pair:           escapeXML(p.Pair),
		Direction:      escapeXML(strings.ToUpper(p.Direction)),
		Entry:          escapeXML(p.Entry),
		TakeProfit:     escapeXML(p.TakeProfit),
		StopLoss:       escapeXML(p.StopLoss),
		RiskReward:     escapeXML(p.RiskReward),
		RiskPercent:    escapeXML(p.RiskPercent),
		Username:       escapeXML(p.Username),
		DirectionColor: color,
		DirectionBg:    bg,
	}

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
