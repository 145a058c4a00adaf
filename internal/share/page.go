package share

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/url"
	"strings"
)

// PageParams carries everything the share page needs: the card params plus
// the URLs the embed metadata points at.
type PageParams struct {
	Card    CardParams
	BaseURL string // origin serving /api/og/trade
	AppURL  string // miniapp launch target
}

// miniappEmbed is the fc:miniapp meta tag payload.
type miniappEmbed struct {
	Version  string        `json:"version"`
	ImageURL string        `json:"imageUrl"`
	Button   miniappButton `json:"button"`
}

type miniappButton struct {
	Title  string        `json:"title"`
	Action miniappAction `json:"action"`
}

type miniappAction struct {
	Type                  string `json:"type"`
	Name                  string `json:"name"`
	URL                   string `json:"url"`
	SplashImageURL        string `json:"splashImageUrl"`
	SplashBackgroundColor string `json:"splashBackgroundColor"`
}

type pageView struct {
	Title       string
	Description string
	Pair        string
	Direction   string
	Entry       string
	TakeProfit  string
	StopLoss    string
	Username    string
	ImageURL    string
	AppURL      string
	Miniapp     string
}

var pageTemplate = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <meta name="description" content="{{.Description}}" />

  <meta name="fc:miniapp" content="{{.Miniapp}}" />

  <meta property="og:title" content="{{.Title}}" />
  <meta property="og:description" content="{{.Username}}&#39;s trade commitment: {{.Pair}} {{.Direction}} @ {{.Entry}}" />
  <meta property="og:image" content="{{.ImageURL}}" />
  <meta property="og:url" content="{{.AppURL}}" />
  <meta property="og:type" content="website" />

  <meta name="twitter:card" content="summary_large_image" />
  <meta name="twitter:title" content="{{.Title}}" />
  <meta name="twitter:description" content="{{.Username}}&#39;s trade commitment on TradePlan" />
  <meta name="twitter:image" content="{{.ImageURL}}" />

  <meta name="theme-color" content="#000000" />
</head>
<body style="background: #020617; color: white; font-family: system-ui; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0;">
  <div style="text-align: center; padding: 20px;">
    <h1 style="color: #3b82f6;">TradePlan</h1>
    <p>{{.Username}}&#39;s {{.Pair}} {{.Direction}} Trade</p>
    <p style="color: #64748b;">Entry: {{.Entry}} | Target: {{.TakeProfit}} | Stop: {{.StopLoss}}</p>
    <a href="{{.AppURL}}" style="display: inline-block; margin-top: 20px; padding: 12px 24px; background: #3b82f6; color: white; text-decoration: none; border-radius: 8px;">
      Open TradePlan
    </a>
  </div>
</body>
</html>
`))

// CardImageURL builds the dynamic card URL carrying the same params as the
// share link, so the page and its image always agree.
func CardImageURL(baseURL string, p CardParams) string {
	p.Defaults()
	q := url.Values{}
	q.Set("pair", p.Pair)
	q.Set("direction", p.Direction)
	q.Set("entry", p.Entry)
	q.Set("tp", p.TakeProfit)
	q.Set("sl", p.StopLoss)
	q.Set("rr", p.RiskReward)
	q.Set("risk", p.RiskPercent)
	q.Set("username", p.Username)
	return strings.TrimRight(baseURL, "/") + "/api/og/trade?" + q.Encode()
}

// RenderPage renders the share page HTML with the miniapp and Open Graph
// embed metadata.
func RenderPage(p PageParams) ([]byte, error) {
	p.Card.Defaults()

	imageURL := CardImageURL(p.BaseURL, p.Card)
	embed, err := json.Marshal(miniappEmbed{
		Version:  "1",
		ImageURL: imageURL,
		Button: miniappButton{
			Title: "Open TradePlan",
			Action: miniappAction{
				Type:                  "launch_frame",
				Name:                  "TradePlan",
				URL:                   p.AppURL,
				SplashImageURL:        strings.TrimRight(p.AppURL, "/") + "/splash.png",
				SplashBackgroundColor: "#000000",
			},
		},
	})
	if err != nil {
		return nil, err
	}

	direction := strings.ToUpper(p.Card.Direction)
	view := pageView{
		Title:       p.Card.Pair + " " + direction + " - TradePlan",
		Description: p.Card.Username + "'s " + p.Card.Pair + " " + direction + " trade plan on TradePlan",
		Pair:        p.Card.Pair,
		Direction:   direction,
		Entry:       p.Card.Entry,
		TakeProfit:  p.Card.TakeProfit,
		StopLoss:    p.Card.StopLoss,
		Username:    p.Card.Username,
		ImageURL:    imageURL,
		AppURL:      p.AppURL,
		Miniapp:     string(embed),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
