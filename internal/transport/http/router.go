// Package http exposes the plan API, the share pages and the webhook over
// HTTP.
package http

import (
	"context"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	errs "tradeplan/internal/errors"
	"tradeplan/internal/models"
	"tradeplan/internal/share"
)

// PlanService is the plan book surface the router needs.
type PlanService interface {
	Plans() []models.Plan
	Active() []models.Plan
	Closed() []models.Plan
	Create(ctx context.Context, draft models.Draft) (*models.Plan, error)
	Close(ctx context.Context, planID string, result models.PlanResult) error
	Remove(ctx context.Context, planID string) error
}

// ShareConfig carries the URLs the share surface embeds.
type ShareConfig struct {
	// AppURL is the public application URL share pages link back to.
	AppURL string
	// StaticImageURL is the fallback card image for plan-id embeds.
	StaticImageURL string
}

type Router struct {
	app         *fiber.App
	planService PlanService
	shareConfig ShareConfig
	logger      zerolog.Logger
}

// New builds the router with all routes mounted.
func New(planService PlanService, shareConfig ShareConfig, logger zerolog.Logger) *Router {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	r := &Router{
		app:         app,
		planService: planService,
		shareConfig: shareConfig,
		logger:      logger,
	}

	api := app.Group("/api")

	api.Get("/og/trade", r.cardImage)
	api.Get("/og/:planID", r.cardFallback)
	api.Get("/share/:planID", r.sharePage)
	api.All("/webhook", r.webhook)

	v1 := api.Group("/v1")
	v1.Get("/plans", r.listPlans)
	v1.Post("/plans", r.createPlan)
	v1.Post("/plans/:planID/close", r.closePlan)
	v1.Delete("/plans/:planID", r.deletePlan)
	v1.Get("/plans/:planID/metadata", r.planMetadata)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return r
}

func (r *Router) App() *fiber.App {
	return r.app
}

// Listen starts serving on the given address.
func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}

func cardParamsFromQuery(c *fiber.Ctx) share.CardParams {
	p := share.CardParams{
		Pair:        c.Query("pair"),
		Direction:   c.Query("direction"),
		Entry:       c.Query("entry"),
		TakeProfit:  c.Query("tp"),
		StopLoss:    c.Query("sl"),
		RiskReward:  c.Query("rr"),
		RiskPercent: c.Query("risk"),
		Username:    c.Query("username"),
	}
	p.Defaults()
	return p
}

// cardImage renders the dynamic commitment-certificate card from query
// params.
func (r *Router) cardImage(c *fiber.Ctx) error {
	svg, err := share.RenderCard(cardParamsFromQuery(c))
	if err != nil {
		r.logger.Error().Err(err).Msg("Card render failed")
		// Same degradation as the plan-id route: fall back to the static
		// image rather than break the embed.
		c.Set("Cache-Control", "no-cache")
		return c.Redirect(r.shareConfig.StaticImageURL, fiber.StatusFound)
	}

	c.Set("Content-Type", "image/svg+xml")
	c.Set("Cache-Control", "public, max-age=3600, s-maxage=86400, stale-while-revalidate=86400")
	return c.Send(svg)
}

// cardFallback serves plan-id embeds with the static card image.
func (r *Router) cardFallback(c *fiber.Ctx) error {
	c.Set("Cache-Control", "public, max-age=3600")
	return c.Redirect(r.shareConfig.StaticImageURL, fiber.StatusFound)
}

// sharePage renders the embed page for a shared plan. Plan details ride
// in query params so the page works even when the plan id is unknown to
// this deployment.
func (r *Router) sharePage(c *fiber.Ctx) error {
	params := share.PageParams{
		Card:    cardParamsFromQuery(c),
		BaseURL: c.BaseURL(),
		AppURL:  r.shareConfig.AppURL,
	}

	html, err := share.RenderPage(params)
	if err != nil {
		r.logger.Error().Err(err).Str("plan_id", c.Params("planID")).Msg("Share page render failed")
		return fiber.NewError(fiber.StatusInternalServerError, "share page unavailable")
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	c.Set("Cache-Control", "public, max-age=3600")
	return c.Send(html)
}

// webhook acknowledges platform event deliveries.
func (r *Router) webhook(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
	}

	r.logger.Info().
		Str("event", "webhook_received").
		Int("bytes", len(c.Body())).
		Msg("Webhook received")

	return c.JSON(fiber.Map{"success": true})
}

func (r *Router) listPlans(c *fiber.Ctx) error {
	if r.planService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "plan service unavailable")
	}

	var list []models.Plan
	switch c.Query("status") {
	case "":
		list = r.planService.Plans()
	case "planned":
		list = r.planService.Active()
	case "closed":
		list = r.planService.Closed()
	default:
		return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
	}

	if list == nil {
		list = []models.Plan{}
	}
	return c.JSON(list)
}

func (r *Router) createPlan(c *fiber.Ctx) error {
	if r.planService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "plan service unavailable")
	}

	var draft models.Draft
	if err := c.BodyParser(&draft); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	plan, err := r.planService.Create(ctx, draft)
	if err != nil {
		return planError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (r *Router) closePlan(c *fiber.Ctx) error {
	if r.planService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "plan service unavailable")
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	result, err := models.ParseResult(body.Result)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := r.planService.Close(ctx, c.Params("planID"), result); err != nil {
		return planError(err)
	}
	return c.JSON(fiber.Map{"status": "closed"})
}

func (r *Router) deletePlan(c *fiber.Ctx) error {
	if r.planService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "plan service unavailable")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := r.planService.Remove(ctx, c.Params("planID")); err != nil {
		return planError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// planMetadata serves the certificate attribute document for a plan in
// the current view.
func (r *Router) planMetadata(c *fiber.Ctx) error {
	if r.planService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "plan service unavailable")
	}

	planID := c.Params("planID")
	for _, p := range r.planService.Plans() {
		if p.ID == planID {
			meta := share.CommitmentMetadata(p)
			meta.Image = share.CardImageURL(c.BaseURL(), share.CardParamsFromPlan(p))
			return c.JSON(meta)
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "plan not found")
}

// planError maps domain errors onto HTTP statuses.
func planError(err error) error {
	switch {
	case errs.Is(err, errs.ErrNotAuthenticated):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errs.Is(err, errs.ErrPlanNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errs.Is(err, errs.ErrInvalidResult), errs.Is(err, errs.ErrInvalidDraft):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
