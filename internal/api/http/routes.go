package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"golfwatch/internal/forecast"
	"golfwatch/internal/reservation"
	"golfwatch/internal/settings"
	"golfwatch/internal/store"
	"golfwatch/internal/watch"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *watch.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		snap, err := service.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast data fetched yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read forecast table")
		}
		return c.JSON(fiber.Map{
			"fetchedAt": snap.FetchedAt,
			"days":      toRows(snap.Table),
		})
	})

	v1.Post("/forecast/refresh", func(c *fiber.Ctx) error {
		table, err := service.Refresh(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to refresh forecast: "+err.Error())
		}
		return c.JSON(fiber.Map{"days": toRows(table)})
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		rec, token, err := service.Settings(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to load settings")
		}
		return c.JSON(fiber.Map{
			"settings": rec,
			"token":    token,
		})
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsUpdate
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, token, err := service.UpdateSettings(c.Context(), settings.Settings{
			ReservedDate: req.ReservedDate,
			Emails:       req.Emails,
		}, req.Token)
		if err != nil {
			if errors.Is(err, settings.ErrConflict) {
				return fiber.NewError(fiber.StatusConflict, "settings changed since load; reload and retry")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to save settings")
		}

		return c.JSON(fiber.Map{
			"settings": rec,
			"token":    token,
		})
	})

	v1.Post("/check", func(c *fiber.Ctx) error {
		m, err := service.CheckReservation(c.Context())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast data fetched yet")
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		resp := fiber.Map{"result": m.Kind.String()}
		if m.Kind == reservation.Matched {
			resp["day"] = toRow(m.Day)
			resp["alerted"] = m.NeedsAlert()
		}
		return c.JSON(resp)
	})

	v1.Post("/report", func(c *fiber.Ctx) error {
		if err := service.SendReport(c.Context()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast data fetched yet")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to send report")
		}
		return c.JSON(fiber.Map{"status": "sent"})
	})
}

// settingsUpdate is the PUT /settings request body. The token is the one
// returned by the last load; an out-of-date token yields 409.
type settingsUpdate struct {
	ReservedDate string   `json:"reserved_date" validate:"omitempty,datetime=2006-01-02"`
	Emails       []string `json:"emails" validate:"required,min=1,dive,email"`
	Token        string   `json:"token"`
}

// dayRow renders one evaluated day the way the report table shows it.
type dayRow struct {
	Date     string  `json:"date"`
	Sky      string  `json:"sky"`
	PrecipMM float64 `json:"precipMm"`
	WindMS   float64 `json:"windMs"`
	Verdict  string  `json:"verdict"`
	Reason   string  `json:"reason"`
}

func toRow(d forecast.EvaluatedDay) dayRow {
	return dayRow{
		Date:     d.Date.Format("2006-01-02 (Mon)"),
		Sky:      d.Sky,
		PrecipMM: d.PrecipMM,
		WindMS:   d.WindMS,
		Verdict:  d.Verdict.Glyph(),
		Reason:   d.Verdict.ReasonText(),
	}
}

func toRows(t forecast.Table) []dayRow {
	rows := make([]dayRow, 0, len(t))
	for _, d := range t {
		rows = append(rows, toRow(d))
	}
	return rows
}
