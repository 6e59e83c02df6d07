package controllers

import (
	"net/http"
	"strings"

	"github.com/sarishop/sarishop-backend/api/responses"
	"github.com/sarishop/sarishop-backend/api/validators"
	shopsvc "github.com/sarishop/sarishop-backend/internal/shop"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/logger"
	"github.com/sarishop/sarishop-backend/pkg/types"
)

// GetShopSettings returns the storefront configuration.
func GetShopSettings(svc shopsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		settings, err := svc.GetSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}

type updateShopSettingsRequest struct {
	ShopName              *string        `json:"shop_name,omitempty" validate:"omitempty,min=1,max=100"`
	Description           *string        `json:"description,omitempty" validate:"omitempty,max=500"`
	Currency              *string        `json:"currency,omitempty"`
	TaxRate               *string        `json:"tax_rate,omitempty"`
	ShippingCost          *string        `json:"shipping_cost,omitempty"`
	FreeShippingThreshold *string        `json:"free_shipping_threshold,omitempty"`
	Contact               *types.Contact `json:"contact,omitempty"`
	Social                *types.Social  `json:"social,omitempty"`
}

// AdminUpdateShopSettings applies a partial update to the shop configuration.
func AdminUpdateShopSettings(svc shopsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		var payload updateShopSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := shopsvc.UpdateSettingsInput{
			ShopName:    payload.ShopName,
			Description: payload.Description,
			Currency:    payload.Currency,
			Contact:     payload.Contact,
			Social:      payload.Social,
		}
		if payload.TaxRate != nil {
			rate, err := parseMoney(*payload.TaxRate, "tax_rate")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.TaxRate = rate
		}
		if payload.ShippingCost != nil {
			cost, err := parseMoney(*payload.ShippingCost, "shipping_cost")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ShippingCost = cost
		}
		if payload.FreeShippingThreshold != nil {
			threshold, err := parseMoney(*payload.FreeShippingThreshold, "free_shipping_threshold")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.FreeShippingThreshold = threshold
		}

		settings, err := svc.UpdateSettings(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}

type assetRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// AdminSetShopLogo stores the logo asset URL.
func AdminSetShopLogo(svc shopsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return assetHandler(svc, logg, func(r *http.Request, url string) (*shopsvc.SettingsDTO, error) {
		return svc.SetLogo(r.Context(), url)
	})
}

// AdminSetShopFavicon stores the favicon asset URL.
func AdminSetShopFavicon(svc shopsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return assetHandler(svc, logg, func(r *http.Request, url string) (*shopsvc.SettingsDTO, error) {
		return svc.SetFavicon(r.Context(), url)
	})
}

func assetHandler(svc shopsvc.Service, logg *logger.Logger, apply func(*http.Request, string) (*shopsvc.SettingsDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		var payload assetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := apply(r, strings.TrimSpace(payload.URL))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}

type themeRequest struct {
	PrimaryColor   *string `json:"primary_color,omitempty"`
	SecondaryColor *string `json:"secondary_color,omitempty"`
	AccentColor    *string `json:"accent_color,omitempty"`
}

// AdminUpdateShopTheme mutates the storefront theme colors.
func AdminUpdateShopTheme(svc shopsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		var payload themeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.UpdateTheme(r.Context(), shopsvc.ThemeInput{
			PrimaryColor:   payload.PrimaryColor,
			SecondaryColor: payload.SecondaryColor,
			AccentColor:    payload.AccentColor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}

type maintenanceRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// AdminSetMaintenanceMode toggles the storefront maintenance flag.
func AdminSetMaintenanceMode(svc shopsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		var payload maintenanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.SetMaintenanceMode(r.Context(), *payload.Enabled)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}

// AdminShopStats returns the admin dashboard aggregates.
func AdminShopStats(svc shopsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
