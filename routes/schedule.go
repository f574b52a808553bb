package routes

import (
	"encoding/json"
	"errors"
	"strings"

	"pasr-server/services"
	"pasr-server/utils"

	"github.com/kataras/iris/v12"
)

// GetSchedule returns the stored availability of a provider the caller owns.
func (h *Handlers) GetSchedule(ctx iris.Context) {
	id := ctx.Params().Get("id")
	days, err := h.Calendars.Days(ctx.Request().Context(), id)
	if errors.Is(err, services.ErrInvalidListingID) {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "Invalid id")
		return
	}
	if err != nil {
		utils.InternalError(ctx, err, "load schedule")
		return
	}
	ctx.JSON(iris.Map{"id": id, "existingDays": days})
}

// SaveSchedule merges the submitted day list into the provider's calendar.
// The list comes either as the daysJson form field or as {"days": [...]}.
func (h *Handlers) SaveSchedule(ctx iris.Context) {
	id := ctx.Params().Get("id")
	raw, ok := readDays(ctx)
	if !ok {
		return
	}

	editor := utils.CurrentCustomer(ctx).ID
	_, err := h.Calendars.Merge(ctx.Request().Context(), id, raw, &editor)
	switch {
	case errors.Is(err, services.ErrInvalidListingID):
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "Invalid id")
	case errors.Is(err, services.ErrDaysNotArray):
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_days", "daysJson must be array")
	case err != nil:
		utils.InternalError(ctx, err, "save schedule")
	default:
		ctx.Redirect("/provider/"+id+"/profile", iris.StatusSeeOther)
	}
}

func readDays(ctx iris.Context) (json.RawMessage, bool) {
	var raw string
	if strings.HasPrefix(ctx.GetContentTypeRequested(), "application/json") {
		var body struct {
			Days json.RawMessage `json:"days"`
		}
		if err := ctx.ReadJSON(&body); err != nil {
			utils.JSONError(ctx, iris.StatusBadRequest, "invalid_days", "Malformed request body")
			return nil, false
		}
		raw = string(body.Days)
	} else {
		raw = ctx.FormValue("daysJson")
	}

	if strings.TrimSpace(raw) == "" || raw == "null" {
		utils.JSONError(ctx, iris.StatusBadRequest, "missing_days", "Missing daysJson")
		return nil, false
	}
	if !json.Valid([]byte(raw)) {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_days", "daysJson is not valid JSON")
		return nil, false
	}
	return json.RawMessage(raw), true
}
