package routes

import (
	"errors"
	"strconv"
	"strings"

	"pasr-server/models"
	"pasr-server/services"
	"pasr-server/utils"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

const noAddressDetails = "Location found but no address details available."

// SetLocation stores a browser-reported point on the session and, for a
// signed-in customer, schedules enrichment of their profile address.
func (h *Handlers) SetLocation(ctx iris.Context) {
	latRaw, lngRaw := readCoordinatePair(ctx)
	lat, latOK := services.ParseCoordinate(latRaw)
	lng, lngOK := services.ParseCoordinate(lngRaw)
	point, valid := models.NewGeoPoint(lng, lat)
	if !latOK || !lngOK || !valid {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid coordinates"})
		return
	}

	sid := utils.SessionID(ctx)
	if sid == "" {
		utils.InternalError(ctx, errors.New("no session"), "set location")
		return
	}
	if err := h.Locations.Save(ctx.Request().Context(), sid, point); err != nil {
		utils.InternalError(ctx, err, "set location")
		return
	}

	if c := utils.CurrentCustomer(ctx); c != nil {
		if err := h.Enrichment.EnqueueProfileEnrich(ctx.Request().Context(), c.ID, point); err != nil {
			golog.Warnf("profile enrichment for %s not scheduled: %v", c.ID, err)
		}
	}

	ctx.JSON(iris.Map{"message": "Location saved"})
}

// GetAddress reverse-geocodes ?lat=&lon= into a display address.
func (h *Handlers) GetAddress(ctx iris.Context) {
	lat, latOK := services.ParseCoordinate(ctx.URLParam("lat"))
	lng, lngOK := services.ParseCoordinate(ctx.URLParam("lon"))
	point, valid := models.NewGeoPoint(lng, lat)
	if !latOK || !lngOK || !valid {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"error": "Missing latitude or longitude"})
		return
	}

	res, err := h.Geocoder.Reverse(ctx.Request().Context(), point)
	if errors.Is(err, services.ErrGeocodeNoMatch) {
		ctx.JSON(iris.Map{"address": noAddressDetails})
		return
	}
	if err != nil {
		golog.Errorf("reverse geocoding %v: %v", point.Coordinates(), err)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "Failed to fetch address"})
		return
	}
	ctx.JSON(iris.Map{"address": res.PlaceName})
}

// resolvePoint applies the location priority to the current request. The
// query parameters are lat and lng.
func (h *Handlers) resolvePoint(ctx iris.Context) (*models.GeoPoint, services.LocationSource) {
	in := services.LocationInputs{
		QueryLatitude:  ctx.URLParam("lat"),
		QueryLongitude: ctx.URLParam("lng"),
	}
	if sid := utils.SessionID(ctx); sid != "" && h.Locations != nil {
		p, err := h.Locations.Load(ctx.Request().Context(), sid)
		if err != nil {
			golog.Warnf("session location unavailable: %v", err)
		}
		in.Session = p
	}
	if p, ok := utils.CurrentCustomer(ctx).ProfilePoint(); ok {
		in.Profile = &p
	}

	p, source := services.ResolveLocation(in)
	if source == services.SourceNone {
		return nil, source
	}
	return &p, source
}

// readCoordinatePair accepts {latitude, longitude} as JSON numbers or
// strings, or as form fields.
func readCoordinatePair(ctx iris.Context) (string, string) {
	if !strings.HasPrefix(ctx.GetContentTypeRequested(), "application/json") {
		return ctx.FormValue("latitude"), ctx.FormValue("longitude")
	}
	var body map[string]interface{}
	if err := ctx.ReadJSON(&body); err != nil {
		return "", ""
	}
	return jsonScalar(body["latitude"]), jsonScalar(body["longitude"])
}

func jsonScalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
