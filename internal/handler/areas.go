package handler

import (
	"context"
	"net/http"

	"service-area-api/internal/models"

	"github.com/gin-gonic/gin"
	geojson "github.com/paulmach/go.geojson"
)

// AreaLister returns the active service areas
type AreaLister interface {
	Areas(ctx context.Context) ([]models.ServiceArea, error)
}

// AreaHandler serves the public service-area map data
type AreaHandler struct {
	areas AreaLister
}

// NewAreaHandler creates a new area handler
func NewAreaHandler(areas AreaLister) *AreaHandler {
	return &AreaHandler{areas: areas}
}

// Center is a map coordinate
type Center struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapArea is one circle rendered on the public map
type MapArea struct {
	City     string  `json:"city"`
	Center   Center  `json:"center"`
	RadiusKm float64 `json:"radius_km"`
	Color    string  `json:"color"`
}

// List handles GET /service-area/areas requests
//
//	@Summary	List active service areas for map rendering
//	@Tags		service-area
//	@Produce	json
//	@Success	200	{array}		MapArea
//	@Failure	503	{object}	map[string]string
//	@Router		/service-area/areas [get]
func (h *AreaHandler) List(c *gin.Context) {
	areas, err := h.areas.Areas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]MapArea, 0, len(areas))
	for _, a := range areas {
		resp = append(resp, MapArea{
			City:     a.CityName,
			Center:   Center{Lat: a.Latitude, Lng: a.Longitude},
			RadiusKm: a.RadiusKm,
			Color:    a.ColorHex,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GeoJSON handles GET /service-area/areas.geojson requests. Each area is a Point feature at
// its center; clients draw the circle from the radius_km property.
//
//	@Summary	Active service areas as a GeoJSON FeatureCollection
//	@Tags		service-area
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	503	{object}	map[string]string
//	@Router		/service-area/areas.geojson [get]
func (h *AreaHandler) GeoJSON(c *gin.Context) {
	areas, err := h.areas.Areas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, a := range areas {
		f := geojson.NewPointFeature([]float64{a.Longitude, a.Latitude})
		f.ID = a.ID
		f.SetProperty("city", a.CityName)
		f.SetProperty("radius_km", a.RadiusKm)
		f.SetProperty("color", a.ColorHex)
		f.SetProperty("sort_order", a.SortOrder)
		fc.AddFeature(f)
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}
