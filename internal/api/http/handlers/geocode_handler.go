package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civicguard/internal/api/dto"
	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/geo"
	apperrors "github.com/spec-kit/civicguard/pkg/util/errorutil"
)

// GeocodeHandler exposes a reverse-geocoding probe for operators.
type GeocodeHandler struct {
	resolver *geo.Resolver
}

// NewGeocodeHandler constructs handler.
func NewGeocodeHandler(resolver *geo.Resolver) *GeocodeHandler {
	return &GeocodeHandler{resolver: resolver}
}

// TestGeocode GET /test-geocode?lat=&lng= resolves coordinates and reports
// which provider answered.
func (h *GeocodeHandler) TestGeocode(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return apperrors.NewValidationError("lat must be a number", nil)
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return apperrors.NewValidationError("lng must be a number", nil)
	}

	address, provider := h.resolver.Resolve(c.UserContext(), &lat, &lng)
	return c.JSON(dto.GeocodeResponse{
		OK:       address != domain.UnknownAddress,
		Provider: provider,
		Address:  address,
	})
}
