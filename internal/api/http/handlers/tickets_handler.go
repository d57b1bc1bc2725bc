package handlers

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civicguard/internal/api/dto"
	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/media"
	"github.com/spec-kit/civicguard/internal/repository"
	"github.com/spec-kit/civicguard/internal/service"
	apperrors "github.com/spec-kit/civicguard/pkg/util/errorutil"
)

// TicketsHandler serves intake and ticket read endpoints.
type TicketsHandler struct {
	intake  *service.IntakeService
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(intake *service.IntakeService, tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{intake: intake, tickets: tickets}
}

// Intake POST /api/intake.
func (h *TicketsHandler) Intake(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("image file required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewUploadFailed(err)
	}
	defer file.Close()

	data := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(file, data); err != nil {
		return apperrors.NewUploadFailed(err)
	}

	input := service.IntakeInput{
		Data:        data,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Note:        formValue(c, "note"),
		Lat:         formFloat(c, "lat"),
		Lng:         formFloat(c, "lng"),
		Contact:     formValue(c, "contact"),
	}

	result, err := h.intake.Intake(c.UserContext(), input)
	if err != nil {
		return err
	}

	resp := dto.IntakeResponse{
		TicketView: dto.FromTicket(result.Ticket),
		Confidence: math.Round(result.Confidence*1000) / 1000,
		Note:       result.Note,
	}
	return c.JSON(resp)
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if ticket == nil {
		return apperrors.NewNotFound("ticket", map[string]any{"id": c.Params("id")})
	}
	return c.JSON(dto.FromTicket(ticket))
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.TicketStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("class")); raw != "" {
		class := domain.IssueClass(strings.ToLower(raw))
		filter.IssueClass = &class
	}

	count, items, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}

	views := make([]dto.TicketView, 0, len(items))
	for i := range items {
		views = append(views, dto.FromTicket(&items[i]))
	}
	return c.JSON(dto.TicketListResponse{Count: count, Items: views})
}

// Stats GET /api/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.tickets.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Upload POST /upload: validates the image and returns metadata plus the
// sha256 hash callers can use to de-duplicate resubmissions.
func (h *TicketsHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewUploadFailed(err)
	}
	defer file.Close()

	data := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(file, data); err != nil {
		return apperrors.NewUploadFailed(err)
	}

	contentType, err := media.ValidateImage(data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	resp := dto.UploadResponse{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        len(data),
		SHA256:      media.SHA256Hex(data),
	}
	if lat, lng, ok := media.NewExifExtractor().ExtractGPS(data); ok {
		resp.GPS = &dto.GPSView{Lat: lat, Lng: lng}
	}
	return c.JSON(resp)
}

func formValue(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.FormValue(key))
	if val == "" {
		return nil
	}
	return &val
}

func formFloat(c *fiber.Ctx, key string) *float64 {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
