package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/phpdave11/gofpdf"
)

// TicketDetailsStore loads the trip or car information printed on a ticket
type TicketDetailsStore interface {
	GetTicketDetails(ctx context.Context, ref models.EntityRef) (*models.TicketDetails, error)
}

// TicketService renders e-tickets for paid bookings
type TicketService struct {
	bookings database.BookingStore
	details  TicketDetailsStore
}

// NewTicketService creates a new TicketService
func NewTicketService(bookings database.BookingStore, details TicketDetailsStore) *TicketService {
	return &TicketService{bookings: bookings, details: details}
}

// GenerateTicket returns the PDF bytes and a file name. Only paid bookings have tickets.
func (s *TicketService) GenerateTicket(ctx context.Context, bookingID int64) ([]byte, string, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if booking == nil {
		return nil, "", ErrBookingNotFound
	}
	if booking.Status != models.BookingStatusPaid {
		return nil, "", ErrBookingNotPaid
	}

	details, err := s.details.GetTicketDetails(ctx, booking.Entity())
	if err != nil {
		return nil, "", err
	}
	if details == nil {
		details = &models.TicketDetails{}
	}

	pdf, err := renderTicket(booking, details)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render ticket: %w", err)
	}
	return pdf, "IHUTE_" + booking.BookingReference + ".pdf", nil
}

func renderTicket(b *models.Booking, d *models.TicketDetails) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("IHUTE e-ticket "+b.BookingReference, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "IHUTE E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Courier", "B", 14)
	pdf.Cell(0, 8, b.BookingReference)
	pdf.Ln(10)

	route := "-"
	if d.FromCity != nil && d.ToCity != nil {
		route = *d.FromCity + " -> " + *d.ToCity
	}
	departure := "-"
	if d.DepartureAt != nil {
		departure = d.DepartureAt.Format("2006-01-02 15:04")
	}
	fare := "-"
	if d.PriceRWF != nil {
		fare = strconv.FormatInt(*d.PriceRWF*int64(b.NumSeats), 10) + " RWF"
	}

	rows := [][2]string{
		{"Passenger", b.PassengerName},
		{"Phone", b.PassengerPhone},
		{"Seats", strconv.Itoa(b.NumSeats)},
		{"Operator", orDash(d.Operator)},
		{"Vehicle", orDash(d.PlateNumber) + " (" + orDash(d.VehicleType) + ")"},
		{"Route", route},
		{"Departure", departure},
		{"Fare", fare},
	}

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(35, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Present this ticket and a valid ID when boarding. Valid for the seats and departure shown above.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
