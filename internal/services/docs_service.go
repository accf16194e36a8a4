package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// DocsService menghasilkan PDF e-ticket untuk booking yang sudah accepted.
type DocsService struct {
	Trips     domain.TripOfferRepository
	Bookings  domain.BookingRequestRepository
	Users     domain.UserRepository
	RequestID string
	Loader    func(int64) (ticketDocData, error)
}

type ticketDocData struct {
	BookingID     int64
	TripID        int64
	PassengerName string
	DriverName    string
	Seats         int
	RouteFrom     string
	RouteTo       string
	DepartureAt   time.Time
	PricePerSeat  int64
	TotalAmount   int64
}

func (s DocsService) GenerateETicket(bookingID int64) ([]byte, string, error) {
	data, err := s.loadTicketDocData(bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(data)
}

func (s DocsService) loadTicketDocData(bookingID int64) (ticketDocData, error) {
	if s.Loader != nil {
		return s.Loader(bookingID)
	}
	var out ticketDocData

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return out, err
	}
	if b.Status != models.BookingStatusAccepted {
		return out, domain.InvalidStateError{Current: string(b.Status), Attempted: "generate e-ticket"}
	}
	t, err := s.Trips.GetByID(b.TripID)
	if err != nil {
		return out, err
	}

	out.BookingID = b.ID
	out.TripID = t.ID
	out.Seats = b.Seats
	out.RouteFrom = t.RouteFrom
	out.RouteTo = t.RouteTo
	out.DepartureAt = t.DepartureAt
	out.PricePerSeat = t.PricePerSeat
	out.TotalAmount = b.TotalAmount
	if out.TotalAmount == 0 {
		out.TotalAmount = t.PricePerSeat * int64(b.Seats)
	}

	if s.Users != nil {
		if p, perr := s.Users.GetByID(b.PassengerID); perr == nil {
			out.PassengerName = p.Name
		}
		if d, derr := s.Users.GetByID(t.DriverID); derr == nil {
			out.DriverName = d.Name
		}
	}
	return out, nil
}

func buildETicketPDF(d ticketDocData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Nama Penumpang : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("Driver         : %s", safe(d.DriverName, "-")),
		fmt.Sprintf("Rute           : %s -> %s", safe(d.RouteFrom, "-"), safe(d.RouteTo, "-")),
		fmt.Sprintf("Berangkat      : %s", d.DepartureAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Jumlah Seat    : %d", d.Seats),
		fmt.Sprintf("Harga per Seat : %s", utils.FormatRupiah(d.PricePerSeat)),
		fmt.Sprintf("Total          : %s", utils.FormatRupiah(d.TotalAmount)),
		fmt.Sprintf("Kode Booking   : #%d", d.BookingID),
		fmt.Sprintf("Kode Ticket    : TCK-%d-%d", d.TripID, d.BookingID),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Catatan: E-ticket ini berlaku untuk satu booking. Harap tunjukkan saat keberangkatan.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", d.BookingID, safeFilenamePart(d.PassengerName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
