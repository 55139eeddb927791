// Package sample holds the demo datasets served when the hotel API cannot be
// reached, and by the local stand-in API. Dates are laid out relative to the
// supplied clock so the data stays plausible on any day.
package sample

import (
	"hoteldesk/pkg/model"
	"math"
	"time"
)

func Rooms() []model.Room {
	return []model.Room{
		{ID: 1, Number: "101", Floor: 1, Type: "Standard King", Status: model.RoomAvailable, Price: 120,
			Features: []string{"King Bed", "Wi-Fi", "TV", "Air Conditioning"}},
		{ID: 2, Number: "102", Floor: 1, Type: "Standard Twin", Status: model.RoomOccupied, Price: 120,
			Features: []string{"Twin Beds", "Wi-Fi", "TV", "Air Conditioning"}},
		{ID: 3, Number: "103", Floor: 1, Type: "Deluxe King", Status: model.RoomCleaning, Price: 150,
			Features: []string{"King Bed", "Wi-Fi", "TV", "Mini Bar", "Balcony"}},
		{ID: 4, Number: "201", Floor: 2, Type: "Deluxe Twin", Status: model.RoomAvailable, Price: 150,
			Features: []string{"Twin Beds", "Wi-Fi", "TV", "Mini Bar", "Balcony"}},
		{ID: 5, Number: "202", Floor: 2, Type: "Executive Suite", Status: model.RoomReserved, Price: 250,
			Features: []string{"King Bed", "Sofa", "Wi-Fi", "TV", "Mini Bar", "Balcony", "Jacuzzi"}},
		{ID: 6, Number: "203", Floor: 2, Type: "Executive Suite", Status: model.RoomMaintenance, Price: 250,
			Features: []string{"King Bed", "Sofa", "Wi-Fi", "TV", "Mini Bar", "Balcony", "Jacuzzi"}},
		{ID: 7, Number: "301", Floor: 3, Type: "Presidential Suite", Status: model.RoomAvailable, Price: 500,
			Features: []string{"King Bed", "Living Room", "Dining Area", "Wi-Fi", "TV", "Mini Bar", "Balcony", "Jacuzzi"}},
		{ID: 8, Number: "302", Floor: 3, Type: "Deluxe King", Status: model.RoomAvailable, Price: 150,
			Features: []string{"King Bed", "Wi-Fi", "TV", "Mini Bar", "Balcony"}},
	}
}

func Reservations(now time.Time) []model.Reservation {
	return []model.Reservation{
		{ID: 1, ReservationNumber: "RES2301001", GuestName: "John Smith", RoomNumber: room("101"), RoomType: "Deluxe King",
			CheckInDate: day(now, -10), CheckOutDate: day(now, -5), Status: model.ReservationCheckedOut, TotalAmount: 750},
		{ID: 2, ReservationNumber: "RES2301002", GuestName: "Jane Doe", RoomNumber: room("205"), RoomType: "Standard Queen",
			CheckInDate: day(now, 0), CheckOutDate: day(now, 3), Status: model.ReservationCheckedIn, TotalAmount: 500},
		{ID: 3, ReservationNumber: "RES2301003", GuestName: "Robert Johnson", RoomNumber: room("310"), RoomType: "Executive Suite",
			CheckInDate: day(now, 0), CheckOutDate: day(now, 5), Status: model.ReservationConfirmed, TotalAmount: 1200},
		{ID: 4, ReservationNumber: "RES2301004", GuestName: "Sarah Williams", RoomType: "Deluxe Twin",
			CheckInDate: day(now, 14), CheckOutDate: day(now, 20), Status: model.ReservationPending, TotalAmount: 900},
		{ID: 5, ReservationNumber: "RES2301005", GuestName: "Michael Brown", RoomNumber: room("402"), RoomType: "Standard King",
			CheckInDate: day(now, 1), CheckOutDate: day(now, 5), Status: model.ReservationConfirmed, TotalAmount: 650},
	}
}

// RecentReservations is the newest-first list shown on the dashboard.
func RecentReservations(now time.Time) []model.Reservation {
	all := Reservations(now)
	out := make([]model.Reservation, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		r := all[i]
		r.RoomType = ""
		r.TotalAmount = 0
		out = append(out, r)
	}
	return out
}

func TodayArrivals(now time.Time) []model.Reservation {
	return []model.Reservation{
		{ID: 3, ReservationNumber: "RES2301003", GuestName: "Robert Johnson", RoomNumber: room("310"),
			CheckInDate: day(now, 0), CheckOutDate: day(now, 5), Status: model.ReservationConfirmed, Nights: 5},
		{ID: 2, ReservationNumber: "RES2301002", GuestName: "Jane Doe", RoomNumber: room("205"),
			CheckInDate: day(now, 0), CheckOutDate: day(now, 3), Status: model.ReservationConfirmed, Nights: 3},
		{ID: 6, ReservationNumber: "RES2301006", GuestName: "Emily Davis",
			CheckInDate: day(now, 0), CheckOutDate: day(now, 2), Status: model.ReservationPending, Nights: 2},
	}
}

func Invoices() []model.Invoice {
	return []model.Invoice{
		{ID: 1, InvoiceNumber: "INV-2023-001", GuestName: "John Smith", ReservationID: 1,
			IssueDate: "2023-01-15", DueDate: "2023-01-20", TotalAmount: 750, Status: model.InvoicePaid},
		{ID: 2, InvoiceNumber: "INV-2023-002", GuestName: "Jane Doe", ReservationID: 2,
			IssueDate: "2023-01-18", DueDate: "2023-01-25", TotalAmount: 500, Status: model.InvoicePending},
		{ID: 3, InvoiceNumber: "INV-2023-003", GuestName: "Robert Johnson", ReservationID: 3,
			IssueDate: "2023-01-20", DueDate: "2023-01-28", TotalAmount: 1200, Status: model.InvoicePending},
		{ID: 4, InvoiceNumber: "INV-2023-004", GuestName: "Sarah Williams", ReservationID: 4,
			IssueDate: "2023-01-22", DueDate: "2023-02-05", TotalAmount: 900, Status: model.InvoiceDraft},
		{ID: 5, InvoiceNumber: "INV-2023-005", GuestName: "Michael Brown", ReservationID: 5,
			IssueDate: "2023-01-10", DueDate: "2023-01-17", TotalAmount: 650, Status: model.InvoiceOverdue},
	}
}

func Payments() []model.Payment {
	return []model.Payment{
		{ID: 1, TransactionID: "TXN-2023-001", GuestName: "John Smith", InvoiceID: invoice(1),
			PaymentMethod: model.MethodCreditCard, PaymentDate: "2023-01-18T14:30:00Z", Amount: 750, Status: model.PaymentCompleted},
		{ID: 2, TransactionID: "TXN-2023-002", GuestName: "Michael Brown", InvoiceID: invoice(5),
			PaymentMethod: model.MethodBankTransfer, PaymentDate: "2023-01-19T10:15:00Z", Amount: 650, Status: model.PaymentProcessing},
		{ID: 3, TransactionID: "TXN-2023-003", GuestName: "Emily Davis",
			PaymentMethod: model.MethodCash, PaymentDate: "2023-01-20T16:45:00Z", Amount: 300, Status: model.PaymentCompleted},
		{ID: 4, TransactionID: "TXN-2023-004", GuestName: "David Wilson",
			PaymentMethod: model.MethodMobileMoney, PaymentDate: "2023-01-21T09:20:00Z", Amount: 450, Status: model.PaymentFailed},
		{ID: 5, TransactionID: "TXN-2023-005", GuestName: "Sarah Williams", InvoiceID: invoice(4),
			PaymentMethod: model.MethodCreditCard, PaymentDate: "2023-01-22T11:10:00Z", Amount: 900, Status: model.PaymentRefunded},
	}
}

// Occupancy covers the 30 days ending today.
func Occupancy(now time.Time) *model.OccupancyStats {
	series := make([]model.OccupancyPoint, 30)
	for i := range series {
		v := float64(60 + (i*7)%30)
		series[i] = model.OccupancyPoint{Date: day(now, i-29), OccupancyRate: v, OccupiedRooms: v}
	}
	return &model.OccupancyStats{
		OccupancyRate: 72.5,
		TotalRooms:    100,
		OccupiedRooms: 72.5,
		TimeSeries:    series,
	}
}

// Revenue covers the 30 days ending today.
func Revenue(now time.Time) *model.RevenueStats {
	series := make([]model.RevenuePoint, 30)
	for i := range series {
		series[i] = model.RevenuePoint{Date: day(now, i-29), Revenue: float64(3000 + (i*397)%3000)}
	}
	return &model.RevenueStats{
		TotalRevenue:        125000,
		AverageDailyRevenue: 4166.67,
		PaymentMethods: map[string]model.PaymentMethodStats{
			string(model.MethodCreditCard):   {Count: 150, Total: 75000},
			string(model.MethodCash):         {Count: 50, Total: 25000},
			string(model.MethodBankTransfer): {Count: 30, Total: 15000},
			string(model.MethodMobileMoney):  {Count: 20, Total: 10000},
		},
		TimeSeries: series,
	}
}

// Guests covers the 12 months ending this month, keyed "YYYY-MM".
func Guests(now time.Time) *model.GuestStats {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	series := make([]model.GuestPoint, 12)
	for i := range series {
		series[i] = model.GuestPoint{
			Date:          first.AddDate(0, i-11, 0).Format("2006-01"),
			UniqueGuests:  30 + (i*7)%20,
			AvgPartySize:  round2(1.8 + float64(i%5)*0.16),
			AvgStayLength: round2(3 + float64(i%4)*0.5),
		}
	}
	return &model.GuestStats{
		TotalGuests:       450,
		NewGuests:         150,
		ReturningGuests:   300,
		AvgStayLength:     3.5,
		AvgPartySize:      2.2,
		GuestDemographics: model.GuestDemographics{Adults: 380, Children: 120},
		TimeSeries:        series,
	}
}

var occupancyHistory = []float64{
	65, 68, 70, 72, 75, 78, 80, 82, 80, 78,
	75, 72, 70, 68, 65, 63, 60, 58, 60, 63,
	65, 68, 70, 72, 75, 78, 80, 82, 80, 78,
}

var revenueHistory = []float64{
	85000, 90000, 95000, 100000, 110000, 120000,
	125000, 130000, 125000, 120000, 115000, 125000,
}

// Dashboard is the static summary shown when the live figures cannot be built.
func Dashboard() *model.DashboardStats {
	occ := make([]model.OccupancyHistory, len(occupancyHistory))
	for i, rate := range occupancyHistory {
		occ[i] = model.OccupancyHistory{
			Date: time.Date(2023, time.January, i+1, 0, 0, 0, 0, time.UTC).Format(model.DayLayout),
			Rate: rate,
		}
	}
	rev := make([]model.RevenueHistory, len(revenueHistory))
	for i, amount := range revenueHistory {
		rev[i] = model.RevenueHistory{Month: time.Month(i + 1).String()[:3], Amount: amount}
	}

	return &model.DashboardStats{
		Occupancy: model.OccupancySummary{
			Rate:    72,
			Trend:   model.Trend{Direction: model.TrendUp, Value: "5%"},
			History: occ,
		},
		Revenue: model.RevenueSummary{
			Total:   125000,
			Trend:   model.Trend{Direction: model.TrendUp, Value: "12%"},
			History: rev,
		},
		Reservations: model.CountSummary{Total: 450, Trend: model.Trend{Direction: model.TrendUp, Value: "8%"}},
		Guests:       model.CountSummary{Total: 320, Trend: model.Trend{Direction: model.TrendUp, Value: "5%"}},
	}
}

func day(now time.Time, offset int) string {
	return model.FormatDay(now.AddDate(0, 0, offset))
}

func room(number string) *string { return &number }

func invoice(id int64) *int64 { return &id }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
