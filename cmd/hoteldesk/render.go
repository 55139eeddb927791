package main

import (
	"encoding/json"
	"fmt"
	"hoteldesk/pkg/model"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints aligned columns with an upper-case header row.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func roomRows(rooms []model.Room) [][]string {
	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, []string{
			r.Number, strconv.Itoa(r.Floor), r.Type, string(r.Status), money(r.Price), strings.Join(r.Features, ", "),
		})
	}
	return rows
}

func reservationRows(reservations []model.Reservation) [][]string {
	rows := make([][]string, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, []string{
			r.ReservationNumber, r.GuestName, optional(r.RoomNumber), r.CheckInDate, r.CheckOutDate, string(r.Status), money(r.TotalAmount),
		})
	}
	return rows
}

func invoiceRows(invoices []model.Invoice) [][]string {
	rows := make([][]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, []string{
			inv.InvoiceNumber, inv.GuestName, strconv.FormatInt(inv.ReservationID, 10), inv.IssueDate, inv.DueDate, string(inv.Status), money(inv.TotalAmount),
		})
	}
	return rows
}

func paymentRows(payments []model.Payment) [][]string {
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			p.TransactionID, p.GuestName, optionalID(p.InvoiceID), string(p.PaymentMethod), p.PaymentDate, string(p.Status), money(p.Amount),
		})
	}
	return rows
}

func writeUser(w io.Writer, u *model.User) error {
	return writeTable(w, []string{"field", "value"}, [][]string{
		{"id", strconv.FormatInt(u.ID, 10)},
		{"name", u.FullName()},
		{"email", u.Email},
		{"role", string(u.Role)},
	})
}

func writeDashboard(w io.Writer, d *model.DashboardStats) error {
	return writeTable(w, []string{"metric", "value", "trend"}, [][]string{
		{"occupancy", strconv.FormatFloat(d.Occupancy.Rate, 'f', 1, 64) + "%", trend(d.Occupancy.Trend)},
		{"revenue", money(d.Revenue.Total), trend(d.Revenue.Trend)},
		{"reservations", strconv.Itoa(d.Reservations.Total), trend(d.Reservations.Trend)},
		{"guests", strconv.Itoa(d.Guests.Total), trend(d.Guests.Trend)},
	})
}

func trend(t model.Trend) string {
	switch t.Direction {
	case model.TrendUp:
		return "up " + t.Value
	case model.TrendDown:
		return "down " + t.Value
	default:
		return "flat"
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flatten renders a DRF field error, which may be a message or a list of them.
func flatten(v any) string {
	switch msgs := v.(type) {
	case []any:
		parts := make([]string, 0, len(msgs))
		for _, m := range msgs {
			parts = append(parts, fmt.Sprint(m))
		}
		return strings.Join(parts, "; ")
	case []string:
		return strings.Join(msgs, "; ")
	default:
		return fmt.Sprint(v)
	}
}
