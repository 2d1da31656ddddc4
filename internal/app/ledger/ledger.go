// Package ledger derives paid and unpaid totals from tutoring session rows.
//
// Every function here is pure. Totals are recomputed from the sessions each time
// and are never stored anywhere, so they cannot drift from the rows they describe.
package ledger

import (
	"sort"

	"github.com/yigit/tutorledger/internal/app/models"
)

// StudentLedger is the derived billing state of one student
type StudentLedger struct {
	StudentID    int64        `json:"studentId"`
	AmountDue    models.Money `json:"amountDue" swaggertype:"number"`
	AmountPaid   models.Money `json:"amountPaid" swaggertype:"number"`
	Total        models.Money `json:"total" swaggertype:"number"`
	SessionCount int          `json:"sessionCount"`
	UnpaidCount  int          `json:"unpaidCount"`
}

// GlobalTotals aggregates every student's ledger for teacher reporting
type GlobalTotals struct {
	TotalDue     models.Money `json:"totalDue" swaggertype:"number"`
	TotalPaid    models.Money `json:"totalPaid" swaggertype:"number"`
	Total        models.Money `json:"total" swaggertype:"number"`
	StudentCount int          `json:"studentCount"`
	SessionCount int          `json:"sessionCount"`
	UnpaidCount  int          `json:"unpaidCount"`
}

// AmountDue sums the amount of every unpaid session
func AmountDue(sessions []models.Session) models.Money {
	var sum models.Money
	for _, s := range sessions {
		if !s.Paid {
			sum += s.Amount
		}
	}
	return sum
}

// AmountPaid sums the amount of every paid session
func AmountPaid(sessions []models.Session) models.Money {
	var sum models.Money
	for _, s := range sessions {
		if s.Paid {
			sum += s.Amount
		}
	}
	return sum
}

// ForStudent builds the ledger of studentID. Sessions of other students are ignored.
func ForStudent(studentID int64, sessions []models.Session) StudentLedger {
	l := StudentLedger{StudentID: studentID}
	for _, s := range sessions {
		if s.StudentID != studentID {
			continue
		}
		l.SessionCount++
		if s.Paid {
			l.AmountPaid += s.Amount
		} else {
			l.AmountDue += s.Amount
			l.UnpaidCount++
		}
	}
	l.Total = l.AmountDue + l.AmountPaid
	return l
}

// ByStudent builds one ledger per student id, including students without sessions.
// The result is ordered like studentIDs.
func ByStudent(studentIDs []int64, sessions []models.Session) []StudentLedger {
	grouped := GroupByStudent(sessions)
	ledgers := make([]StudentLedger, 0, len(studentIDs))
	for _, id := range studentIDs {
		ledgers = append(ledgers, ForStudent(id, grouped[id]))
	}
	return ledgers
}

// Totals sums per-student ledgers into the global view
func Totals(ledgers []StudentLedger) GlobalTotals {
	var t GlobalTotals
	for _, l := range ledgers {
		t.TotalDue += l.AmountDue
		t.TotalPaid += l.AmountPaid
		t.SessionCount += l.SessionCount
		t.UnpaidCount += l.UnpaidCount
	}
	t.StudentCount = len(ledgers)
	t.Total = t.TotalDue + t.TotalPaid
	return t
}

// GroupByStudent indexes sessions by their student id
func GroupByStudent(sessions []models.Session) map[int64][]models.Session {
	grouped := make(map[int64][]models.Session)
	for _, s := range sessions {
		grouped[s.StudentID] = append(grouped[s.StudentID], s)
	}
	return grouped
}

// Unpaid returns the unpaid sessions, oldest first, ties broken by id
func Unpaid(sessions []models.Session) []models.Session {
	out := make([]models.Session, 0)
	for _, s := range sessions {
		if !s.Paid {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
