package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/repositories"
	"github.com/yigit/tutorledger/internal/pkg/websocket"
)

// LedgerNotifier is told about ledger changes once they are stored
type LedgerNotifier interface {
	Publish(event websocket.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(websocket.Event) {}

func notifierOrNop(n LedgerNotifier) LedgerNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// publishForStudent addresses an event to the student's parent. A lookup failure only
// costs the notification.
func publishForStudent(ctx context.Context, n LedgerNotifier, students repositories.IStudentRepository, logger zerolog.Logger, eventType string, studentID int64, data interface{}) {
	if _, ok := n.(nopNotifier); ok {
		return
	}
	student, err := students.GetByID(ctx, studentID)
	if err != nil {
		logger.Warn().Err(err).Int64("studentID", studentID).Str("type", eventType).Msg("Ledger event not published")
		return
	}
	n.Publish(websocket.Event{
		Type:      eventType,
		StudentID: studentID,
		ParentID:  student.ParentID,
		Data:      data,
	})
}
