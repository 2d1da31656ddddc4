package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/tutorledger/internal/app/auth"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/pkg/websocket"
)

type recordingNotifier struct {
	events []websocket.Event
}

func (r *recordingNotifier) Publish(e websocket.Event) {
	r.events = append(r.events, e)
}

func TestLedgerEventsAreAddressedToTheParent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	rec := &recordingNotifier{}
	opts := defaultOptions()
	opts.Notifier = rec

	sessions := NewSessionService(f.repos, auth.NewAuthorizationService(), opts, nopLogger)
	students := NewStudentService(f.repos, f.tx, auth.NewAuthorizationService(), opts, nopLogger)

	created, err := sessions.CreateSession(ctx, teacherOf(f), &dto.CreateSessionRequest{
		StudentID: f.sophie.ID, Date: "2024-03-04", DurationMinutes: 60,
	})
	require.NoError(t, err)
	_, err = sessions.TogglePaid(ctx, teacherOf(f), created.Session.ID)
	require.NoError(t, err)
	_, err = students.UpdateDefaultPrice(ctx, teacherOf(f), f.sophie.ID, &dto.UpdateStudentPriceRequest{DefaultPrice: "30"})
	require.NoError(t, err)

	require.Len(t, rec.events, 3)
	assert.Equal(t, websocket.EventSessionCreated, rec.events[0].Type)
	assert.Equal(t, websocket.EventSessionPaidChanged, rec.events[1].Type)
	assert.Equal(t, websocket.EventPriceChanged, rec.events[2].Type)
	for _, e := range rec.events {
		assert.Equal(t, f.sophie.ID, e.StudentID)
		assert.Equal(t, f.parentA.ID, e.ParentID)
	}

	paid, ok := rec.events[1].Data.(*dto.SessionLedgerResponse)
	require.True(t, ok)
	assert.True(t, paid.Session.Paid)
}

func TestNoEventOnRejectedChange(t *testing.T) {
	f := newFixture()
	rec := &recordingNotifier{}
	opts := defaultOptions()
	opts.Notifier = rec
	sessions := NewSessionService(f.repos, auth.NewAuthorizationService(), opts, nopLogger)

	_, err := sessions.CreateSession(context.Background(), parentOf(f.parentA), &dto.CreateSessionRequest{
		StudentID: f.sophie.ID, Date: "2024-03-04", DurationMinutes: 60,
	})
	require.Error(t, err)
	assert.Empty(t, rec.events)
}
