package chatbot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/terrabook/pitch-booking-backend/internal/reservation"
	"github.com/terrabook/pitch-booking-backend/internal/terrain"
)

type createCall struct {
	userID  string
	terrain string
	date    time.Time
	start   string
}

type cancelCall struct {
	userID string
	date   time.Time
	start  string
}

// fakeReservations records calls and replays canned results.
type fakeReservations struct {
	creates   []createCall
	createErr error
	created   *reservation.Reservation

	cancels   []cancelCall
	cancelErr error

	modified  *reservation.Reservation
	modifyErr error

	found   *reservation.Reservation
	findErr error

	list []*reservation.Reservation

	slotFree  bool
	freeSlots []reservation.TimeSlot
	available []string
}

func (f *fakeReservations) CreateByTerrainName(_ context.Context, userID, terrainName string, date time.Time, start string) (*reservation.Reservation, error) {
	f.creates = append(f.creates, createCall{userID: userID, terrain: terrainName, date: date, start: start})
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeReservations) ListForUser(context.Context, string) ([]*reservation.Reservation, error) {
	return f.list, nil
}

func (f *fakeReservations) FindAt(context.Context, string, time.Time, string) (*reservation.Reservation, error) {
	return f.found, f.findErr
}

func (f *fakeReservations) FindOnDate(context.Context, string, time.Time) (*reservation.Reservation, error) {
	return f.found, f.findErr
}

func (f *fakeReservations) ModifyStart(context.Context, string, time.Time, string, string) (*reservation.Reservation, error) {
	return f.modified, f.modifyErr
}

func (f *fakeReservations) CancelAt(_ context.Context, userID string, date time.Time, start string) error {
	f.cancels = append(f.cancels, cancelCall{userID: userID, date: date, start: start})
	return f.cancelErr
}

func (f *fakeReservations) IsSlotFree(context.Context, string, time.Time, string) (bool, error) {
	return f.slotFree, nil
}

func (f *fakeReservations) FreeSlotsFor(context.Context, string, time.Time) ([]reservation.TimeSlot, error) {
	return f.freeSlots, nil
}

func (f *fakeReservations) AvailableTerrains(context.Context, time.Time, string) ([]string, error) {
	return f.available, nil
}

type fakeTerrains struct {
	byName map[string]*terrain.Terrain
}

func (f *fakeTerrains) GetByName(_ context.Context, name string) (*terrain.Terrain, error) {
	t, ok := f.byName[name]
	if !ok {
		return nil, terrain.ErrNotFound
	}
	return t, nil
}

type fakeRecs struct {
	text string
	err  error
}

func (f *fakeRecs) Popular(context.Context) (string, error)              { return f.text, f.err }
func (f *fakeRecs) Global(context.Context) (string, error)               { return f.text, f.err }
func (f *fakeRecs) Personalized(context.Context, string) (string, error) { return f.text, f.err }
func (f *fakeRecs) Hourly(context.Context, string) (string, error)       { return f.text, f.err }
func (f *fakeRecs) Times(context.Context, string) (string, error)        { return f.text, f.err }
func (f *fakeRecs) PriceBand(context.Context, string) (string, error)    { return f.text, f.err }
func (f *fakeRecs) Friends(context.Context, string) (string, error)      { return f.text, f.err }
func (f *fakeRecs) TopRated(context.Context) (string, error)             { return f.text, f.err }
func (f *fakeRecs) Promotions(context.Context) (string, error)           { return f.text, f.err }
func (f *fakeRecs) Weather(context.Context) (string, error)              { return f.text, f.err }
func (f *fakeRecs) ML(context.Context, string) (string, error)           { return f.text, f.err }
func (f *fakeRecs) Similar(context.Context, string) (string, error)      { return f.text, f.err }

type engineFixture struct {
	engine       *Engine
	reservations *fakeReservations
	terrains     *fakeTerrains
	recs         *fakeRecs
	sessions     *SessionStore
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		reservations: &fakeReservations{},
		terrains:     &fakeTerrains{byName: map[string]*terrain.Terrain{}},
		recs:         &fakeRecs{},
		sessions:     NewSessionStore(),
	}
	f.engine = NewEngine(
		newTestResolver(t),
		f.reservations,
		f.terrains,
		f.recs,
		f.sessions,
		zap.NewNop(),
	)
	return f
}

func webhookReq(intent string, params map[string]any, contexts ...Context) *WebhookRequest {
	return &WebhookRequest{
		Session: testSession,
		QueryResult: QueryResult{
			Parameters:     params,
			Intent:         Intent{DisplayName: intent},
			OutputContexts: contexts,
		},
	}
}

func TestHandleUnknownIntent(t *testing.T) {
	f := newEngineFixture(t)

	resp := f.engine.Handle(context.Background(), webhookReq("SomethingElse", nil))
	assert.Equal(t, msgNotUnderstood, resp.FulfillmentText)
}

func TestHandleRequiresLogin(t *testing.T) {
	f := newEngineFixture(t)

	resp := f.engine.Handle(context.Background(), webhookReq(intentDirectBooking, map[string]any{
		"terrain":       "Terrain Central",
		"relative-date": "demain",
		"time":          "18h",
	}))
	assert.Equal(t, msgNeedLogin, resp.FulfillmentText)
	assert.Empty(t, f.reservations.creates)
}

func TestDirectBookingHappyPath(t *testing.T) {
	f := newEngineFixture(t)
	f.sessions.Bind(testSession, "user-1")
	f.reservations.created = &reservation.Reservation{
		TerrainName: "Terrain Central",
		Start:       "18:00",
		End:         "19:30",
	}

	resp := f.engine.Handle(context.Background(), webhookReq(intentDirectBooking, map[string]any{
		"terrain":       "Terrain Central",
		"relative-date": "demain",
		"time":          "18h",
	}))

	require.Len(t, f.reservations.creates, 1)
	call := f.reservations.creates[0]
	assert.Equal(t, "user-1", call.userID)
	assert.Equal(t, "Terrain Central", call.terrain)
	assert.Equal(t, day(2026, time.March, 5), call.date)
	assert.Equal(t, "18:00", call.start)

	assert.Contains(t, resp.FulfillmentText, "Terrain Central")
	assert.Contains(t, resp.FulfillmentText, "5 mars 2026 à 18:00")
}

func TestDirectBookingConflictSuggestsFreeSlots(t *testing.T) {
	f := newEngineFixture(t)
	f.sessions.Bind(testSession, "user-1")
	f.reservations.createErr = reservation.ErrTimeConflict
	f.reservations.freeSlots = []reservation.TimeSlot{
		{Start: "08:00", End: "09:30"},
		{Start: "20:00", End: "21:30"},
	}

	resp := f.engine.Handle(context.Background(), webhookReq(intentDirectBooking, map[string]any{
		"terrain":       "Terrain Central",
		"relative-date": "demain",
		"time":          "18h",
	}))

	assert.Contains(t, resp.FulfillmentText, "déjà pris")
	assert.Contains(t, resp.FulfillmentText, "08:00")
	assert.Contains(t, resp.FulfillmentText, "20:00")
}

func TestConfirmBookingUsesContextSlot(t *testing.T) {
	f := newEngineFixture(t)
	f.reservations.created = &reservation.Reservation{
		TerrainName: "Terrain Nord",
		Start:       "10:00",
		End:         "11:30",
	}

	slot := slotParams{
		UserID:  "user-7",
		Terrain: "Terrain Nord",
		Date:    "2026-03-10",
		Start:   "10:00",
		Display: "10 mars 2026 à 10:00",
	}
	resp := f.engine.Handle(context.Background(), webhookReq(intentConfirmBooking, nil,
		outputContext(testSession, ctxTerrainChosen, defaultLifespan, slot),
	))

	require.Len(t, f.reservations.creates, 1)
	call := f.reservations.creates[0]
	assert.Equal(t, "user-7", call.userID)
	assert.Equal(t, "Terrain Nord", call.terrain)
	assert.Equal(t, day(2026, time.March, 10), call.date)
	assert.Equal(t, "10:00", call.start)
	assert.Contains(t, resp.FulfillmentText, "C'est noté")
}

func TestConfirmBookingWithoutContext(t *testing.T) {
	f := newEngineFixture(t)

	resp := f.engine.Handle(context.Background(), webhookReq(intentConfirmBooking, nil))
	assert.Contains(t, resp.FulfillmentText, "Reprenons")
	assert.Empty(t, f.reservations.creates)
}

func TestChooseFacilityAsksConfirmation(t *testing.T) {
	f := newEngineFixture(t)
	f.terrains.byName["Terrain Sud"] = &terrain.Terrain{ID: "t-1", Name: "Terrain Sud"}
	f.reservations.slotFree = true

	slot := slotParams{
		UserID:  "user-1",
		Date:    "2026-03-10",
		Start:   "18:00",
		Display: "10 mars 2026 à 18:00",
	}
	resp := f.engine.Handle(context.Background(), webhookReq(intentChooseFacility,
		map[string]any{"terrain": "Terrain Sud"},
		outputContext(testSession, ctxDateTimeProvided, listPickLifespan, slot),
	))

	assert.Contains(t, resp.FulfillmentText, "Vous confirmez ?")
	require.Len(t, resp.OutputContexts, 1)
	kept := slotParamsFrom(&resp.OutputContexts[0])
	assert.Equal(t, "Terrain Sud", kept.Terrain)
	assert.Equal(t, "18:00", kept.Start)
	assert.Empty(t, f.reservations.creates)
}

func TestChooseFacilityUnknownTerrain(t *testing.T) {
	f := newEngineFixture(t)

	slot := slotParams{UserID: "user-1", Date: "2026-03-10", Start: "18:00"}
	resp := f.engine.Handle(context.Background(), webhookReq(intentChooseFacility,
		map[string]any{"terrain": "Nulle Part"},
		outputContext(testSession, ctxDateTimeProvided, listPickLifespan, slot),
	))

	assert.Contains(t, resp.FulfillmentText, "Nulle Part")
	assert.Empty(t, f.reservations.creates)
}

func TestDirectCancelNotFound(t *testing.T) {
	f := newEngineFixture(t)
	f.sessions.Bind(testSession, "user-1")
	f.reservations.cancelErr = reservation.ErrNotFound

	resp := f.engine.Handle(context.Background(), webhookReq(intentDirectCancel, map[string]any{
		"relative-date": "demain",
		"time":          "18h",
	}))

	assert.Contains(t, resp.FulfillmentText, "aucune réservation")
}

func TestConfirmCancel(t *testing.T) {
	f := newEngineFixture(t)

	slot := slotParams{
		UserID:  "user-3",
		Terrain: "Terrain Est",
		Date:    "2026-03-10",
		Start:   "18:00",
		Display: "10 mars 2026",
	}
	resp := f.engine.Handle(context.Background(), webhookReq(intentConfirmCancel, nil,
		outputContext(testSession, ctxCancelConfirmation, defaultLifespan, slot),
	))

	require.Len(t, f.reservations.cancels, 1)
	call := f.reservations.cancels[0]
	assert.Equal(t, "user-3", call.userID)
	assert.Equal(t, day(2026, time.March, 10), call.date)
	assert.Equal(t, "18:00", call.start)
	assert.Contains(t, resp.FulfillmentText, "annulée")
}

func TestListMyReservations(t *testing.T) {
	f := newEngineFixture(t)
	f.sessions.Bind(testSession, "user-1")
	f.reservations.list = []*reservation.Reservation{
		{
			TerrainName: "Terrain Central",
			Date:        day(2026, time.March, 10),
			Start:       "18:00",
			End:         "19:30",
			Status:      reservation.StatusConfirmed,
		},
		{
			TerrainName: "Terrain Nord",
			Date:        day(2026, time.March, 12),
			Start:       "10:00",
			End:         "11:30",
			Status:      reservation.StatusPending,
		},
	}

	resp := f.engine.Handle(context.Background(), webhookReq(intentListMyReservations, nil))

	assert.Contains(t, resp.FulfillmentText, "Terrain Central le 10 mars 2026 de 18:00 à 19:30 (confirmée)")
	assert.Contains(t, resp.FulfillmentText, "Terrain Nord le 12 mars 2026 de 10:00 à 11:30 (en attente)")
}

func TestListMyReservationsEmpty(t *testing.T) {
	f := newEngineFixture(t)
	f.sessions.Bind(testSession, "user-1")

	resp := f.engine.Handle(context.Background(), webhookReq(intentListMyReservations, nil))
	assert.Contains(t, resp.FulfillmentText, "aucune réservation")
}

func TestRecommendPopularPassthrough(t *testing.T) {
	f := newEngineFixture(t)
	f.recs.text = "Les terrains les plus populaires : Terrain Central"

	resp := f.engine.Handle(context.Background(), webhookReq(intentRecommendPopular, nil))
	assert.Equal(t, f.recs.text, resp.FulfillmentText)
}

func TestRecommendFailureIsApologetic(t *testing.T) {
	f := newEngineFixture(t)
	f.recs.err = context.DeadlineExceeded

	resp := f.engine.Handle(context.Background(), webhookReq(intentRecommendPopular, nil))
	assert.Equal(t, msgSorry, resp.FulfillmentText)
}

func TestUserIDPrefersContextOverSession(t *testing.T) {
	f := newEngineFixture(t)
	f.sessions.Bind(testSession, "session-user")

	req := webhookReq(intentListMyReservations, nil,
		outputContext(testSession, ctxBookingRequested, defaultLifespan, slotParams{UserID: "ctx-user"}),
	)
	id, ok := f.engine.userIDFor(req)
	require.True(t, ok)
	assert.Equal(t, "ctx-user", id)
}

func TestRequestBookingDateOnlyAsksForHour(t *testing.T) {
	f := newEngineFixture(t)
	f.sessions.Bind(testSession, "user-1")
	f.reservations.available = []string{"Terrain A", "Terrain B"}

	resp := f.engine.Handle(context.Background(), webhookReq(intentRequestBooking, map[string]any{
		"relative-date": "demain",
	}))

	assert.Contains(t, resp.FulfillmentText, "À quelle heure")
	assert.NotContains(t, resp.FulfillmentText, "Terrain A")
	require.Len(t, resp.OutputContexts, 1)
	assert.Contains(t, resp.OutputContexts[0].Name, ctxBookingRequested)
	kept := slotParamsFrom(&resp.OutputContexts[0])
	assert.Equal(t, "2026-03-05", kept.Date)
	assert.Empty(t, kept.Start)
}

func TestProvideNewTimeRejectsTakenSlot(t *testing.T) {
	f := newEngineFixture(t)
	f.reservations.slotFree = false
	f.reservations.freeSlots = []reservation.TimeSlot{{Start: "08:00", End: "09:30"}}

	slot := slotParams{
		UserID:   "user-1",
		Terrain:  "Terrain A",
		Date:     "2026-03-10",
		OldStart: "18:00",
		Display:  "10 mars 2026",
	}
	resp := f.engine.Handle(context.Background(), webhookReq(intentProvideNewTime,
		map[string]any{"new-time": "20h"},
		outputContext(testSession, ctxAwaitingNewTime, defaultLifespan, slot),
	))

	assert.Contains(t, resp.FulfillmentText, "déjà pris")
	assert.Contains(t, resp.FulfillmentText, "08:00")
	assert.NotContains(t, resp.FulfillmentText, "Vous confirmez")
	require.Len(t, resp.OutputContexts, 1)
	assert.Contains(t, resp.OutputContexts[0].Name, ctxAwaitingNewTime)
}

func TestProvideNewTimeFullDayRejected(t *testing.T) {
	f := newEngineFixture(t)
	f.reservations.slotFree = false
	f.reservations.freeSlots = nil

	slot := slotParams{
		UserID:   "user-1",
		Terrain:  "Terrain A",
		Date:     "2026-03-10",
		OldStart: "18:00",
		Display:  "10 mars 2026",
	}
	resp := f.engine.Handle(context.Background(), webhookReq(intentProvideNewTime,
		map[string]any{"new-time": "20h"},
		outputContext(testSession, ctxAwaitingNewTime, defaultLifespan, slot),
	))

	assert.Contains(t, resp.FulfillmentText, "complet")
	assert.NotContains(t, resp.FulfillmentText, "Vous confirmez")
	require.Len(t, resp.OutputContexts, 1)
	assert.Contains(t, resp.OutputContexts[0].Name, ctxAwaitingNewTime)
}
