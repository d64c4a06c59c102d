package chatbot

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/terrabook/pitch-booking-backend/internal/reservation"
	"github.com/terrabook/pitch-booking-backend/internal/terrain"
)

// ReservationOps is the slice of the reservation service the
// conversation flows need.
type ReservationOps interface {
	CreateByTerrainName(ctx context.Context, userID, terrainName string, date time.Time, start string) (*reservation.Reservation, error)
	ListForUser(ctx context.Context, userID string) ([]*reservation.Reservation, error)
	FindAt(ctx context.Context, userID string, date time.Time, start string) (*reservation.Reservation, error)
	FindOnDate(ctx context.Context, userID string, date time.Time) (*reservation.Reservation, error)
	ModifyStart(ctx context.Context, userID string, date time.Time, oldStart, newStart string) (*reservation.Reservation, error)
	CancelAt(ctx context.Context, userID string, date time.Time, start string) error
	IsSlotFree(ctx context.Context, terrainName string, date time.Time, start string) (bool, error)
	FreeSlotsFor(ctx context.Context, terrainName string, date time.Time) ([]reservation.TimeSlot, error)
	AvailableTerrains(ctx context.Context, date time.Time, start string) ([]string, error)
}

// TerrainDirectory resolves the terrain names users type or say.
type TerrainDirectory interface {
	GetByName(ctx context.Context, name string) (*terrain.Terrain, error)
}

// Recommender answers the recommendation intents with ready-to-send
// chat text.
type Recommender interface {
	Popular(ctx context.Context) (string, error)
	Global(ctx context.Context) (string, error)
	Personalized(ctx context.Context, userID string) (string, error)
	Hourly(ctx context.Context, userID string) (string, error)
	Times(ctx context.Context, userID string) (string, error)
	PriceBand(ctx context.Context, userID string) (string, error)
	Friends(ctx context.Context, userID string) (string, error)
	TopRated(ctx context.Context) (string, error)
	Promotions(ctx context.Context) (string, error)
	Weather(ctx context.Context) (string, error)
	ML(ctx context.Context, userID string) (string, error)
	Similar(ctx context.Context, terrainID string) (string, error)
}

// Intent display names the NLU agent is configured with.
const (
	intentRequestBooking         = "RequestBooking"
	intentProvideDateTime        = "ProvideDateTime"
	intentChooseFacility         = "ChooseFacility"
	intentConfirmBooking         = "ConfirmBooking"
	intentDirectBooking          = "DirectBooking"
	intentAvailabilityQuery      = "AvailabilityQuery"
	intentAvailabilityNoTime     = "AvailabilityQueryNoTime"
	intentFacilityTimeChoice     = "FacilityTimeChoice"
	intentRequestModify          = "RequestModify"
	intentProvideCurrentDateTime = "ProvideCurrentDateTime"
	intentModifyNoTime           = "ModifyNoTime"
	intentProvideNewTime         = "ProvideNewTime"
	intentConfirmModify          = "ConfirmModify"
	intentListMyReservations     = "ListMyReservations"
	intentRequestCancel          = "RequestCancel"
	intentProvideCancelDateTime  = "ProvideDateTimeForCancel"
	intentDirectCancel           = "DirectCancel"
	intentCancelNoTime           = "CancelNoTime"
	intentConfirmCancel          = "ConfirmCancel"
	intentRecommendPopular       = "RecommendPopular"
	intentRecommendPersonalized  = "RecommendPersonalized"
	intentRecommendGlobal        = "RecommendGlobal"
	intentRecommendHourly        = "RecommendHourly"
	intentRecommendSimilar       = "RecommendSimilar"
	intentRecommendWeather       = "RecommendWeather"
	intentRecommendPrice         = "RecommendPrice"
	intentRecommendTimes         = "RecommendTimes"
	intentRecommendPromotions    = "RecommendPromotions"
	intentRecommendFriends       = "RecommendFriends"
	intentRecommendRatings       = "RecommendRatings"
	intentRecommendML            = "RecommendML"
)

const (
	msgNeedLogin     = "Veuillez d'abord vous connecter pour que je puisse gérer vos réservations."
	msgSorry         = "Désolé, une erreur est survenue. Pouvez-vous réessayer ?"
	msgNotUnderstood = "Je n'ai pas compris votre demande. Pouvez-vous reformuler ?"
)

type handlerFunc func(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error)

// Engine routes webhook calls to the flow handler matching the
// detected intent.
type Engine struct {
	resolver     *DateTimeResolver
	reservations ReservationOps
	terrains     TerrainDirectory
	recs         Recommender
	sessions     *SessionStore
	log          *zap.Logger

	handlers map[string]handlerFunc
}

func NewEngine(
	resolver *DateTimeResolver,
	reservations ReservationOps,
	terrains TerrainDirectory,
	recs Recommender,
	sessions *SessionStore,
	log *zap.Logger,
) *Engine {
	e := &Engine{
		resolver:     resolver,
		reservations: reservations,
		terrains:     terrains,
		recs:         recs,
		sessions:     sessions,
		log:          log,
	}
	e.handlers = map[string]handlerFunc{
		intentRequestBooking:         e.handleRequestBooking,
		intentProvideDateTime:        e.handleProvideDateTime,
		intentChooseFacility:         e.handleChooseFacility,
		intentConfirmBooking:         e.handleConfirmBooking,
		intentDirectBooking:          e.handleDirectBooking,
		intentAvailabilityQuery:      e.handleAvailabilityQuery,
		intentAvailabilityNoTime:     e.handleAvailabilityNoTime,
		intentFacilityTimeChoice:     e.handleFacilityTimeChoice,
		intentRequestModify:          e.handleRequestModify,
		intentProvideCurrentDateTime: e.handleProvideCurrentDateTime,
		intentModifyNoTime:           e.handleModifyNoTime,
		intentProvideNewTime:         e.handleProvideNewTime,
		intentConfirmModify:          e.handleConfirmModify,
		intentListMyReservations:     e.handleListMyReservations,
		intentRequestCancel:          e.handleRequestCancel,
		intentProvideCancelDateTime:  e.handleProvideCancelDateTime,
		intentDirectCancel:           e.handleDirectCancel,
		intentCancelNoTime:           e.handleCancelNoTime,
		intentConfirmCancel:          e.handleConfirmCancel,
		intentRecommendPopular:       e.handleRecommendPopular,
		intentRecommendPersonalized:  e.handleRecommendPersonalized,
		intentRecommendGlobal:        e.handleRecommendGlobal,
		intentRecommendHourly:        e.handleRecommendHourly,
		intentRecommendSimilar:       e.handleRecommendSimilar,
		intentRecommendWeather:       e.handleRecommendWeather,
		intentRecommendPrice:         e.handleRecommendPrice,
		intentRecommendTimes:         e.handleRecommendTimes,
		intentRecommendPromotions:    e.handleRecommendPromotions,
		intentRecommendFriends:       e.handleRecommendFriends,
		intentRecommendRatings:       e.handleRecommendRatings,
		intentRecommendML:            e.handleRecommendML,
	}
	return e
}

// Handle dispatches a webhook request. Handler failures never escape:
// the user gets an apology and the error is logged.
func (e *Engine) Handle(ctx context.Context, req *WebhookRequest) *WebhookResponse {
	name := req.QueryResult.Intent.DisplayName
	h, ok := e.handlers[name]
	if !ok {
		e.log.Info("unhandled intent", zap.String("intent", name))
		return reply(msgNotUnderstood)
	}

	resp, err := h(ctx, req)
	if err != nil {
		e.log.Error("intent handler failed",
			zap.String("intent", name),
			zap.String("session", req.Session),
			zap.Error(err))
		return reply(msgSorry)
	}
	return resp
}

func reply(text string) *WebhookResponse {
	return &WebhookResponse{FulfillmentText: text}
}

func replyCtx(text string, contexts ...Context) *WebhookResponse {
	return &WebhookResponse{FulfillmentText: text, OutputContexts: contexts}
}

// userIDFor finds the user behind a session: a userId carried by any
// active context wins, then the binding made at login time.
func (e *Engine) userIDFor(req *WebhookRequest) (string, bool) {
	for i := range req.QueryResult.OutputContexts {
		if id := stringParam(req.QueryResult.OutputContexts[i].Parameters, "userId"); id != "" {
			return id, true
		}
	}
	return e.sessions.Lookup(req.Session)
}

// resolveFrom maps the NLU's raw parameters onto the resolver's input.
func (e *Engine) resolveFrom(params map[string]any) (*ResolvedDateTime, error) {
	in := DateTimeInput{
		DateExact:    stringParam(params, "date-exact"),
		RelativeWord: stringParam(params, "relative-date"),
		DateTimeISO:  stringParam(params, "date-time"),
		DateNoTime:   stringParam(params, "date-no-time"),
		WeekdayWord:  stringParam(params, "weekday"),
	}
	classifyTime(stringParam(params, "time"), &in)
	return e.resolver.Resolve(in)
}

// classifyTime decides whether a raw time parameter is an ISO
// timestamp, a spoken word like "midi", or free text like "18h30".
func classifyTime(raw string, in *DateTimeInput) {
	if raw == "" {
		return
	}
	if strings.Contains(raw, "T") {
		in.TimeISO = raw
		return
	}
	if _, ok := timeWords[normalize(raw)]; ok {
		in.TimeWord = raw
		return
	}
	in.TimeText = raw
}

const dateLayout = "2006-01-02"

func parseStoredDate(raw string, tz *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, raw, tz)
}
