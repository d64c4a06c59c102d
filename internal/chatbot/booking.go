package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terrabook/pitch-booking-backend/internal/reservation"
	"github.com/terrabook/pitch-booking-backend/internal/terrain"
)

// handleRequestBooking opens the booking flow. When the opening
// utterance already carries a date and time it skips straight to the
// terrain choice.
func (e *Engine) handleRequestBooking(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return replyCtx(
				"Très bien ! Pour quelle date et quelle heure souhaitez-vous réserver ?",
				outputContext(req.Session, ctxBookingRequested, defaultLifespan, slotParams{UserID: userID}),
			), nil
		}
		return nil, err
	}

	if !resolved.HasTime {
		return replyCtx(
			fmt.Sprintf("D'accord pour le %s. À quelle heure souhaitez-vous jouer ?", resolved.Display),
			outputContext(req.Session, ctxBookingRequested, defaultLifespan, slotParams{
				UserID: userID,
				Date:   resolved.Date.Format(dateLayout),
			}),
		), nil
	}

	return e.offerTerrains(ctx, req.Session, userID, resolved)
}

// handleProvideDateTime consumes the date/time answer inside an open
// booking flow.
func (e *Engine) handleProvideDateTime(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return reply("Je n'ai pas compris cette date. Essayez par exemple \"demain à 18h\" ou \"le 10 mars à 20h\"."), nil
		}
		return nil, err
	}

	if !resolved.HasTime {
		return replyCtx(
			fmt.Sprintf("D'accord pour le %s. À quelle heure souhaitez-vous jouer ?", resolved.Display),
			outputContext(req.Session, ctxBookingRequested, defaultLifespan, slotParams{
				UserID: userID,
				Date:   resolved.Date.Format(dateLayout),
			}),
		), nil
	}

	// A date kept from the previous turn beats today's fallback when the
	// user answered with a bare time.
	if prev := findContext(req.QueryResult.OutputContexts, ctxBookingRequested); prev != nil {
		p := slotParamsFrom(prev)
		if p.Date != "" && resolved.Display == resolved.Start {
			if d, derr := parseStoredDate(p.Date, e.resolver.tz); derr == nil {
				resolved.Date = d
				resolved.Display = e.resolver.DisplayFor(d, resolved.Start)
			}
		}
	}

	return e.offerTerrains(ctx, req.Session, userID, resolved)
}

// offerTerrains lists the terrains free at the requested slot and
// parks the slot in a context for the pick.
func (e *Engine) offerTerrains(ctx context.Context, session, userID string, resolved *ResolvedDateTime) (*WebhookResponse, error) {
	names, err := e.reservations.AvailableTerrains(ctx, resolved.Date, resolved.Start)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return reply(fmt.Sprintf("Désolé, aucun terrain n'est libre le %s. Voulez-vous essayer un autre créneau ?", resolved.Display)), nil
	}

	return replyCtx(
		fmt.Sprintf("Pour le %s, ces terrains sont libres : %s. Lequel vous tente ?",
			resolved.Display, strings.Join(names, ", ")),
		outputContext(session, ctxDateTimeProvided, listPickLifespan, slotParams{
			UserID:  userID,
			Date:    resolved.Date.Format(dateLayout),
			Start:   resolved.Start,
			Display: resolved.Display,
		}),
	), nil
}

// handleChooseFacility takes the terrain pick and asks for the final
// confirmation.
func (e *Engine) handleChooseFacility(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	name := stringParam(req.QueryResult.Parameters, "terrain")
	if name == "" {
		return reply("Quel terrain souhaitez-vous réserver ?"), nil
	}

	slot := slotParamsFrom(findContext(req.QueryResult.OutputContexts, ctxDateTimeProvided))
	if slot.Date == "" || slot.Start == "" {
		return reply("Pour quelle date et quelle heure souhaitez-vous réserver " + name + " ?"), nil
	}

	if _, err := e.terrains.GetByName(ctx, name); err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			return reply(fmt.Sprintf("Je ne connais pas de terrain nommé %q. Pouvez-vous vérifier le nom ?", name)), nil
		}
		return nil, err
	}

	date, err := parseStoredDate(slot.Date, e.resolver.tz)
	if err != nil {
		return nil, err
	}

	free, err := e.reservations.IsSlotFree(ctx, name, date, slot.Start)
	if err != nil {
		return nil, err
	}
	if !free {
		return e.suggestFreeSlots(ctx, name, date, slot.Display)
	}

	slot.Terrain = name
	return replyCtx(
		fmt.Sprintf("Parfait ! Je réserve %s le %s. Vous confirmez ?", name, slot.Display),
		outputContext(req.Session, ctxTerrainChosen, defaultLifespan, slot),
	), nil
}

// handleConfirmBooking finalizes the reservation held in context.
func (e *Engine) handleConfirmBooking(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	slot := slotParamsFrom(findContext(req.QueryResult.OutputContexts, ctxTerrainChosen))
	if slot.Terrain == "" || slot.Date == "" || slot.Start == "" {
		return reply("Je n'ai plus les détails de cette réservation. Reprenons : quel terrain, quel jour et quelle heure ?"), nil
	}

	userID := slot.UserID
	if userID == "" {
		var ok bool
		if userID, ok = e.userIDFor(req); !ok {
			return reply(msgNeedLogin), nil
		}
	}

	date, err := parseStoredDate(slot.Date, e.resolver.tz)
	if err != nil {
		return nil, err
	}

	res, err := e.reservations.CreateByTerrainName(ctx, userID, slot.Terrain, date, slot.Start)
	if err != nil {
		if errors.Is(err, reservation.ErrTimeConflict) {
			return e.suggestFreeSlots(ctx, slot.Terrain, date, slot.Display)
		}
		return nil, err
	}

	return reply(fmt.Sprintf(
		"C'est noté ! %s est réservé le %s (de %s à %s). Un e-mail de confirmation arrive.",
		res.TerrainName, slot.Display, res.Start, res.End)), nil
}

// handleDirectBooking books in one shot when the utterance names a
// terrain and a full date/time.
func (e *Engine) handleDirectBooking(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	name := stringParam(req.QueryResult.Parameters, "terrain")
	if name == "" {
		return reply("Quel terrain souhaitez-vous réserver ?"), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return reply("Pour quelle date et quelle heure ?"), nil
		}
		return nil, err
	}
	if !resolved.HasTime {
		return replyCtx(
			fmt.Sprintf("D'accord pour %s le %s. À quelle heure ?", name, resolved.Display),
			outputContext(req.Session, ctxDateTerrainProvided, defaultLifespan, slotParams{
				UserID:  userID,
				Terrain: name,
				Date:    resolved.Date.Format(dateLayout),
				Display: resolved.Display,
			}),
		), nil
	}

	res, err := e.reservations.CreateByTerrainName(ctx, userID, name, resolved.Date, resolved.Start)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrTimeConflict):
			return e.suggestFreeSlots(ctx, name, resolved.Date, resolved.Display)
		case errors.Is(err, reservation.ErrTerrainNotFound):
			return reply(fmt.Sprintf("Je ne connais pas de terrain nommé %q. Pouvez-vous vérifier le nom ?", name)), nil
		}
		return nil, err
	}

	return reply(fmt.Sprintf(
		"C'est noté ! %s est réservé le %s (de %s à %s). Un e-mail de confirmation arrive.",
		res.TerrainName, resolved.Display, res.Start, res.End)), nil
}

// handleAvailabilityQuery answers "est-ce que X est libre demain à 18h ?".
func (e *Engine) handleAvailabilityQuery(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	name := stringParam(req.QueryResult.Parameters, "terrain")
	if name == "" {
		return reply("Pour quel terrain souhaitez-vous vérifier la disponibilité ?"), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return reply("Pour quelle date et quelle heure ?"), nil
		}
		return nil, err
	}
	if !resolved.HasTime {
		return e.listFreeSlots(ctx, req.Session, name, resolved)
	}

	free, err := e.reservations.IsSlotFree(ctx, name, resolved.Date, resolved.Start)
	if err != nil {
		if errors.Is(err, reservation.ErrTerrainNotFound) {
			return reply(fmt.Sprintf("Je ne connais pas de terrain nommé %q.", name)), nil
		}
		return nil, err
	}
	if free {
		return reply(fmt.Sprintf("Oui, %s est libre le %s. Voulez-vous réserver ?", name, resolved.Display)), nil
	}
	return e.suggestFreeSlots(ctx, name, resolved.Date, resolved.Display)
}

// handleAvailabilityNoTime lists the free slots of a terrain for a day.
func (e *Engine) handleAvailabilityNoTime(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	name := stringParam(req.QueryResult.Parameters, "terrain")
	if name == "" {
		return reply("Pour quel terrain souhaitez-vous vérifier la disponibilité ?"), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return reply("Pour quelle date ?"), nil
		}
		return nil, err
	}

	return e.listFreeSlots(ctx, req.Session, name, resolved)
}

// listFreeSlots answers with a day's openings and parks the
// terrain+date pair so the user can pick a time next turn.
func (e *Engine) listFreeSlots(ctx context.Context, session, name string, resolved *ResolvedDateTime) (*WebhookResponse, error) {
	slots, err := e.reservations.FreeSlotsFor(ctx, name, resolved.Date)
	if err != nil {
		if errors.Is(err, reservation.ErrTerrainNotFound) {
			return reply(fmt.Sprintf("Je ne connais pas de terrain nommé %q.", name)), nil
		}
		return nil, err
	}
	if len(slots) == 0 {
		return reply(fmt.Sprintf("%s est complet le %s. Voulez-vous essayer un autre jour ?", name, resolved.Display)), nil
	}

	starts := make([]string, len(slots))
	for i, s := range slots {
		starts[i] = s.Start
	}
	return replyCtx(
		fmt.Sprintf("Le %s, %s est libre à : %s. Quelle heure vous convient ?",
			resolved.Display, name, strings.Join(starts, ", ")),
		outputContext(session, ctxDateTerrainProvided, listPickLifespan, slotParams{
			Terrain: name,
			Date:    resolved.Date.Format(dateLayout),
			Display: resolved.Display,
		}),
	), nil
}

// handleFacilityTimeChoice consumes the time picked off a free-slot
// list and asks for confirmation.
func (e *Engine) handleFacilityTimeChoice(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	slot := slotParamsFrom(findContext(req.QueryResult.OutputContexts, ctxDateTerrainProvided))
	if slot.Terrain == "" || slot.Date == "" {
		return reply("Pour quel terrain et quel jour ?"), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil || !resolved.HasTime {
		var unresolved *ErrUnresolvedDateTime
		if err != nil && !errors.As(err, &unresolved) {
			return nil, err
		}
		return reply("À quelle heure souhaitez-vous jouer ?"), nil
	}

	if slot.UserID == "" {
		if id, ok := e.userIDFor(req); ok {
			slot.UserID = id
		}
	}

	date, err := parseStoredDate(slot.Date, e.resolver.tz)
	if err != nil {
		return nil, err
	}

	free, err := e.reservations.IsSlotFree(ctx, slot.Terrain, date, resolved.Start)
	if err != nil {
		return nil, err
	}
	if !free {
		return e.suggestFreeSlots(ctx, slot.Terrain, date, slot.Display)
	}

	slot.Start = resolved.Start
	display := fmt.Sprintf("%s à %s", slot.Display, resolved.Start)
	slot.Display = display
	return replyCtx(
		fmt.Sprintf("Parfait ! Je réserve %s le %s. Vous confirmez ?", slot.Terrain, display),
		outputContext(req.Session, ctxTerrainChosen, defaultLifespan, slot),
	), nil
}

// suggestFreeSlots is the polite refusal: the slot is taken, here is
// what remains that day.
func (e *Engine) suggestFreeSlots(ctx context.Context, name string, date time.Time, display string) (*WebhookResponse, error) {
	slots, err := e.reservations.FreeSlotsFor(ctx, name, date)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return reply(fmt.Sprintf("Désolé, %s est déjà complet le %s.", name, display)), nil
	}

	starts := make([]string, len(slots))
	for i, s := range slots {
		starts[i] = s.Start
	}
	return reply(fmt.Sprintf("Désolé, ce créneau est déjà pris. %s reste libre à : %s.",
		name, strings.Join(starts, ", "))), nil
}
