package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terrabook/pitch-booking-backend/internal/reservation"
)

// handleRequestModify opens the modification flow.
func (e *Engine) handleRequestModify(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	return replyCtx(
		"Bien sûr ! Quelle réservation souhaitez-vous déplacer ? Donnez-moi sa date et son heure.",
		outputContext(req.Session, ctxAwaitingModifyInfo, defaultLifespan, slotParams{UserID: userID}),
	), nil
}

// handleProvideCurrentDateTime locates the reservation to move from a
// full date+time answer.
func (e *Engine) handleProvideCurrentDateTime(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return reply("Je n'ai pas compris cette date. Par exemple : \"demain à 18h\"."), nil
		}
		return nil, err
	}
	if !resolved.HasTime {
		return e.lookupByDay(ctx, req.Session, userID, resolved)
	}

	res, err := e.reservations.FindAt(ctx, userID, resolved.Date, resolved.Start)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return reply(fmt.Sprintf("Je ne trouve aucune réservation à votre nom le %s.", resolved.Display)), nil
		}
		return nil, err
	}

	return replyCtx(
		fmt.Sprintf("J'ai trouvé votre réservation de %s le %s à %s. Quelle nouvelle heure souhaitez-vous ?",
			res.TerrainName, resolved.Display, res.Start),
		outputContext(req.Session, ctxAwaitingNewTime, defaultLifespan, slotParams{
			UserID:   userID,
			Date:     resolved.Date.Format(dateLayout),
			OldStart: res.Start,
			Terrain:  res.TerrainName,
			Display:  resolved.Display,
		}),
	), nil
}

// handleModifyNoTime locates the reservation to move when only a day
// was given. One match continues the flow; several demand an hour.
func (e *Engine) handleModifyNoTime(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return reply("Pour quel jour ?"), nil
		}
		return nil, err
	}

	return e.lookupByDay(ctx, req.Session, userID, resolved)
}

func (e *Engine) lookupByDay(ctx context.Context, session, userID string, resolved *ResolvedDateTime) (*WebhookResponse, error) {
	res, err := e.reservations.FindOnDate(ctx, userID, resolved.Date)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrNotFound):
			return reply(fmt.Sprintf("Je ne trouve aucune réservation à votre nom le %s.", resolved.Display)), nil
		case errors.Is(err, reservation.ErrAmbiguousDay):
			return replyCtx(
				fmt.Sprintf("Vous avez plusieurs réservations le %s. À quelle heure est celle à déplacer ?", resolved.Display),
				outputContext(session, ctxAwaitingModifyInfo, defaultLifespan, slotParams{
					UserID: userID,
					Date:   resolved.Date.Format(dateLayout),
				}),
			), nil
		}
		return nil, err
	}

	return replyCtx(
		fmt.Sprintf("J'ai trouvé votre réservation de %s le %s à %s. Quelle nouvelle heure souhaitez-vous ?",
			res.TerrainName, resolved.Display, res.Start),
		outputContext(session, ctxAwaitingNewTime, defaultLifespan, slotParams{
			UserID:   userID,
			Date:     resolved.Date.Format(dateLayout),
			OldStart: res.Start,
			Terrain:  res.TerrainName,
			Display:  resolved.Display,
		}),
	), nil
}

// handleProvideNewTime takes the target time and asks for confirmation.
func (e *Engine) handleProvideNewTime(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	slot := slotParamsFrom(findContext(req.QueryResult.OutputContexts, ctxAwaitingNewTime))
	if slot.Date == "" || slot.OldStart == "" {
		return reply("Quelle réservation souhaitez-vous déplacer ? Donnez-moi sa date et son heure."), nil
	}

	newStart := stringParam(req.QueryResult.Parameters, "new-time")
	if newStart == "" {
		newStart = stringParam(req.QueryResult.Parameters, "time")
	}
	in := DateTimeInput{}
	classifyTime(newStart, &in)
	resolved, err := e.resolver.Resolve(in)
	if err != nil || !resolved.HasTime {
		var unresolved *ErrUnresolvedDateTime
		if err != nil && !errors.As(err, &unresolved) {
			return nil, err
		}
		return reply("À quelle heure souhaitez-vous déplacer la réservation ?"), nil
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
		// Keep the flow open so the user can answer with another hour.
		slots, serr := e.reservations.FreeSlotsFor(ctx, slot.Terrain, date)
		if serr != nil {
			return nil, serr
		}
		keep := outputContext(req.Session, ctxAwaitingNewTime, defaultLifespan, slot)
		if len(slots) == 0 {
			return replyCtx(fmt.Sprintf("Désolé, %s est déjà complet le %s. Essayez un autre jour.", slot.Terrain, slot.Display), keep), nil
		}
		starts := make([]string, len(slots))
		for i, s := range slots {
			starts[i] = s.Start
		}
		return replyCtx(fmt.Sprintf("Désolé, ce créneau est déjà pris. %s reste libre à : %s. Quelle heure vous convient ?",
			slot.Terrain, strings.Join(starts, ", ")), keep), nil
	}

	slot.Start = resolved.Start
	return replyCtx(
		fmt.Sprintf("Je déplace votre réservation de %s du %s de %s à %s. Vous confirmez ?",
			slot.Terrain, slot.Display, slot.OldStart, resolved.Start),
		outputContext(req.Session, ctxModifyConfirmation, defaultLifespan, slot),
	), nil
}

// handleConfirmModify applies the move held in context.
func (e *Engine) handleConfirmModify(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	slot := slotParamsFrom(findContext(req.QueryResult.OutputContexts, ctxModifyConfirmation))
	if slot.Date == "" || slot.OldStart == "" || slot.Start == "" {
		return reply("Je n'ai plus les détails de cette modification. Reprenons depuis le début."), nil
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

	res, err := e.reservations.ModifyStart(ctx, userID, date, slot.OldStart, slot.Start)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrTimeConflict):
			return reply(fmt.Sprintf("Désolé, le créneau de %s est déjà pris sur %s. Choisissez une autre heure.", slot.Start, slot.Terrain)), nil
		case errors.Is(err, reservation.ErrNotFound):
			return reply("Je ne retrouve plus cette réservation. A-t-elle déjà été annulée ?"), nil
		}
		return nil, err
	}

	return reply(fmt.Sprintf("C'est fait ! Votre réservation de %s est déplacée au %s, de %s à %s.",
		res.TerrainName, slot.Display, res.Start, res.End)), nil
}
