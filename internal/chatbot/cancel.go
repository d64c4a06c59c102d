package chatbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/terrabook/pitch-booking-backend/internal/reservation"
)

// handleRequestCancel opens the cancellation flow.
func (e *Engine) handleRequestCancel(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	return replyCtx(
		"D'accord. Quelle réservation souhaitez-vous annuler ? Donnez-moi sa date et son heure.",
		outputContext(req.Session, ctxAwaitingCancelInfo, defaultLifespan, slotParams{UserID: userID}),
	), nil
}

// handleProvideCancelDateTime locates the reservation to cancel and
// asks for confirmation.
func (e *Engine) handleProvideCancelDateTime(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
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
		return e.cancelLookupByDay(ctx, req.Session, userID, resolved)
	}

	res, err := e.reservations.FindAt(ctx, userID, resolved.Date, resolved.Start)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return reply(fmt.Sprintf("Je ne trouve aucune réservation à votre nom le %s.", resolved.Display)), nil
		}
		return nil, err
	}

	return replyCtx(
		fmt.Sprintf("J'annule votre réservation de %s le %s à %s. Vous confirmez ?",
			res.TerrainName, resolved.Display, res.Start),
		outputContext(req.Session, ctxCancelConfirmation, defaultLifespan, slotParams{
			UserID:  userID,
			Date:    resolved.Date.Format(dateLayout),
			Start:   res.Start,
			Terrain: res.TerrainName,
			Display: resolved.Display,
		}),
	), nil
}

// handleDirectCancel cancels in one shot when the utterance carries the
// full date and time.
func (e *Engine) handleDirectCancel(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	resolved, err := e.resolveFrom(req.QueryResult.Parameters)
	if err != nil {
		var unresolved *ErrUnresolvedDateTime
		if errors.As(err, &unresolved) {
			return reply("Quelle réservation souhaitez-vous annuler ? Donnez-moi sa date et son heure."), nil
		}
		return nil, err
	}
	if !resolved.HasTime {
		return e.cancelLookupByDay(ctx, req.Session, userID, resolved)
	}

	if err := e.reservations.CancelAt(ctx, userID, resolved.Date, resolved.Start); err != nil {
		switch {
		case errors.Is(err, reservation.ErrNotFound):
			return reply(fmt.Sprintf("Je ne trouve aucune réservation à votre nom le %s.", resolved.Display)), nil
		case errors.Is(err, reservation.ErrAlreadyCancelled):
			return reply("Cette réservation est déjà annulée."), nil
		}
		return nil, err
	}

	return reply(fmt.Sprintf("C'est fait, votre réservation du %s est annulée.", resolved.Display)), nil
}

// handleCancelNoTime locates the reservation to cancel from a bare day.
func (e *Engine) handleCancelNoTime(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
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

	return e.cancelLookupByDay(ctx, req.Session, userID, resolved)
}

func (e *Engine) cancelLookupByDay(ctx context.Context, session, userID string, resolved *ResolvedDateTime) (*WebhookResponse, error) {
	res, err := e.reservations.FindOnDate(ctx, userID, resolved.Date)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrNotFound):
			return reply(fmt.Sprintf("Je ne trouve aucune réservation à votre nom le %s.", resolved.Display)), nil
		case errors.Is(err, reservation.ErrAmbiguousDay):
			return replyCtx(
				fmt.Sprintf("Vous avez plusieurs réservations le %s. À quelle heure est celle à annuler ?", resolved.Display),
				outputContext(session, ctxAwaitingCancelInfo, defaultLifespan, slotParams{
					UserID: userID,
					Date:   resolved.Date.Format(dateLayout),
				}),
			), nil
		}
		return nil, err
	}

	return replyCtx(
		fmt.Sprintf("J'annule votre réservation de %s le %s à %s. Vous confirmez ?",
			res.TerrainName, resolved.Display, res.Start),
		outputContext(session, ctxCancelConfirmation, defaultLifespan, slotParams{
			UserID:  userID,
			Date:    resolved.Date.Format(dateLayout),
			Start:   res.Start,
			Terrain: res.TerrainName,
			Display: resolved.Display,
		}),
	), nil
}

// handleConfirmCancel applies the cancellation held in context.
func (e *Engine) handleConfirmCancel(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	slot := slotParamsFrom(findContext(req.QueryResult.OutputContexts, ctxCancelConfirmation))
	if slot.Date == "" || slot.Start == "" {
		return reply("Je n'ai plus les détails de cette annulation. Quelle réservation souhaitez-vous annuler ?"), nil
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

	if err := e.reservations.CancelAt(ctx, userID, date, slot.Start); err != nil {
		switch {
		case errors.Is(err, reservation.ErrNotFound):
			return reply("Je ne retrouve plus cette réservation. A-t-elle déjà été annulée ?"), nil
		case errors.Is(err, reservation.ErrAlreadyCancelled):
			return reply("Cette réservation est déjà annulée."), nil
		}
		return nil, err
	}

	return reply(fmt.Sprintf("C'est fait, votre réservation de %s le %s est annulée.", slot.Terrain, slot.Display)), nil
}
