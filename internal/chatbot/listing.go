package chatbot

import (
	"context"
	"fmt"
	"strings"
)

// handleListMyReservations lists the caller's upcoming reservations.
func (e *Engine) handleListMyReservations(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}

	list, err := e.reservations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return reply("Vous n'avez aucune réservation à venir. Voulez-vous en créer une ?"), nil
	}

	var b strings.Builder
	b.WriteString("Voici vos réservations :\n")
	for _, r := range list {
		fmt.Fprintf(&b, "- %s le %s de %s à %s (%s)\n",
			r.TerrainName, e.resolver.DisplayFor(r.Date, ""), r.Start, r.End, statusLabel(string(r.Status)))
	}
	return reply(strings.TrimRight(b.String(), "\n")), nil
}

func statusLabel(status string) string {
	switch status {
	case "confirmed":
		return "confirmée"
	case "cancelled":
		return "annulée"
	default:
		return "en attente"
	}
}
