package chatbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/terrabook/pitch-booking-backend/internal/terrain"
)

// The recommendation intents all follow the same shape: fetch a
// ready-made answer from the recommender and pass it through.

func (e *Engine) handleRecommendPopular(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	text, err := e.recs.Popular(ctx)
	if err != nil {
		return nil, err
	}
	return reply(text), nil
}

func (e *Engine) handleRecommendGlobal(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	text, err := e.recs.Global(ctx)
	if err != nil {
		return nil, err
	}
	return reply(text), nil
}

func (e *Engine) handleRecommendRatings(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	text, err := e.recs.TopRated(ctx)
	if err != nil {
		return nil, err
	}
	return reply(text), nil
}

func (e *Engine) handleRecommendPromotions(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	text, err := e.recs.Promotions(ctx)
	if err != nil {
		return nil, err
	}
	return reply(text), nil
}

func (e *Engine) handleRecommendWeather(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	text, err := e.recs.Weather(ctx)
	if err != nil {
		return nil, err
	}
	return reply(text), nil
}

func (e *Engine) handleRecommendPersonalized(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	return e.userScopedRecommendation(ctx, req, e.recs.Personalized)
}

func (e *Engine) handleRecommendHourly(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	return e.userScopedRecommendation(ctx, req, e.recs.Hourly)
}

func (e *Engine) handleRecommendTimes(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	return e.userScopedRecommendation(ctx, req, e.recs.Times)
}

func (e *Engine) handleRecommendPrice(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	return e.userScopedRecommendation(ctx, req, e.recs.PriceBand)
}

func (e *Engine) handleRecommendFriends(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	return e.userScopedRecommendation(ctx, req, e.recs.Friends)
}

func (e *Engine) handleRecommendML(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	return e.userScopedRecommendation(ctx, req, e.recs.ML)
}

func (e *Engine) userScopedRecommendation(ctx context.Context, req *WebhookRequest, fetch func(context.Context, string) (string, error)) (*WebhookResponse, error) {
	userID, ok := e.userIDFor(req)
	if !ok {
		return reply(msgNeedLogin), nil
	}
	text, err := fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reply(text), nil
}

// handleRecommendSimilar maps the spoken terrain name to its id before
// asking for lookalikes.
func (e *Engine) handleRecommendSimilar(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	name := stringParam(req.QueryResult.Parameters, "terrain")
	if name == "" {
		return reply("Des terrains similaires à quel terrain ?"), nil
	}

	t, err := e.terrains.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			return reply(fmt.Sprintf("Je ne connais pas de terrain nommé %q.", name)), nil
		}
		return nil, err
	}

	text, err := e.recs.Similar(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return reply(text), nil
}
