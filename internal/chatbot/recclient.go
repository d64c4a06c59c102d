package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terrabook/pitch-booking-backend/internal/recommendation"
)

// RecClient answers the recommendation intents by calling the
// service's own REST endpoints, so the chatbot and the frontend always
// see the same rankings.
type RecClient struct {
	baseURL string
	client  *http.Client
}

var _ Recommender = (*RecClient)(nil)

func NewRecClient(baseURL string, timeout time.Duration) *RecClient {
	return &RecClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *RecClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("recommendation endpoint %s: status %d: %s", path, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *RecClient) Popular(ctx context.Context) (string, error) {
	var payload struct {
		Terrains []recommendation.TerrainRec `json:"terrains"`
	}
	if err := c.get(ctx, "/v1/recommendations/popular", &payload); err != nil {
		return "", err
	}
	if len(payload.Terrains) == 0 {
		return "Je n'ai pas encore assez de réservations pour dégager des terrains populaires.", nil
	}
	return "Les terrains les plus populaires en ce moment :\n" + terrainLines(payload.Terrains), nil
}

func (c *RecClient) Global(ctx context.Context) (string, error) {
	var payload struct {
		Terrains []recommendation.TerrainRec `json:"terrains"`
	}
	if err := c.get(ctx, "/v1/recommendations/global", &payload); err != nil {
		return "", err
	}
	if len(payload.Terrains) == 0 {
		return "Aucune réservation confirmée pour l'instant, je n'ai rien à recommander.", nil
	}
	return "Les terrains les plus réservés par l'ensemble des joueurs :\n" + terrainLines(payload.Terrains), nil
}

func (c *RecClient) Personalized(ctx context.Context, userID string) (string, error) {
	var payload recommendation.Personalized
	if err := c.get(ctx, "/v1/recommendations/personalized/"+userID, &payload); err != nil {
		return "", err
	}
	if len(payload.Frequent) == 0 && len(payload.Similar) == 0 {
		return "Je ne vous connais pas encore assez. Réservez quelques terrains et je pourrai vous conseiller !", nil
	}

	var b strings.Builder
	if len(payload.Frequent) > 0 {
		b.WriteString("Vos terrains habituels :\n")
		b.WriteString(terrainLines(payload.Frequent))
	}
	if len(payload.Similar) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Dans les mêmes quartiers, vous pourriez aimer :\n")
		b.WriteString(terrainLines(payload.Similar))
	}
	return b.String(), nil
}

func (c *RecClient) Hourly(ctx context.Context, userID string) (string, error) {
	var payload struct {
		Recommendations []recommendation.HourlyRec `json:"recommendations"`
	}
	if err := c.get(ctx, "/v1/recommendations/hourly/"+userID, &payload); err != nil {
		return "", err
	}
	if len(payload.Recommendations) == 0 {
		return "Je ne connais pas encore vos horaires favoris. Réservez quelques créneaux et je m'en souviendrai !", nil
	}

	var b strings.Builder
	b.WriteString("À vos heures habituelles, voici ce qui est libre aujourd'hui :\n")
	for _, rec := range payload.Recommendations {
		if len(rec.Terrains) == 0 {
			fmt.Fprintf(&b, "- %s : tout est déjà pris\n", rec.Start)
			continue
		}
		fmt.Fprintf(&b, "- %s : %s\n", rec.Start, strings.Join(rec.Terrains, ", "))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *RecClient) Times(ctx context.Context, userID string) (string, error) {
	var payload struct {
		PopularTimes []recommendation.TimeCount `json:"popular_times"`
	}
	if err := c.get(ctx, "/v1/recommendations/times/"+userID, &payload); err != nil {
		return "", err
	}
	if len(payload.PopularTimes) == 0 {
		return "Je ne connais pas encore vos horaires favoris.", nil
	}

	var b strings.Builder
	b.WriteString("Vos horaires de jeu préférés :\n")
	for _, t := range payload.PopularTimes {
		fmt.Fprintf(&b, "- %s (%d réservations)\n", t.Start, t.Count)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *RecClient) PriceBand(ctx context.Context, userID string) (string, error) {
	var payload recommendation.PriceAdvice
	if err := c.get(ctx, "/v1/recommendations/price/"+userID, &payload); err != nil {
		return "", err
	}
	if len(payload.Terrains) == 0 {
		return "Je n'ai pas trouvé de terrain dans votre gamme de prix habituelle.", nil
	}
	return fmt.Sprintf("Vous dépensez en moyenne %.0f DT par créneau. Dans cette gamme :\n%s",
		payload.AvgAmount, terrainLines(payload.Terrains)), nil
}

func (c *RecClient) Friends(ctx context.Context, userID string) (string, error) {
	var payload struct {
		Terrains []recommendation.TerrainRec `json:"terrains"`
	}
	if err := c.get(ctx, "/v1/recommendations/friends/"+userID, &payload); err != nil {
		return "", err
	}
	if len(payload.Terrains) == 0 {
		return "Vos amis n'ont encore rien réservé. Soyez le premier à lancer un match !", nil
	}
	return "Vos amis jouent sur ces terrains :\n" + terrainLines(payload.Terrains), nil
}

func (c *RecClient) TopRated(ctx context.Context) (string, error) {
	var payload struct {
		Recommendations []recommendation.RatedTerrain `json:"recommendations"`
	}
	if err := c.get(ctx, "/v1/recommendations/ratings", &payload); err != nil {
		return "", err
	}
	if len(payload.Recommendations) == 0 {
		return "Aucun terrain n'a encore assez d'excellentes notes.", nil
	}

	var b strings.Builder
	b.WriteString("Les terrains les mieux notés par les joueurs :\n")
	for _, t := range payload.Recommendations {
		fmt.Fprintf(&b, "- %s (%s) — %.1f/10\n", t.Name, t.Location, t.AvgScore)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *RecClient) Promotions(ctx context.Context) (string, error) {
	var payload struct {
		Promotions []recommendation.Promo `json:"promotions"`
	}
	if err := c.get(ctx, "/v1/recommendations/promotions", &payload); err != nil {
		return "", err
	}
	if len(payload.Promotions) == 0 {
		return "Aucune promotion en cours pour le moment.", nil
	}

	var b strings.Builder
	b.WriteString("Promotions en cours :\n")
	for _, p := range payload.Promotions {
		fmt.Fprintf(&b, "- %s (%s) : -%d%%, soit %.2f DT au lieu de %.2f DT, jusqu'au %s\n",
			p.TerrainName, p.Location, p.Discount, p.PromoPrice, p.PricePerSlot, p.EndDate)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *RecClient) Weather(ctx context.Context) (string, error) {
	var payload recommendation.WeatherAdvice
	if err := c.get(ctx, "/v1/recommendations/weather", &payload); err != nil {
		return "", err
	}
	if len(payload.Terrains) == 0 {
		return fmt.Sprintf("%s (%.0f°C à %s), mais je n'ai pas de terrain à vous proposer.",
			payload.Title, payload.TempC, payload.City), nil
	}
	return fmt.Sprintf("%s (%.0f°C à %s) :\n%s",
		payload.Title, payload.TempC, payload.City, terrainLines(payload.Terrains)), nil
}

func (c *RecClient) ML(ctx context.Context, userID string) (string, error) {
	var payload struct {
		Terrains []recommendation.TerrainRec `json:"terrains"`
	}
	if err := c.get(ctx, "/v1/recommendations/ml/"+userID, &payload); err != nil {
		return "", err
	}
	if len(payload.Terrains) == 0 {
		return "Le moteur de suggestions n'a encore rien trouvé pour vous.", nil
	}
	return "Suggestions sur mesure pour vous :\n" + terrainLines(payload.Terrains), nil
}

func (c *RecClient) Similar(ctx context.Context, terrainID string) (string, error) {
	var payload struct {
		Terrains []recommendation.TerrainRec `json:"terrains"`
	}
	if err := c.get(ctx, "/v1/recommendations/similar/"+terrainID, &payload); err != nil {
		return "", err
	}
	if len(payload.Terrains) == 0 {
		return "Je n'ai pas trouvé de terrain similaire dans le même quartier.", nil
	}
	return "Dans le même quartier, vous pourriez aimer :\n" + terrainLines(payload.Terrains), nil
}

func terrainLines(terrains []recommendation.TerrainRec) string {
	var b strings.Builder
	for _, t := range terrains {
		fmt.Fprintf(&b, "- %s (%s) — %.2f DT le créneau\n", t.Name, t.Location, t.PricePerSlot)
	}
	return strings.TrimRight(b.String(), "\n")
}
