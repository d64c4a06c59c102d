package chatbot

import "strconv"

// WebhookRequest is the fulfillment payload sent by the NLU engine for
// every matched intent.
type WebhookRequest struct {
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

type QueryResult struct {
	QueryText      string         `json:"queryText"`
	Parameters     map[string]any `json:"parameters"`
	Intent         Intent         `json:"intent"`
	OutputContexts []Context      `json:"outputContexts"`
}

type Intent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Context is a dialogue context. Name is fully qualified:
// <session>/contexts/<id>.
type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// WebhookResponse is the fulfillment answer: the text to speak and the
// contexts to carry into the next turn.
type WebhookResponse struct {
	FulfillmentText string    `json:"fulfillmentText"`
	OutputContexts  []Context `json:"outputContexts,omitempty"`
}

// stringParam reads a parameter that may arrive as a string, a number,
// or a single-element list (the NLU engine does all three).
func stringParam(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
