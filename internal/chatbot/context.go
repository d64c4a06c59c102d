package chatbot

import "strings"

// Context identifiers used across the conversation flows. Lifespans
// follow the flows: two turns for a pending slot, four for a list the
// user may pick from later.
const (
	ctxBookingRequested    = "booking-requested"
	ctxDateTimeProvided    = "datetime-provided"
	ctxTerrainChosen       = "terrain-chosen"
	ctxDateTerrainProvided = "date-terrain-provided"
	ctxAwaitingModifyInfo  = "awaiting-modify-info"
	ctxAwaitingNewTime     = "awaiting-new-time"
	ctxModifyConfirmation  = "modify-confirmation"
	ctxAwaitingCancelInfo  = "awaiting-cancel-info"
	ctxCancelConfirmation  = "cancel-confirmation"

	defaultLifespan  = 2
	listPickLifespan = 4
)

// contextName builds the fully qualified context name for a session.
func contextName(session, id string) string {
	return session + "/contexts/" + id
}

// findContext locates a context by its short id, matching on the suffix
// so the session prefix never matters.
func findContext(contexts []Context, id string) *Context {
	for i := range contexts {
		if strings.HasSuffix(contexts[i].Name, "/contexts/"+id) {
			return &contexts[i]
		}
	}
	return nil
}

// slotParams is the typed view of the parameters a context carries
// between turns: the slot being negotiated and the user it belongs to.
type slotParams struct {
	Date     string // "2006-01-02"
	Start    string // "HH:mm"
	Display  string // human-readable date, French
	Terrain  string
	UserID   string
	OldStart string // modification flow: the slot being moved
}

func (p slotParams) toMap() map[string]any {
	m := make(map[string]any)
	if p.Date != "" {
		m["date"] = p.Date
	}
	if p.Start != "" {
		m["start"] = p.Start
	}
	if p.Display != "" {
		m["display"] = p.Display
	}
	if p.Terrain != "" {
		m["terrain"] = p.Terrain
	}
	if p.UserID != "" {
		m["userId"] = p.UserID
	}
	if p.OldStart != "" {
		m["oldStart"] = p.OldStart
	}
	return m
}

func slotParamsFrom(ctx *Context) slotParams {
	if ctx == nil || ctx.Parameters == nil {
		return slotParams{}
	}
	return slotParams{
		Date:     stringParam(ctx.Parameters, "date"),
		Start:    stringParam(ctx.Parameters, "start"),
		Display:  stringParam(ctx.Parameters, "display"),
		Terrain:  stringParam(ctx.Parameters, "terrain"),
		UserID:   stringParam(ctx.Parameters, "userId"),
		OldStart: stringParam(ctx.Parameters, "oldStart"),
	}
}

// outputContext builds a context carrying the slot parameters.
func outputContext(session, id string, lifespan int, p slotParams) Context {
	return Context{
		Name:          contextName(session, id),
		LifespanCount: lifespan,
		Parameters:    p.toMap(),
	}
}
