package model

// EventRecord is handed to Model.EventLogger as agents act
type EventRecord struct {
	Type    string
	AgentID int
	Step    int
	Body    any
}

const (
	EventHarm     = "Harm"
	EventModerate = "Moderate"
	EventPost     = "Post"
	EventLabel    = "Label"
)

type HarmEventBody struct {
	Target int
}

type ModerateEventBody struct {
	Target  int
	Removed int
}

type PostEventBody struct {
	Token   int
	Targets []int
}

type LabelEventBody struct {
	Tokens []int
}

func (m *Model) logEvent(agent Agent, eventType string, body any) {
	if m.EventLogger == nil {
		return
	}
	m.EventLogger(&EventRecord{
		Type:    eventType,
		AgentID: agent.ID(),
		Step:    m.CurStep,
		Body:    body,
	})
}
