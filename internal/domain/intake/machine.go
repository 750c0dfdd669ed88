// Package intake holds the reservation conversation: validators, the prompt
// catalog and the state machine that ties them together.
package intake

import (
	"strings"

	"line-reservation-bot/internal/domain/model"
)

// Outcome classifies what a single step did.
type Outcome int

const (
	OutcomeIgnored     Outcome = iota // no active conversation and not a start literal
	OutcomeStarted                    // a new conversation began
	OutcomeAdvanced                   // an answer was accepted
	OutcomeRejected                   // the answer failed validation, same step
	OutcomeReprompted                 // unrecognized choice on confirm or edit menu
	OutcomeEditing                    // the summary was rejected, edit menu shown
	OutcomeFieldChosen                // a field was picked from the edit menu
	OutcomeConfirmed                  // the summary was accepted
	OutcomeCancelled                  // the cancel literal was received
)

var outcomeNames = [...]string{
	"ignored", "started", "advanced", "rejected", "reprompted",
	"editing", "field_chosen", "confirmed", "cancelled",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Result is the output of one transition. Reply is nil when nothing should
// be sent. Confirmed carries the finished record on OutcomeConfirmed.
type Result struct {
	State     model.ConversationState
	Reply     *model.OutgoingMessage
	Outcome   Outcome
	Field     model.Field
	Confirmed *model.Record
}

// Each edit choice re-enters the ask chain at the matching step.
var fieldSteps = map[model.Field]model.Step{
	model.FieldName:     model.StepAskName,
	model.FieldPhone:    model.StepAskPhone,
	model.FieldProduct:  model.StepAskProduct,
	model.FieldDateTime: model.StepAskDateTime,
}

// Machine is stateless; it only reads its catalog.
type Machine struct {
	catalog *Catalog
}

func NewMachine(c *Catalog) *Machine {
	return &Machine{catalog: c}
}

func (m *Machine) Catalog() *Catalog { return m.catalog }

// Step computes the transition for one inbound text. It never fails: bad input
// is answered with a prompt, and unknown steps are treated as no conversation.
func (m *Machine) Step(state model.ConversationState, text string) Result {
	c := m.catalog

	if state.Step.Active() && c.IsCancel(text) {
		return Result{State: model.Idle(), Reply: plain(c.Prompts.Cancelled), Outcome: OutcomeCancelled}
	}

	rec := state.Record
	switch state.Step {
	case model.StepAskName:
		if blank(text) {
			return stay(state, c.Prompts.AskName, model.FieldName)
		}
		rec.Name = text
		return advance(rec, model.StepAskPhone, plain(c.Prompts.AskPhone), model.FieldName)

	case model.StepAskPhone:
		if !IsValidPhone(text) {
			return stay(state, c.Prompts.RetryPhone, model.FieldPhone)
		}
		rec.Phone = text
		return advance(rec, model.StepAskProduct, plain(c.Prompts.AskProduct), model.FieldPhone)

	case model.StepAskProduct:
		if blank(text) {
			return stay(state, c.Prompts.AskProduct, model.FieldProduct)
		}
		rec.Product = text
		return advance(rec, model.StepAskDateTime, plain(c.Prompts.AskDateTime), model.FieldProduct)

	case model.StepAskDateTime:
		if !IsValidDateTime(text) {
			return stay(state, c.Prompts.RetryDateTime, model.FieldDateTime)
		}
		rec.DateTime = text
		summary := c.Confirmation(rec)
		return advance(rec, model.StepConfirm, &summary, model.FieldDateTime)

	case model.StepConfirm:
		switch strings.TrimSpace(text) {
		case c.Literals.Yes:
			return Result{State: model.Idle(), Reply: plain(c.Prompts.Accepted), Outcome: OutcomeConfirmed, Confirmed: &rec}
		case c.Literals.No:
			menu := c.EditMenu()
			return Result{State: model.ConversationState{Step: model.StepSelectEdit, Record: rec}, Reply: &menu, Outcome: OutcomeEditing}
		}
		summary := c.Confirmation(rec)
		return Result{State: state, Reply: &summary, Outcome: OutcomeReprompted}

	case model.StepSelectEdit:
		f, ok := model.ParseField(strings.TrimSpace(text))
		if !ok {
			menu := c.EditMenu()
			return Result{State: state, Reply: &menu, Outcome: OutcomeReprompted}
		}
		return Result{
			State:   model.ConversationState{Step: fieldSteps[f], Record: rec},
			Reply:   plain(c.EditPrompt(f)),
			Outcome: OutcomeFieldChosen,
			Field:   f,
		}
	}

	// StepNone, or a step this build does not know.
	if c.IsStart(text) {
		return Result{
			State:   model.ConversationState{Step: model.StepAskName},
			Reply:   plain(c.Prompts.AskName),
			Outcome: OutcomeStarted,
		}
	}
	return Result{State: model.Idle(), Outcome: OutcomeIgnored}
}

func advance(rec model.Record, next model.Step, reply *model.OutgoingMessage, f model.Field) Result {
	return Result{
		State:   model.ConversationState{Step: next, Record: rec},
		Reply:   reply,
		Outcome: OutcomeAdvanced,
		Field:   f,
	}
}

func stay(state model.ConversationState, prompt string, f model.Field) Result {
	return Result{State: state, Reply: plain(prompt), Outcome: OutcomeRejected, Field: f}
}

func plain(text string) *model.OutgoingMessage {
	return &model.OutgoingMessage{Text: text}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
