package model

import "time"

// Step is the position of a user's conversation in the intake sequence.
type Step string

const (
	StepNone        Step = ""
	StepAskName     Step = "ask_name"
	StepAskPhone    Step = "ask_phone"
	StepAskProduct  Step = "ask_product"
	StepAskDateTime Step = "ask_datetime"
	StepConfirm     Step = "confirm"
	StepSelectEdit  Step = "select_edit"
)

// Valid reports whether s is one of the known steps.
func (s Step) Valid() bool {
	switch s {
	case StepNone, StepAskName, StepAskPhone, StepAskProduct, StepAskDateTime, StepConfirm, StepSelectEdit:
		return true
	}
	return false
}

// Active is false only for StepNone.
func (s Step) Active() bool { return s != StepNone }

func (s Step) String() string {
	if s == StepNone {
		return "none"
	}
	return string(s)
}

// Field is an editable reservation field. Its value is the literal reply
// text the edit menu sends back.
type Field string

const (
	FieldName     Field = "name"
	FieldPhone    Field = "phone"
	FieldProduct  Field = "product"
	FieldDateTime Field = "datetime"
)

// Fields lists the editable fields in ask order.
var Fields = []Field{FieldName, FieldPhone, FieldProduct, FieldDateTime}

// ParseField maps a literal key to its Field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Record is the partially or fully filled reservation data of one user.
type Record struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Product  string `json:"product,omitempty"`
	DateTime string `json:"datetime,omitempty"`
}

// Complete reports whether every field has been answered.
func (r Record) Complete() bool {
	return r.Name != "" && r.Phone != "" && r.Product != "" && r.DateTime != ""
}

// ConversationState is what the store keeps per user.
type ConversationState struct {
	Step      Step      `json:"step"`
	Record    Record    `json:"record"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Idle returns the state of a user with no active conversation.
func Idle() ConversationState {
	return ConversationState{Step: StepNone}
}
