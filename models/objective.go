package models

import (
	"encoding/json"
	"fmt"
)

// ObjectiveKind is the type tag of an Objective.
type ObjectiveKind string

const (
	KindSpecificTask      ObjectiveKind = "complete_specific_task"
	KindDailyQuantity     ObjectiveKind = "daily_quantity"
	KindCategoryDiversity ObjectiveKind = "category_diversity"
	KindPriorityClear     ObjectiveKind = "priority_clear"
	KindStreak            ObjectiveKind = "streak"
	KindQuantityInWindow  ObjectiveKind = "quantity_in_window"
	KindOverdueClear      ObjectiveKind = "overdue_clear"
	KindMasterChallenge   ObjectiveKind = "master_challenge"
)

// Goal is the kind-specific parameter set of an Objective.
// The set of implementations is closed; switch on the concrete type.
type Goal interface {
	Kind() ObjectiveKind
	isGoal()
}

// SpecificTask requires one referenced task to be completed.
type SpecificTask struct {
	TaskID string `json:"task_id"`
}

// DailyQuantity requires Count tasks completed on the current calendar day.
type DailyQuantity struct {
	Count int `json:"count"`
}

// CategoryDiversity requires completed tasks in Categories distinct categories today.
type CategoryDiversity struct {
	Categories int `json:"categories"`
}

// PriorityClear requires every task at Priority to be completed.
type PriorityClear struct {
	Priority int `json:"priority"`
}

// Streak requires a completion streak of Days days.
type Streak struct {
	Days int `json:"days"`
}

// QuantityInWindow requires Count completions within the last Days days.
type QuantityInWindow struct {
	Count int `json:"count"`
	Days  int `json:"days"`
}

// OverdueClear requires every overdue task to be completed.
type OverdueClear struct{}

// MasterChallenge requires Count completions spanning Categories categories within Days days.
type MasterChallenge struct {
	Count      int `json:"count"`
	Categories int `json:"categories"`
	Days       int `json:"days"`
}

func (SpecificTask) Kind() ObjectiveKind      { return KindSpecificTask }
func (DailyQuantity) Kind() ObjectiveKind     { return KindDailyQuantity }
func (CategoryDiversity) Kind() ObjectiveKind { return KindCategoryDiversity }
func (PriorityClear) Kind() ObjectiveKind     { return KindPriorityClear }
func (Streak) Kind() ObjectiveKind            { return KindStreak }
func (QuantityInWindow) Kind() ObjectiveKind  { return KindQuantityInWindow }
func (OverdueClear) Kind() ObjectiveKind      { return KindOverdueClear }
func (MasterChallenge) Kind() ObjectiveKind   { return KindMasterChallenge }

func (SpecificTask) isGoal()      {}
func (DailyQuantity) isGoal()     {}
func (CategoryDiversity) isGoal() {}
func (PriorityClear) isGoal()     {}
func (Streak) isGoal()            {}
func (QuantityInWindow) isGoal()  {}
func (OverdueClear) isGoal()      {}
func (MasterChallenge) isGoal()   {}

// Objective is a typed goal attached to a Node or Level.
// It is replaced wholesale, never patched, when it becomes unachievable.
// Goal is nil when the stored kind is not recognised.
type Objective struct {
	Kind        ObjectiveKind
	Description string
	Goal        Goal
}

// NewObjective builds an objective whose kind matches its goal.
func NewObjective(goal Goal, description string) Objective {
	return Objective{Kind: goal.Kind(), Description: description, Goal: goal}
}

type objectiveJSON struct {
	Type        ObjectiveKind   `json:"type"`
	Description string          `json:"description"`
	Params      json.RawMessage `json:"params,omitempty"`
}

func (o Objective) MarshalJSON() ([]byte, error) {
	out := objectiveJSON{Type: o.Kind, Description: o.Description}
	if o.Goal != nil {
		params, err := json.Marshal(o.Goal)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s params: %w", o.Kind, err)
		}
		out.Params = params
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes known kinds into their goal struct. Unknown kinds
// keep their tag and decode with a nil Goal so reads never fail on them.
func (o *Objective) UnmarshalJSON(data []byte) error {
	var in objectiveJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	o.Kind = in.Type
	o.Description = in.Description
	o.Goal = nil

	var goal Goal
	switch in.Type {
	case KindSpecificTask:
		goal = decodeGoal[SpecificTask](in.Params)
	case KindDailyQuantity:
		goal = decodeGoal[DailyQuantity](in.Params)
	case KindCategoryDiversity:
		goal = decodeGoal[CategoryDiversity](in.Params)
	case KindPriorityClear:
		goal = decodeGoal[PriorityClear](in.Params)
	case KindStreak:
		goal = decodeGoal[Streak](in.Params)
	case KindQuantityInWindow:
		goal = decodeGoal[QuantityInWindow](in.Params)
	case KindOverdueClear:
		goal = OverdueClear{}
	case KindMasterChallenge:
		goal = decodeGoal[MasterChallenge](in.Params)
	default:
		return nil
	}
	o.Goal = goal
	return nil
}

// decodeGoal returns nil for malformed params so the objective reads as invalid.
func decodeGoal[T Goal](raw json.RawMessage) Goal {
	var g T
	if len(raw) == 0 {
		return g
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil
	}
	return g
}
