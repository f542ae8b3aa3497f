package simplesorter

import "github.com/google/uuid"

// OrderEntry is one listed item and its stored sort order, if any.
type OrderEntry struct {
	ItemID   uuid.UUID
	Order    int
	HasOrder bool
}

// RepositionPlan lists every write needed to move one item.
type RepositionPlan struct {
	ItemID        uuid.UUID
	PreviousOrder int
	DesiredOrder  int
	Shifts        []Shift
}

// DesiredOrder returns the order an item placed at position relative to
// targetIndex receives.
func DesiredOrder(position Position, targetIndex int) int {
	if position == PositionBefore {
		return targetIndex
	}
	return targetIndex + 1
}

// PlanReposition computes the shifts of the other entries when itemID moves
// from previousOrder (NewItemOrder for a new item) to the slot selected by
// position and targetIndex. Entries without a stored order and the moving
// item itself are never shifted.
//
// A new item pushes every entry at or after the desired order up by one.
// A moving item opens its new slot and closes its old one:
//
//	previous > desired and desired <= order < previous   -> order + 1
//	previous < desired and previous < order <= desired   -> order - 1
func PlanReposition(itemID uuid.UUID, previousOrder int, position Position, targetIndex int, entries []OrderEntry) RepositionPlan {
	desired := DesiredOrder(position, targetIndex)
	plan := RepositionPlan{
		ItemID:        itemID,
		PreviousOrder: previousOrder,
		DesiredOrder:  desired,
	}

	for _, e := range entries {
		if e.ItemID == itemID || !e.HasOrder {
			continue
		}

		order := e.Order
		switch {
		case previousOrder == NewItemOrder:
			if order >= desired {
				plan.Shifts = append(plan.Shifts, Shift{ItemID: e.ItemID, From: order, To: order + 1})
			}
		case previousOrder > desired && order >= desired && order < previousOrder:
			plan.Shifts = append(plan.Shifts, Shift{ItemID: e.ItemID, From: order, To: order + 1})
		case previousOrder < desired && order <= desired && order > previousOrder:
			plan.Shifts = append(plan.Shifts, Shift{ItemID: e.ItemID, From: order, To: order - 1})
		}
	}

	return plan
}
