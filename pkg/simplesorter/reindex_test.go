package simplesorter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func entriesOf(ids []uuid.UUID, orders ...int) []OrderEntry {
	entries := make([]OrderEntry, len(ids))
	for i, id := range ids {
		entries[i] = OrderEntry{ItemID: id, Order: orders[i], HasOrder: true}
	}
	return entries
}

func shiftsByItem(shifts []Shift) map[uuid.UUID]Shift {
	m := make(map[uuid.UUID]Shift, len(shifts))
	for _, s := range shifts {
		m[s.ItemID] = s
	}
	return m
}

func TestDesiredOrder(t *testing.T) {
	assert.Equal(t, 2, DesiredOrder(PositionBefore, 2))
	assert.Equal(t, 3, DesiredOrder(PositionAfter, 2))
	assert.Equal(t, 0, DesiredOrder(PositionBefore, 0))
}

func TestPlanReposition(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	ids := []uuid.UUID{a, b, c, d}

	tests := []struct {
		name        string
		item        uuid.UUID
		previous    int
		position    Position
		targetIndex int
		wantDesired int
		wantShifts  map[uuid.UUID][2]int
	}{
		{
			name:        "move first item after last",
			item:        a,
			previous:    0,
			position:    PositionAfter,
			targetIndex: 3,
			wantDesired: 4,
			wantShifts: map[uuid.UUID][2]int{
				b: {1, 0},
				c: {2, 1},
				d: {3, 2},
			},
		},
		{
			name:        "move last item before first",
			item:        d,
			previous:    3,
			position:    PositionBefore,
			targetIndex: 0,
			wantDesired: 0,
			wantShifts: map[uuid.UUID][2]int{
				a: {0, 1},
				b: {1, 2},
				c: {2, 3},
			},
		},
		{
			name:        "move after a later item",
			item:        b,
			previous:    1,
			position:    PositionAfter,
			targetIndex: 2,
			wantDesired: 3,
			wantShifts: map[uuid.UUID][2]int{
				c: {2, 1},
				d: {3, 2},
			},
		},
		{
			name:        "move up one slot",
			item:        c,
			previous:    2,
			position:    PositionBefore,
			targetIndex: 1,
			wantDesired: 1,
			wantShifts: map[uuid.UUID][2]int{
				b: {1, 2},
			},
		},
		{
			name:        "before own index is a no-op",
			item:        b,
			previous:    1,
			position:    PositionBefore,
			targetIndex: 1,
			wantDesired: 1,
			wantShifts:  map[uuid.UUID][2]int{},
		},
		{
			name:        "after previous index is a no-op",
			item:        c,
			previous:    2,
			position:    PositionAfter,
			targetIndex: 1,
			wantDesired: 2,
			wantShifts:  map[uuid.UUID][2]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanReposition(tt.item, tt.previous, tt.position, tt.targetIndex, entriesOf(ids, 0, 1, 2, 3))

			assert.Equal(t, tt.item, plan.ItemID)
			assert.Equal(t, tt.previous, plan.PreviousOrder)
			assert.Equal(t, tt.wantDesired, plan.DesiredOrder)
			assert.Len(t, plan.Shifts, len(tt.wantShifts))

			got := shiftsByItem(plan.Shifts)
			for id, want := range tt.wantShifts {
				shift, ok := got[id]
				if assert.True(t, ok, "missing shift for %s", id) {
					assert.Equal(t, want[0], shift.From)
					assert.Equal(t, want[1], shift.To)
				}
			}
			_, movedShifted := got[tt.item]
			assert.False(t, movedShifted, "moving item must not be shifted")
		})
	}
}

func TestPlanReposition_NewItem(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	entries := entriesOf([]uuid.UUID{a, b, c}, 0, 1, 2)
	x := uuid.New()

	t.Run("before first shifts everything", func(t *testing.T) {
		plan := PlanReposition(x, NewItemOrder, PositionBefore, 0, entries)
		assert.Equal(t, 0, plan.DesiredOrder)
		got := shiftsByItem(plan.Shifts)
		assert.Len(t, got, 3)
		assert.Equal(t, 1, got[a].To)
		assert.Equal(t, 2, got[b].To)
		assert.Equal(t, 3, got[c].To)
	})

	t.Run("after middle shifts the tail", func(t *testing.T) {
		plan := PlanReposition(x, NewItemOrder, PositionAfter, 1, entries)
		assert.Equal(t, 2, plan.DesiredOrder)
		got := shiftsByItem(plan.Shifts)
		assert.Len(t, got, 1)
		assert.Equal(t, Shift{ItemID: c, From: 2, To: 3}, got[c])
	})

	t.Run("after last shifts nothing", func(t *testing.T) {
		plan := PlanReposition(x, NewItemOrder, PositionAfter, 2, entries)
		assert.Equal(t, 3, plan.DesiredOrder)
		assert.Empty(t, plan.Shifts)
	})

	t.Run("empty list", func(t *testing.T) {
		plan := PlanReposition(x, NewItemOrder, PositionBefore, 0, nil)
		assert.Equal(t, 0, plan.DesiredOrder)
		assert.Empty(t, plan.Shifts)
	})
}

func TestPlanReposition_SkipsUnorderedEntries(t *testing.T) {
	a, b, u := uuid.New(), uuid.New(), uuid.New()
	entries := []OrderEntry{
		{ItemID: a, Order: 0, HasOrder: true},
		{ItemID: b, Order: 1, HasOrder: true},
		{ItemID: u},
	}

	plan := PlanReposition(uuid.New(), NewItemOrder, PositionBefore, 0, entries)

	got := shiftsByItem(plan.Shifts)
	assert.Len(t, got, 2)
	_, ok := got[u]
	assert.False(t, ok)
}
