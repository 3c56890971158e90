package booking

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/gear-reservation/internal/model"
)

func rec(order, name, dept, resource, slot string, st model.Status) model.ReservationRecord {
    return model.ReservationRecord{
        OrderID: order, RequesterName: name, Department: dept,
        Resource: resource, Date: day, Slot: slot, Purpose: "p",
        Status: st, SubmittedAt: fixedNow,
    }
}

func sampleSnapshot() []model.ReservationRecord {
    return []model.ReservationRecord{
        rec("o1", "Alice", "Marketing", "V8", "09:00-10:00", model.StatusPending),
        rec("o2", "Bob", "IT", "V8", "10:00-11:00", model.StatusApproved),
        rec("o3", "Carol", "IT", "V8", "11:00-12:00", model.StatusReturned),
        rec("o4", "Dave", "Sales", "腳架", "09:00-10:00", model.StatusCancelled),
        rec("o5", "Eve", "Design", "V8", "12:00-13:00", model.StatusRejected),
    }
}

func TestHasConflict(t *testing.T) {
    snap := sampleSnapshot()
    assert.True(t, HasConflict("V8", day, "09:00-10:00", snap))
    assert.True(t, HasConflict("V8", day, "10:00-11:00", snap))
    assert.False(t, HasConflict("V8", day, "11:00-12:00", snap), "returned frees the slot")
    assert.False(t, HasConflict("腳架", day, "09:00-10:00", snap), "cancelled frees the slot")
    assert.False(t, HasConflict("V8", day, "12:00-13:00", snap), "rejected frees the slot")
    assert.False(t, HasConflict("V8", day.AddDate(0, 0, 1), "09:00-10:00", snap))
    assert.False(t, HasConflict("V8", day, "09:00-10:00", nil))
}

func TestFindConflicts_KeepsCandidateOrder(t *testing.T) {
    snap := sampleSnapshot()
    got := FindConflicts([]SlotKey{
        {"V8", "10:00-11:00"},
        {"V8", "11:00-12:00"},
        {"V8", "09:00-10:00"},
    }, day, snap)
    require.Len(t, got, 2)
    assert.Equal(t, "10:00-11:00", got[0].Slot)
    assert.Equal(t, model.StatusApproved, got[0].Status)
    assert.Equal(t, "Bob", got[0].Requester)
    assert.Equal(t, "09:00-10:00", got[1].Slot)
    assert.Equal(t, "o1", got[1].OrderID)

    assert.Nil(t, FindConflicts([]SlotKey{{"讀卡機", "09:00-10:00"}}, day, snap))
}

func TestDailyAvailability(t *testing.T) {
    board := DailyAvailability("V8", time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), sampleSnapshot())
    require.Len(t, board, 9)
    assert.Equal(t, "09:00-10:00", board[0].Slot)
    assert.Equal(t, "17:00-18:00", board[8].Slot)

    assert.False(t, board[0].Free)
    assert.Equal(t, &Occupant{OrderID: "o1", RequesterName: "Alice", Department: "Marketing", Status: model.StatusPending}, board[0].Occupant)
    assert.False(t, board[1].Free)
    assert.True(t, board[2].Free)
    assert.Nil(t, board[2].Occupant)
    assert.True(t, board[3].Free)

    empty := DailyAvailability("讀卡機", day, sampleSnapshot())
    for _, s := range empty {
        assert.True(t, s.Free)
    }
}

func TestSearch(t *testing.T) {
    snap := sampleSnapshot()

    hits := Search("it", snap)
    require.Len(t, hits, 2)
    assert.Equal(t, "o2", hits[0].OrderID)
    assert.Equal(t, "o3", hits[1].OrderID)

    assert.Len(t, Search("ALI", snap), 1)
    assert.Len(t, Search("  eve ", snap), 1)
    assert.Empty(t, Search("nobody", snap))
    assert.Empty(t, Search("", snap))
    // Regex metacharacters are matched literally.
    assert.Empty(t, Search(".*", snap))
}

func TestPendingQueueAndStatistics(t *testing.T) {
    snap := sampleSnapshot()

    pending := PendingQueue(snap)
    require.Len(t, pending, 1)
    assert.Equal(t, "o1", pending[0].OrderID)
    assert.NotNil(t, PendingQueue(nil))

    assert.Equal(t, map[string]int{"V8": 4, "腳架": 1}, UsageStatistics(snap))
    assert.Empty(t, UsageStatistics(nil))
}
