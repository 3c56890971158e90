package catalog

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestSlots_NineHourGrid(t *testing.T) {
    got := Slots(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
    assert.Len(t, got, 9)
    assert.Equal(t, "09:00-10:00", got[0])
    assert.Equal(t, "17:00-18:00", got[8])
    assert.Equal(t, got, Slots(time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)))
}

func TestSlots_ReturnsCopy(t *testing.T) {
    s := Slots(time.Time{})
    s[0] = "mutated"
    assert.True(t, IsSlot("09:00-10:00"))
    assert.Equal(t, "09:00-10:00", Slots(time.Time{})[0])
}

func TestMembership(t *testing.T) {
    assert.True(t, IsResource("CANON相機"))
    assert.True(t, IsResource("讀卡機"))
    assert.False(t, IsResource("drone"))
    assert.True(t, IsSlot("12:00-13:00"))
    assert.False(t, IsSlot("9:00-10:00"))
    assert.False(t, IsSlot("18:00-19:00"))
    assert.Equal(t, []string{"CANON相機", "V8", "腳架", "讀卡機"}, Resources())
}
