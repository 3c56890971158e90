// Package catalog holds the fixed list of bookable equipment and the daily
// slot grid.  Everything here is static; there are no holidays or
// variable-length slots.
package catalog

import (
    "fmt"
    "time"
)

var resources = []string{"CANON相機", "V8", "腳架", "讀卡機"}

// First and last bookable hours; each slot is one hour long.
const (
    openHour  = 9
    closeHour = 18
)

var slots = buildSlots()

func buildSlots() []string {
    out := make([]string, 0, closeHour-openHour)
    for h := openHour; h < closeHour; h++ {
        out = append(out, fmt.Sprintf("%02d:00-%02d:00", h, h+1))
    }
    return out
}

// Resources returns the bookable resource identifiers in display order.
func Resources() []string {
    return append([]string(nil), resources...)
}

// Slots returns the slot grid for the given date.  The grid is the same for
// every day.
func Slots(_ time.Time) []string {
    return append([]string(nil), slots...)
}

// IsResource reports whether name is a catalog resource.
func IsResource(name string) bool {
    for _, r := range resources {
        if r == name {
            return true
        }
    }
    return false
}

// IsSlot reports whether slot belongs to the daily grid.
func IsSlot(slot string) bool {
    for _, s := range slots {
        if s == slot {
            return true
        }
    }
    return false
}
