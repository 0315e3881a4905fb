package plugin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Weekday names a day of the week in a shop schedule.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the days in schedule order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday matches a day name case-insensitively.
func ParseWeekday(s string) (Weekday, bool) {
	d := Weekday(strings.ToLower(strings.TrimSpace(s)))
	for _, w := range Weekdays {
		if w == d {
			return d, true
		}
	}
	return "", false
}

// ParseClock converts "09:00" or "0900" into the HHMM integer 900.
func ParseClock(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 2400 || n%100 > 59 {
		return 0, false
	}
	return n, true
}

// HoursBlock is one opening period of a day. Start and End are HHMM integers.
type HoursBlock struct {
	Day   Weekday `json:"day"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

func (b HoursBlock) String() string {
	return fmt.Sprintf("%s %04d-%04d", b.Day, b.Start, b.End)
}

// ShopHours is the ordered list of opening blocks of a shop.
type ShopHours struct {
	blocks []HoursBlock
}

// AddBlock appends an opening block to the schedule.
func (h *ShopHours) AddBlock(day Weekday, start, end int) {
	h.blocks = append(h.blocks, HoursBlock{Day: day, Start: start, End: end})
}

// Blocks returns all blocks in insertion order.
func (h ShopHours) Blocks() []HoursBlock {
	out := make([]HoursBlock, len(h.blocks))
	copy(out, h.blocks)
	return out
}

// Day returns the blocks of a single day.
func (h ShopHours) Day(day Weekday) []HoursBlock {
	var out []HoursBlock
	for _, b := range h.blocks {
		if b.Day == day {
			out = append(out, b)
		}
	}
	return out
}

// IsEmpty reports whether no block was added.
func (h ShopHours) IsEmpty() bool {
	return len(h.blocks) == 0
}

// MarshalJSON encodes the schedule as a list of blocks.
func (h ShopHours) MarshalJSON() ([]byte, error) {
	if h.blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.blocks)
}

// UnmarshalJSON decodes a list of blocks.
func (h *ShopHours) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &h.blocks)
}
