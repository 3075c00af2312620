// Package model defines shared data structures.
package model

import "time"

// Note is one free-text note attached to a day. Immutable once created.
type Note struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// DayRecord holds the tracking state for one calendar day.
type DayRecord struct {
	Date          string `json:"date"`
	ApproachCount int    `json:"approachCount"`
	Notes         []Note `json:"notes"`
}

// Countdown is the time left until the daily deadline, split for display.
type Countdown struct {
	Hours   int
	Minutes int
	Seconds int
	Total   time.Duration
}
