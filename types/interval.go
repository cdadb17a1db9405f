package types

import "time"

type Interval string

const (
	Hour Interval = "60"
	Day  Interval = "D"
	Week Interval = "W"
)

var IntervalToTime = map[Interval]time.Duration{
	Hour: time.Hour,
	Day:  time.Hour * 24,
	Week: time.Hour * 24 * 7,
}

var ConvertInterval = map[string]Interval{
	"60": Hour,
	"D":  Day,
	"W":  Week,
}
