package models

// Workout is one cleaned row of the workout history dataset.
type Workout struct {
	Year      string   `json:"year"`
	Month     string   `json:"month"`
	TimeOfDay string   `json:"time_of_day"`
	ClassName string   `json:"class_name"`
	Location  string   `json:"location"`
	Duration  *float64 `json:"duration"` // minutes; nil when the cell is blank or unparsable
}
