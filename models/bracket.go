package models

// PlayoffBracket is the derived view of a division's knockout stage: the
// seed order used at generation time, the two semifinals, and the final.
// The final's team slots stay nil until both semifinals complete.
type PlayoffBracket struct {
	DivisionID int     `json:"division_id"`
	Seeds      []int   `json:"seeds,omitempty"`
	Semifinals []Match `json:"semifinals"`
	Final      *Match  `json:"final,omitempty"`
}
