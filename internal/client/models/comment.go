package models

import "time"

// Comment is a free-text note attached to an action or a task.
type Comment struct {
	ID        string    `json:"id"`
	ActionID  int64     `json:"actionId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key returns the collection key of the comment.
func (c Comment) Key() string {
	return c.ID
}

// Validate checks the form constraints of a comment.
func (c Comment) Validate() error {
	errs := ValidationErrors{}
	errs.required("text", c.Text)
	return errs.orNil()
}
