package model

// Actor identifies the user on whose behalf an action runs. UserID is set by
// the host platform; Name is empty when the host could not resolve the user.
type Actor struct {
	UserID string
	Name   string
}
