package domain

// Capabilities are non-exclusive role flags plus the user's department name.
type Capabilities struct {
	Manager    bool
	Production bool
	Utilities  bool
	Department string
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID           string
	Username     string
	DisplayName  string
	Capabilities Capabilities
}

// Name returns the display name, falling back to the username.
func (a Actor) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}
