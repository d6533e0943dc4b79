package models

// User identifies the doorman a session belongs to.
type User struct {
	// ID is the backend user id; zero when the backend did not send one.
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	// Building is the building/unit label the user works at.
	Building string `json:"building"`
}

// Session pairs an access token with the user it identifies. Token and User
// are either both set or both empty.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether the session carries a token and a user.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Registration is the payload of the sign-up form.
type Registration struct {
	Username   string
	Email      string
	Password   []byte
	BuildingID int64
}
