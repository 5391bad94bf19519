package model

// Mode selects which authentication endpoint a submit goes to.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// Endpoint returns the remote path for the mode.
func (m Mode) Endpoint() string {
	if m == ModeRegister {
		return "/register"
	}
	return "/login"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeRegister {
		return ModeLogin
	}
	return ModeRegister
}

func (m Mode) String() string {
	if m == ModeRegister {
		return "Register"
	}
	return "Login"
}

// Credentials is the login/register request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the login/register response. UserID is empty when the
// service did not authenticate the user.
type AuthResult struct {
	Message string `json:"message"`
	UserID  UserID `json:"user_id,omitempty"`
}
