package authkit

// AuthState is the client side authentication state. The four fields always
// change together within a single action, so observers never see a torn
// combination such as IsAuthenticated true with a nil User.
type AuthState struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// InitialState is the state a fresh store starts from: loading until the
// provider's restored session, if any, has been reconciled.
func InitialState() AuthState {
	return AuthState{
		User:            nil,
		IsAuthenticated: false,
		IsLoading:       true,
		Error:           "",
	}
}

// ActionType names a state transition.
type ActionType string

const (
	ActionLoginStart      ActionType = "auth.login.start"
	ActionLoginSuccess    ActionType = "auth.login.success"
	ActionLoginError      ActionType = "auth.login.error"
	ActionRegisterStart   ActionType = "auth.register.start"
	ActionRegisterSuccess ActionType = "auth.register.success"
	ActionRegisterError   ActionType = "auth.register.error"
	ActionLogout          ActionType = "auth.logout"
	ActionUpdateUser      ActionType = "auth.update_user"
	ActionSetLoading      ActionType = "auth.set_loading"
)

// Action is a named transition plus its payload. Only the field relevant to
// the action type is read by the reducer.
type Action struct {
	Type    ActionType
	User    *User
	Error   string
	Loading bool
}

func LoginStart() Action             { return Action{Type: ActionLoginStart} }
func LoginSuccess(u *User) Action    { return Action{Type: ActionLoginSuccess, User: u} }
func LoginError(msg string) Action   { return Action{Type: ActionLoginError, Error: msg} }
func RegisterStart() Action          { return Action{Type: ActionRegisterStart} }
func RegisterSuccess(u *User) Action { return Action{Type: ActionRegisterSuccess, User: u} }

func RegisterError(msg string) Action {
	return Action{Type: ActionRegisterError, Error: msg}
}

func Logout() Action            { return Action{Type: ActionLogout} }
func UpdateUser(u *User) Action { return Action{Type: ActionUpdateUser, User: u} }
func SetLoading(v bool) Action  { return Action{Type: ActionSetLoading, Loading: v} }

// Reduce applies a single action and returns the next state. It is a pure
// function; unknown action types leave the state untouched.
func Reduce(state AuthState, action Action) AuthState {
	switch action.Type {
	case ActionLoginStart, ActionRegisterStart:
		state.IsLoading = true
		state.Error = ""
		return state

	case ActionLoginSuccess, ActionRegisterSuccess:
		return AuthState{
			User:            action.User,
			IsAuthenticated: true,
			IsLoading:       false,
			Error:           "",
		}

	case ActionLoginError, ActionRegisterError:
		return AuthState{
			User:            nil,
			IsAuthenticated: false,
			IsLoading:       false,
			Error:           action.Error,
		}

	case ActionLogout:
		next := InitialState()
		next.IsLoading = false
		return next

	case ActionUpdateUser:
		state.User = action.User
		return state

	case ActionSetLoading:
		state.IsLoading = action.Loading
		return state

	default:
		return state
	}
}
