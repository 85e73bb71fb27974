package domain

// Identity - текущий вызывающий: пользователь или аноним (User == nil).
type Identity struct {
	User *User
}

// Anonymous - идентичность неавторизованного посетителя.
var Anonymous = Identity{}

// AuthenticatedAs оборачивает пользователя в Identity.
func AuthenticatedAs(u *User) Identity {
	return Identity{User: u}
}

func (i Identity) Authenticated() bool {
	return i.User != nil
}

func (i Identity) IsAdmin() bool {
	return i.User != nil && i.User.IsAdmin && i.User.ID == AdminUserID
}
