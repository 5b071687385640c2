package user

// UserView is the transport shape for user listings; it never carries the
// password hash.
type UserView struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Role     int     `json:"role"`
	RoleName string  `json:"role_name"`
	Score    float64 `json:"score"`
}

func ToView(u *User) UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Role:     int(u.Role),
		RoleName: u.Role.String(),
		Score:    u.Score,
	}
}

func ToViewSlice(users []*User) []UserView {
	views := make([]UserView, len(users))
	for i, u := range users {
		views[i] = ToView(u)
	}
	return views
}
