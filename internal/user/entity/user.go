package entity

import "time"

// User is the persisted account record. Password hashes never leave
// the service layer.
type User struct {
	ID              int64      `db:"id" json:"-"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	DebatesAttended int        `db:"debates_attended" json:"debates_attended"`
	ProfilePicture  string     `db:"profile_picture" json:"profile_picture"`
	CreatedAt       *time.Time `db:"created_at" json:"created_at,omitempty"`
	LastLogin       *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// Summary is the projection returned to clients on signup/login/profile.
type Summary struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	DebatesAttended int    `json:"debates_attended"`
	ProfilePicture  string `json:"profile_picture"`
}

// Summary builds the client-facing view of a user.
func (u *User) Summary() Summary {
	return Summary{
		Name:            u.Name,
		Email:           u.Email,
		DebatesAttended: u.DebatesAttended,
		ProfilePicture:  u.ProfilePicture,
	}
}
