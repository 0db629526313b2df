package models

// User is an admin dashboard account.
type User struct {
	ID           string `json:"id" bson:"_id"`
	Email        string `json:"email" bson:"email"`
	Name         string `json:"name" bson:"name"`
	Role         string `json:"role" bson:"role"`
	PasswordHash string `json:"password_hash" bson:"passwordHash"`
	Timestamps   `bson:",inline"`
}

func (u User) DocID() string { return u.ID }

// PublicUser is the API representation of a User, without credentials.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
