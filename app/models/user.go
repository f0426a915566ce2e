package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const UsersCollection = "users"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Roles is the full set a record may hold.
var Roles = []string{RoleUser, RoleAdmin}

// User is a customer account. The review table lists these records and
// an admin changes their role; nothing ever deletes one.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username    string             `bson:"username" json:"username"`
	Email       string             `bson:"email" json:"email"`
	Fullname    string             `bson:"fullname" json:"fullname"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	Password    string             `bson:"password" json:"-"`
	Role        string             `bson:"role" json:"role"`
	Avatar      string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
