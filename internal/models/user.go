package models

import "time"

type UserType string

const (
	UserTypeElderly   UserType = "elderly"
	UserTypeVolunteer UserType = "volunteer"
)

type User struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	UserType      UserType  `bson:"userType" json:"userType"`
	FirstName     string    `bson:"firstName" json:"firstName"`
	LastName      string    `bson:"lastName" json:"lastName"`
	PhoneNumber   string    `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Ratings       []float64 `bson:"ratings" json:"ratings"`
	AverageRating float64   `bson:"averageRating" json:"averageRating"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
