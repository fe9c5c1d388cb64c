// Package domain defines the persisted hbnb entities, the class registry used
// to construct them by name, and the persistence contract every backend
// implements.
package domain

import (
	"time"
)

// Class names a concrete entity type. The value doubles as the prefix of a
// Store Key and as the `__class__` attribute of a serialized record.
type Class string

// Supported classes, in the order they are listed by help and registered by
// DefaultRegistry.
const (
	// ClassBaseModel carries only free-form attributes.
	ClassBaseModel Class = "BaseModel"
	ClassUser      Class = "User"
	ClassState     Class = "State"
	ClassCity      Class = "City"
	ClassAmenity   Class = "Amenity"
	ClassPlace     Class = "Place"
	ClassReview    Class = "Review"
)

// Base contains the fields common to every record. Extra holds attributes
// that are not part of the class's fixed field list.
type Base struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Extra     map[string]any
}

// Record exposes the common fields of any Model.
func (b *Base) Record() *Base { return b }

// Model is implemented by every entity pointer type in this package.
type Model interface {
	Class() Class
	Record() *Base
	fields() []field
}

// BaseModel is the untyped entity: everything it stores lives in Extra.
type BaseModel struct {
	Base
}

// User is an account that can own places and write reviews.
type User struct {
	Base
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// State groups cities.
type State struct {
	Base
	Name string
}

// City belongs to a State.
type City struct {
	Base
	StateID string
	Name    string
}

// Amenity is a feature a Place may offer.
type Amenity struct {
	Base
	Name string
}

// Place is a rentable listing owned by a User within a City.
type Place struct {
	Base
	CityID          string
	UserID          string
	Name            string
	Description     string
	NumberRooms     int
	NumberBathrooms int
	MaxGuest        int
	PriceByNight    int
	Latitude        float64
	Longitude       float64
	AmenityIDs      []string
}

// Review is a User's text about a Place.
type Review struct {
	Base
	PlaceID string
	UserID  string
	Text    string
}

func (*BaseModel) Class() Class { return ClassBaseModel }
func (*User) Class() Class      { return ClassUser }
func (*State) Class() Class     { return ClassState }
func (*City) Class() Class      { return ClassCity }
func (*Amenity) Class() Class   { return ClassAmenity }
func (*Place) Class() Class     { return ClassPlace }
func (*Review) Class() Class    { return ClassReview }

func (*BaseModel) fields() []field { return nil }

func (u *User) fields() []field {
	return []field{
		{name: "email", ptr: &u.Email},
		{name: "password", ptr: &u.Password},
		{name: "first_name", ptr: &u.FirstName},
		{name: "last_name", ptr: &u.LastName},
	}
}

func (s *State) fields() []field {
	return []field{{name: "name", ptr: &s.Name}}
}

func (c *City) fields() []field {
	return []field{
		{name: "state_id", ptr: &c.StateID},
		{name: "name", ptr: &c.Name},
	}
}

func (a *Amenity) fields() []field {
	return []field{{name: "name", ptr: &a.Name}}
}

func (p *Place) fields() []field {
	return []field{
		{name: "city_id", ptr: &p.CityID},
		{name: "user_id", ptr: &p.UserID},
		{name: "name", ptr: &p.Name},
		{name: "description", ptr: &p.Description},
		{name: "number_rooms", ptr: &p.NumberRooms},
		{name: "number_bathrooms", ptr: &p.NumberBathrooms},
		{name: "max_guest", ptr: &p.MaxGuest},
		{name: "price_by_night", ptr: &p.PriceByNight},
		{name: "latitude", ptr: &p.Latitude},
		{name: "longitude", ptr: &p.Longitude},
		{name: "amenity_ids", ptr: &p.AmenityIDs},
	}
}

func (r *Review) fields() []field {
	return []field{
		{name: "place_id", ptr: &r.PlaceID},
		{name: "user_id", ptr: &r.UserID},
		{name: "text", ptr: &r.Text},
	}
}

// Key returns the Store Key of m: "<Class>.<id>".
func Key(m Model) string {
	return KeyFor(m.Class(), m.Record().ID)
}

// KeyFor builds a Store Key from its parts.
func KeyFor(class Class, id string) string {
	return string(class) + "." + id
}
