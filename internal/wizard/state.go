package wizard

import (
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// State is one step of the booking flow. The concrete types below are the
// only implementations.
type State interface {
	Step() string
	isState()
}

// Draft is what the customer has chosen so far.
type Draft struct {
	Salon    models.Salon
	Provider models.Provider
	Service  models.Service
	Customer Customer
	Comment  string

	// the lists earlier choices came from; Back restores them
	providers []models.Provider
	services  []models.Service
}

// Customer is either a registered user (UserID) or a guest.
type Customer struct {
	UserID uint
	Name   string
	Email  string
	Phone  string
}

type SalonInfo struct {
	Salon models.Salon
}

type SelectProvider struct {
	Salon     models.Salon
	Providers []models.Provider
}

type SelectService struct {
	Draft    Draft
	Services []models.Service
}

// SelectDateTime holds the chosen date and the slots fetched for it.
// Time is set only while returning from Confirm.
type SelectDateTime struct {
	Draft Draft
	Date  string
	Slots []string
	Time  string
}

// Confirm is only reachable from SelectDateTime with a time taken from the
// freshest slot list.
type Confirm struct {
	Draft Draft
	Date  string
	Time  string
	// slots is the list Time came from, kept for Back.
	slots []string
	key   string
}

// IdempotencyKey is sent with every submit of this confirmation.
func (c Confirm) IdempotencyKey() string { return c.key }

type Success struct {
	Salon   models.Salon
	Booking dto.AppointmentCreatedDTO
}

type Aborted struct{}

func (SalonInfo) Step() string      { return "salon_info" }
func (SelectProvider) Step() string { return "select_provider" }
func (SelectService) Step() string  { return "select_service" }
func (SelectDateTime) Step() string { return "select_date_time" }
func (Confirm) Step() string        { return "confirm" }
func (Success) Step() string        { return "success" }
func (Aborted) Step() string        { return "aborted" }

func (SalonInfo) isState()      {}
func (SelectProvider) isState() {}
func (SelectService) isState()  {}
func (SelectDateTime) isState() {}
func (Confirm) isState()        {}
func (Success) isState()        {}
func (Aborted) isState()        {}

func terminal(s State) bool {
	switch s.(type) {
	case Success, Aborted:
		return true
	}
	return false
}
