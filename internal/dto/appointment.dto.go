package dto

import "github.com/BruksfildServices01/salon-scheduler/internal/models"

// AppointmentCreatedDTO is returned once, to whoever booked. The manage token
// is the only way a customer can cancel later.
type AppointmentCreatedDTO struct {
	models.Appointment
	ManageToken string `json:"manage_token"`
}

type StatusChangeDTO struct {
	Appointment *models.Appointment `json:"appointment"`
	Changed     bool                `json:"changed"`
}
