package dto

import "time"

type AppointmentListDTO struct {
	ID           uint      `json:"id"`
	Start        time.Time `json:"appointment_start"`
	End          time.Time `json:"appointment_end"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customer_name"`
	Guest        bool      `json:"guest"`
	ServiceName  string    `json:"service_name"`
	Price        float64   `json:"price"`
	Comment      string    `json:"comment"`
}
