package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SalonID uint `gorm:"index" json:"salon_id"`

	ProviderID uint      `gorm:"index:idx_appointments_provider_start,priority:1;not null" json:"provider_id"`
	Provider   *Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"provider,omitempty"`

	ServiceID uint     `gorm:"index;not null" json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service,omitempty"`

	// exactly one of UserID / ClientID is set
	UserID   *uint   `json:"user_id"`
	User     *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`
	ClientID *uint   `json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client,omitempty"`

	AppointmentStart time.Time `gorm:"index:idx_appointments_provider_start,priority:2;not null" json:"appointment_start"`
	AppointmentEnd   time.Time `gorm:"not null" json:"appointment_end"`

	Price   float64 `gorm:"not null" json:"price"`
	Comment string  `gorm:"size:255" json:"comment"`
	Status  string  `gorm:"size:20;not null;index" json:"status"`

	ManageToken string `gorm:"size:64;index" json:"-"`

	CanceledAt  *time.Time `json:"canceled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	NoShowAt    *time.Time `json:"no_show_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerName returns the display name of whoever booked, guest or registered.
func (a *Appointment) CustomerName() string {
	switch {
	case a.User != nil:
		return a.User.Name
	case a.Client != nil:
		return a.Client.Name
	}
	return ""
}
