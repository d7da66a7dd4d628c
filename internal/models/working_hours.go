package models

import "time"

// WorkingHours is one opening window. A nil ProviderID is the salon default,
// a nil Weekday applies to every day of the week.
type WorkingHours struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	SalonID    uint  `gorm:"index;not null" json:"salon_id"`
	ProviderID *uint `gorm:"index" json:"provider_id"`
	Weekday    *int  `json:"weekday"`

	OpeningHour int `gorm:"not null" json:"opening_hour"`
	ClosingHour int `gorm:"not null" json:"closing_hour"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
