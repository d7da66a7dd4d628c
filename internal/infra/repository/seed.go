package repository

import "github.com/BruksfildServices01/salon-scheduler/internal/models"

// Demo holds the IDs created by SeedDemo.
type Demo struct {
	Salon    models.Salon
	Provider models.Provider
	Services []models.Service
	User     models.User
}

// SeedDemo fills store with one salon, one provider open 9-20 and a few services.
func SeedDemo(store *MemoryStore) Demo {
	salon := store.AddSalon(models.Salon{
		Name:    "Studio Aurora",
		Slug:    "studio-aurora",
		Phone:   "+55 11 4000-1000",
		Address: "Rua Augusta, 1500",
	})

	provider := store.AddProvider(models.Provider{
		SalonID: salon.ID,
		Name:    "Marina",
		Email:   "marina@studio-aurora.test",
		Active:  true,
	})

	store.AddWorkingHours(models.WorkingHours{
		SalonID:     salon.ID,
		OpeningHour: 9,
		ClosingHour: 20,
	})

	services := []models.Service{
		store.AddService(models.Service{ProviderID: provider.ID, Name: "Corte", DurationMinutes: 30, Price: 80, Status: models.ServiceAvailable}),
		store.AddService(models.Service{ProviderID: provider.ID, Name: "Coloração", DurationMinutes: 90, Price: 250, Status: models.ServiceAvailable}),
		store.AddService(models.Service{ProviderID: provider.ID, Name: "Escova", DurationMinutes: 45, Price: 60, Status: models.ServiceUnavailable}),
	}

	user := store.AddUser(models.User{
		Name:  "Carla Souza",
		Email: "carla@example.com",
		Phone: "+55 11 98888-0000",
	})

	return Demo{Salon: salon, Provider: provider, Services: services, User: user}
}
