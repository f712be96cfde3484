// The seed binary fills a development database with fake doctors and
// appointments so the API has data to serve locally.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/mamacare/appointment-api/internal/config"
	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/internal/repository/postgres"
	"github.com/mamacare/appointment-api/pkg/logger"
)

var specialties = []string{
	"Obstetrics", "Gynecology", "Maternal-Fetal Medicine",
	"Midwifery", "General Practice",
}

func main() {
	doctors := flag.Int("doctors", 10, "number of doctors to create")
	appointments := flag.Int("appointments", 40, "number of appointments to create")
	flag.Parse()

	_ = godotenv.Load()

	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	appointmentRepo := postgres.NewAppointmentRepository(db)

	doctorIDs := make([]uuid.UUID, 0, *doctors)
	doctorNames := make(map[uuid.UUID]string, *doctors)
	for i := 0; i < *doctors; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]
		_, err := db.ExecContext(ctx, `
			INSERT INTO doctors (id, name, specialty, email, available)
			VALUES ($1, $2, $3, $4, TRUE)`,
			id, name, specialty, gofakeit.Email())
		if err != nil {
			log.Fatal(err, "failed to insert doctor")
		}
		doctorIDs = append(doctorIDs, id)
		doctorNames[id] = name
	}
	log.Info("seeded doctors", "count", *doctors)

	statuses := []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusScheduled,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
	}

	for i := 0; i < *appointments; i++ {
		doctorID := doctorIDs[gofakeit.Number(0, len(doctorIDs)-1)]
		apt := &model.Appointment{
			ID:          uuid.New(),
			PatientID:   uuid.New(),
			DoctorID:    doctorID,
			PatientName: gofakeit.Name(),
			DoctorName:  doctorNames[doctorID],
			DateTime:    time.Now().Add(time.Duration(gofakeit.Number(1, 30*24)) * time.Hour),
			Reason:      gofakeit.Sentence(8),
			Status:      statuses[gofakeit.Number(0, len(statuses)-1)],
		}
		if err := appointmentRepo.Create(ctx, apt); err != nil {
			log.Fatal(err, "failed to insert appointment")
		}
	}
	log.Info("seeded appointments", "count", *appointments)
}
