package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AbhishekS200607/MEDIHUB/internal/admin"
	"github.com/AbhishekS200607/MEDIHUB/internal/appointment"
	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/patient"
	redisclient "github.com/AbhishekS200607/MEDIHUB/internal/redis"
	"github.com/AbhishekS200607/MEDIHUB/internal/user"
)

// Service interfaces consumed by the handlers; satisfied by the concrete
// services and by stubs in tests.

type AppointmentService interface {
	Book(ctx context.Context, in appointment.BookInput) (*appointment.Appointment, error)
	Transition(ctx context.Context, id uuid.UUID, target appointment.Status, notes appointment.CompletionNotes) (*appointment.Appointment, error)
	Queue(ctx context.Context, doctorID uuid.UUID, day string) ([]appointment.Appointment, error)
	ListForPatient(ctx context.Context, userID uuid.UUID, limit int) ([]appointment.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	DoctorStats(ctx context.Context, doctorID uuid.UUID, day string) (*appointment.DayStats, error)
}

type TokenReader interface {
	Current(ctx context.Context, doctorID uuid.UUID, day string) (int, error)
}

type UserService interface {
	Register(ctx context.Context, uid uuid.UUID, email string, in user.RegisterInput) (*user.User, error)
	Profile(ctx context.Context, uid uuid.UUID) (*user.User, error)
	UpdateProfile(ctx context.Context, uid uuid.UUID, name, phone string) (*user.User, error)
	ListDoctors(ctx context.Context) ([]user.User, error)
	ListUsers(ctx context.Context, role string) ([]user.User, error)
	SetDoctorStatus(ctx context.Context, id uuid.UUID, active bool) (*user.User, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	RoleOf(ctx context.Context, uid uuid.UUID) (string, error)
}

type PatientService interface {
	Create(ctx context.Context, createdBy uuid.UUID, in patient.Input) (*patient.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	List(ctx context.Context, limit, offset int) ([]patient.Patient, error)
	Search(ctx context.Context, q string) ([]patient.Patient, error)
	Update(ctx context.Context, id uuid.UUID, in patient.Input) (*patient.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AdminService interface {
	DoctorCode(ctx context.Context, callerID uuid.UUID) (string, error)
	SetDoctorCode(ctx context.Context, code string, callerID uuid.UUID) error
	GenerateDoctorCode(ctx context.Context, callerID uuid.UUID) (string, error)
	VerifyDoctorCode(ctx context.Context, code string) (bool, error)
	HospitalConfig(ctx context.Context) (*admin.HospitalConfig, error)
	SetHospitalConfig(ctx context.Context, cfg admin.HospitalConfig, callerID uuid.UUID) error
}

type RouterConfig struct {
	Appointments AppointmentService
	Tokens       TokenReader
	Users        UserService
	Patients     PatientService
	Admin        AdminService
	Queues       redisclient.Subscriber
	Verifier     *auth.Verifier
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
	Log          zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public endpoints: the waiting-room display and the registration page
	// need these before any login.
	r.Get("/api/appointments/current-token/{doctorID}", currentTokenHandler(cfg.Tokens))
	r.Get("/api/doctors", listDoctorsHandler(cfg.Users))
	r.Post("/api/admin/doctor-code/verify", verifyDoctorCodeHandler(cfg.Admin))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Authenticate(cfg.Verifier))

		pr.Post("/api/auth/register", registerHandler(cfg.Users, cfg.Admin))
		pr.Get("/api/auth/profile", profileHandler(cfg.Users))
		pr.Put("/api/auth/profile", updateProfileHandler(cfg.Users))

		pr.Get("/api/appointments/my-appointments", myAppointmentsHandler(cfg.Appointments))
		pr.Get("/api/appointments/{id}", getAppointmentHandler(cfg.Appointments, cfg.Users))
		pr.Get("/api/doctors/{id}/schedule", doctorScheduleHandler(cfg.Appointments))

		pr.Group(func(patients chi.Router) {
			patients.Use(auth.RequireRole(cfg.Users, "patient"))
			patients.Post("/api/appointments/book", bookAppointmentHandler(cfg.Appointments, cfg.Users))
		})

		pr.Group(func(staff chi.Router) {
			staff.Use(auth.RequireRole(cfg.Users, "doctor", "admin"))
			staff.Get("/api/appointments/queue/{doctorID}", queueHandler(cfg.Appointments))
			staff.Get("/api/appointments/queue/{doctorID}/events", queueEventsHandler(cfg.Appointments, cfg.Queues))
			staff.Patch("/api/appointments/{id}/status", updateStatusHandler(cfg.Appointments))
			staff.Get("/api/doctors/{id}/stats", doctorStatsHandler(cfg.Appointments))

			staff.Post("/api/patients", createPatientHandler(cfg.Patients))
			staff.Get("/api/patients", listPatientsHandler(cfg.Patients))
			staff.Get("/api/patients/search", searchPatientsHandler(cfg.Patients))
			staff.Get("/api/patients/{id}", getPatientHandler(cfg.Patients))
			staff.Put("/api/patients/{id}", updatePatientHandler(cfg.Patients))
			staff.Delete("/api/patients/{id}", deletePatientHandler(cfg.Patients))
		})

		pr.Group(func(admins chi.Router) {
			admins.Use(auth.RequireRole(cfg.Users, "admin"))
			admins.Get("/api/admin/doctor-code", doctorCodeHandler(cfg.Admin))
			admins.Put("/api/admin/doctor-code", setDoctorCodeHandler(cfg.Admin))
			admins.Post("/api/admin/doctor-code/generate", generateDoctorCodeHandler(cfg.Admin))

			admins.Get("/api/admin/users", listUsersHandler(cfg.Users))
			admins.Put("/api/admin/doctors/{id}/status", setDoctorStatusHandler(cfg.Users))
			admins.Delete("/api/admin/doctors/{id}", deleteDoctorHandler(cfg.Users))
			admins.Get("/api/admin/hospital-config", hospitalConfigHandler(cfg.Admin))
			admins.Put("/api/admin/hospital-config", setHospitalConfigHandler(cfg.Admin))
		})
	})

	return r
}
