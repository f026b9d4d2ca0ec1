package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbhishekS200607/MEDIHUB/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn, 8, 1)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	adminID, err := seedAdmin(context.Background(), pool)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if err := seedDoctors(context.Background(), pool, 25); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatientUsers(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed patient users: %v", err)
	}
	if err := seedPatientRecords(context.Background(), pool, adminID, 2000); err != nil {
		log.Fatalf("seed patient records: %v", err)
	}

	log.Println("seed complete")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool) (uuid.UUID, error) {
	id := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, phone, created_at, updated_at)
		VALUES ($1, $2, $3, 'admin', $4, now(), now())
	`, id, "admin@medihub.local", "Clinic Admin", gofakeit.Phone())
	if err != nil {
		return uuid.Nil, err
	}
	log.Printf("admin seeded id=%s", id)
	return id, nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d doctors", count)

	specializations := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, name, role, phone, specialization, created_at, updated_at)
			VALUES ($1, $2, $3, 'doctor', $4, $5, now(), now())
		`, id, gofakeit.Email(), name, gofakeit.Phone(), spec)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}

func seedPatientUsers(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patient users", count)

	const batchSize = 250

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, email, name, role, phone, created_at, updated_at)
				VALUES ($1, $2, $3, 'patient', $4, now(), now())
			`, uuid.New(), gofakeit.Email(), gofakeit.Name(), gofakeit.Phone())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		log.Printf("patient users seeded: %d/%d", end, count)
	}

	return nil
}

func seedPatientRecords(ctx context.Context, pool *pgxpool.Pool, createdBy uuid.UUID, count int) error {
	log.Printf("seeding %d patient directory records", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, phone, email, address, medical_history, created_by, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			`, uuid.New(), gofakeit.Name(), gofakeit.Phone(), gofakeit.Email(),
				gofakeit.Address().Address, gofakeit.Sentence(8), createdBy)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		log.Printf("patient records seeded: %d/%d", end, count)
	}

	return nil
}
