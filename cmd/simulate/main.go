package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/config"
	"github.com/AbhishekS200607/MEDIHUB/internal/db"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	ReadRatio    float64
	PatientLimit int
	DoctorLimit  int
	PostgresDSN  string
	JWTSecret    string
}

type actor struct {
	ID     uuid.UUID
	Bearer string
}

// DataPool holds the seeded identities the workers pick from, plus the
// appointments created during the run.
type DataPool struct {
	Patients []actor
	Doctors  []actor

	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total      int64
	Success    int64
	Contention int64
	Error      int64
	Latencies  []time.Duration
	mu         sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success, contention bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if contention {
		atomic.AddInt64(&om.Contention, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Booking      OperationMetrics
	CurrentToken OperationMetrics
	Queue        OperationMetrics
	MyList       OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d booking=%.2f read=%.2f",
		cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.ReadRatio)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, 4, 1)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	verifier := auth.NewVerifier(cfg.JWTSecret)
	dataPool, err := loadDataPool(ctx, pgPool, verifier, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	log.Printf("loaded: %d patients, %d doctors", len(dataPool.Patients), len(dataPool.Doctors))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run()
	sim.PrintReport()

	// The whole point of the run: prove the per-doctor-day token sequence
	// survived the load without duplicates or gaps.
	checkCtx, cancelCheck := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelCheck()
	if err := checkTokenInvariants(checkCtx, pgPool); err != nil {
		log.Fatalf("TOKEN INVARIANT VIOLATED: %v", err)
	}
	log.Println("token invariants hold: gap-free, duplicate-free, counter matches")
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.6),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.4),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 500),
		DoctorLimit:  getInt("SIM_DOCTOR_LIMIT", 10),
		PostgresDSN:  baseCfg.PostgresDSN,
		JWTSecret:    baseCfg.JWTSecret,
	}

	total := cfg.BookingRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, verifier *auth.Verifier, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	load := func(role string, limit int) ([]actor, error) {
		rows, err := pool.Query(ctx, `
			SELECT id, email FROM users WHERE role = $1 LIMIT $2
		`, role, limit)
		if err != nil {
			return nil, fmt.Errorf("load %ss: %w", role, err)
		}
		defer rows.Close()

		var actors []actor
		for rows.Next() {
			var id uuid.UUID
			var email string
			if err := rows.Scan(&id, &email); err != nil {
				return nil, err
			}
			bearer, err := verifier.Sign(auth.Identity{UID: id, Email: email}, 2*time.Hour)
			if err != nil {
				return nil, fmt.Errorf("sign token for %s: %w", id, err)
			}
			actors = append(actors, actor{ID: id, Bearer: "Bearer " + bearer})
		}
		return actors, rows.Err()
	}

	var err error
	if dataPool.Patients, err = load("patient", cfg.PatientLimit); err != nil {
		return nil, err
	}
	if dataPool.Doctors, err = load("doctor", cfg.DoctorLimit); err != nil {
		return nil, err
	}

	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run the seed first")
	}
	if len(dataPool.Doctors) == 0 {
		return nil, fmt.Errorf("no doctors loaded, run the seed first")
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			if r < s.config.BookingRatio {
				s.doBooking(ctx, rng)
			} else {
				switch rng.Intn(3) {
				case 0:
					s.doCurrentToken(ctx, rng)
				case 1:
					s.doQueue(ctx, rng)
				case 2:
					s.doMyAppointments(ctx, rng)
				}
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	doctor := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]

	start := time.Now()

	reqBody := map[string]string{
		"doctorId": doctor.ID.String(),
		"time":     fmt.Sprintf("%02d:%02d", 9+rng.Intn(8), 15*rng.Intn(4)),
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+"/api/appointments/book", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", patient.Bearer)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	contention := false

	if err == nil {
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			success = true
			var apptResp struct {
				ID uuid.UUID `json:"id"`
			}
			bodyBytes, _ := io.ReadAll(resp.Body)
			if json.Unmarshal(bodyBytes, &apptResp) == nil && apptResp.ID != uuid.Nil {
				s.pool.AddAppointment(apptResp.ID)
			}
		case http.StatusServiceUnavailable:
			contention = true
		}
	}

	s.metrics.Booking.Record(latency, success, contention)
}

func (s *Simulator) doCurrentToken(ctx context.Context, rng *rand.Rand) {
	doctor := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/appointments/current-token/%s", s.config.APIBaseURL, doctor.ID), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.CurrentToken.Record(latency, success, false)
}

func (s *Simulator) doQueue(ctx context.Context, rng *rand.Rand) {
	doctor := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/appointments/queue/%s", s.config.APIBaseURL, doctor.ID), nil)
	req.Header.Set("Authorization", doctor.Bearer)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Queue.Record(latency, success, false)
}

func (s *Simulator) doMyAppointments(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		s.config.APIBaseURL+"/api/appointments/my-appointments?limit=20", nil)
	req.Header.Set("Authorization", patient.Bearer)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.MyList.Record(latency, success, false)
}

// checkTokenInvariants verifies, straight from Postgres, that for every
// (doctor, day) pair the appointments hold tokens 1..N exactly once and the
// counter agrees with N.
func checkTokenInvariants(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx, `
		SELECT a.doctor_id, a.booking_date,
		       COUNT(*), COUNT(DISTINCT a.token_number),
		       MIN(a.token_number), MAX(a.token_number),
		       tc.current
		FROM appointments a
		JOIN token_counters tc
		  ON tc.doctor_id = a.doctor_id AND tc.day = a.booking_date
		GROUP BY a.doctor_id, a.booking_date, tc.current
	`)
	if err != nil {
		return fmt.Errorf("invariant query: %w", err)
	}
	defer rows.Close()

	var checked int
	for rows.Next() {
		var doctorID uuid.UUID
		var day time.Time
		var total, distinct, minTok, maxTok, current int

		if err := rows.Scan(&doctorID, &day, &total, &distinct, &minTok, &maxTok, &current); err != nil {
			return err
		}

		key := fmt.Sprintf("doctor=%s day=%s", doctorID, day.Format(token.DayFormat))
		if distinct != total {
			return fmt.Errorf("%s: duplicate tokens (%d rows, %d distinct)", key, total, distinct)
		}
		if minTok != 1 || maxTok != total {
			return fmt.Errorf("%s: gap in sequence (min=%d max=%d count=%d)", key, minTok, maxTok, total)
		}
		if current != maxTok {
			return fmt.Errorf("%s: counter=%d but max token=%d", key, current, maxTok)
		}
		checked++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	log.Printf("checked %d doctor-day sequences", checked)
	return nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n================================================================================")
	fmt.Println("SIMULATION REPORT")
	fmt.Println("================================================================================")
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Current Token", &s.metrics.CurrentToken)
	printOperationReport("Queue", &s.metrics.Queue)
	printOperationReport("My Appointments", &s.metrics.MyList)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	contention := atomic.LoadInt64(&om.Contention)
	errs := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if contention > 0 {
		fmt.Printf("  Contention: %d (%.1f%%)\n", contention, float64(contention)/float64(total)*100)
	}
	if errs > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errs, float64(errs)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
