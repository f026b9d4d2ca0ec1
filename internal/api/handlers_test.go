package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AbhishekS200607/MEDIHUB/internal/admin"
	"github.com/AbhishekS200607/MEDIHUB/internal/appointment"
	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/patient"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
	"github.com/AbhishekS200607/MEDIHUB/internal/user"
)

// ---- stubs ----------------------------------------------------------------

type fakeAppointments struct {
	appt  *appointment.Appointment
	queue []appointment.Appointment
	err   error
}

func (f *fakeAppointments) Book(_ context.Context, in appointment.BookInput) (*appointment.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := *f.appt
	a.UserID = in.UserID
	a.UserName = in.UserName
	a.DoctorID = in.DoctorID
	a.TimeSlot = in.TimeSlot
	return &a, nil
}

func (f *fakeAppointments) Transition(_ context.Context, _ uuid.UUID, target appointment.Status, _ appointment.CompletionNotes) (*appointment.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := *f.appt
	a.Status = target
	return &a, nil
}

func (f *fakeAppointments) Queue(_ context.Context, _ uuid.UUID, _ string) ([]appointment.Appointment, error) {
	return f.queue, f.err
}

func (f *fakeAppointments) ListForPatient(_ context.Context, _ uuid.UUID, _ int) ([]appointment.Appointment, error) {
	return f.queue, f.err
}

func (f *fakeAppointments) Get(_ context.Context, _ uuid.UUID) (*appointment.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.appt == nil {
		return nil, appointment.ErrAppointmentNotFound
	}
	return f.appt, nil
}

func (f *fakeAppointments) DoctorStats(_ context.Context, _ uuid.UUID, day string) (*appointment.DayStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &appointment.DayStats{Day: day, Total: len(f.queue)}, nil
}

type fakeTokens struct {
	current int
	err     error
}

func (f *fakeTokens) Current(_ context.Context, _ uuid.UUID, _ string) (int, error) {
	return f.current, f.err
}

type fakeUsers struct {
	users map[uuid.UUID]user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]user.User)}
}

func (f *fakeUsers) add(uid uuid.UUID, name string, role user.Role) {
	f.users[uid] = user.User{ID: uid, Name: name, Role: role, Email: name + "@example.com", Active: true}
}

func (f *fakeUsers) Register(_ context.Context, uid uuid.UUID, email string, in user.RegisterInput) (*user.User, error) {
	if in.Name == "" {
		return nil, user.ErrNameRequired
	}
	role := user.RolePatient
	if in.Role == "doctor" {
		role = user.RoleDoctor
	}
	u := user.User{ID: uid, Email: email, Name: in.Name, Role: role, Phone: in.Phone}
	f.users[uid] = u
	return &u, nil
}

func (f *fakeUsers) Profile(_ context.Context, uid uuid.UUID) (*user.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, uid uuid.UUID, name, phone string) (*user.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if phone != "" {
		u.Phone = phone
	}
	f.users[uid] = u
	return &u, nil
}

func (f *fakeUsers) ListDoctors(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.Role == user.RoleDoctor && u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, role string) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if role == "" || string(u.Role) == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) SetDoctorStatus(_ context.Context, id uuid.UUID, active bool) (*user.User, error) {
	u, ok := f.users[id]
	if !ok || u.Role != user.RoleDoctor {
		return nil, user.ErrUserNotFound
	}
	u.Active = active
	f.users[id] = u
	return &u, nil
}

func (f *fakeUsers) DeleteDoctor(_ context.Context, id uuid.UUID) error {
	u, ok := f.users[id]
	if !ok || u.Role != user.RoleDoctor {
		return user.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) RoleOf(_ context.Context, uid uuid.UUID) (string, error) {
	u, ok := f.users[uid]
	if !ok {
		return "", user.ErrUserNotFound
	}
	return string(u.Role), nil
}

type fakePatients struct{}

func (fakePatients) Create(_ context.Context, createdBy uuid.UUID, in patient.Input) (*patient.Patient, error) {
	if in.Name == "" || in.Phone == "" {
		return nil, patient.ErrMissingField
	}
	return &patient.Patient{ID: uuid.New(), Name: in.Name, Phone: in.Phone, CreatedBy: createdBy}, nil
}
func (fakePatients) Get(_ context.Context, _ uuid.UUID) (*patient.Patient, error) {
	return nil, patient.ErrPatientNotFound
}
func (fakePatients) List(_ context.Context, _, _ int) ([]patient.Patient, error) { return nil, nil }
func (fakePatients) Update(_ context.Context, _ uuid.UUID, _ patient.Input) (*patient.Patient, error) {
	return nil, patient.ErrPatientNotFound
}
func (fakePatients) Delete(_ context.Context, _ uuid.UUID) error { return patient.ErrPatientNotFound }
func (fakePatients) Search(_ context.Context, q string) ([]patient.Patient, error) {
	if q == "" {
		return nil, patient.ErrMissingField
	}
	return []patient.Patient{{ID: uuid.New(), Name: "Asha Rao", Phone: "9000000001"}}, nil
}

type fakeAdmin struct {
	code     string
	hospital *admin.HospitalConfig
}

func (f *fakeAdmin) DoctorCode(_ context.Context, _ uuid.UUID) (string, error) { return f.code, nil }
func (f *fakeAdmin) SetDoctorCode(_ context.Context, code string, _ uuid.UUID) error {
	f.code = code
	return nil
}
func (f *fakeAdmin) GenerateDoctorCode(_ context.Context, _ uuid.UUID) (string, error) {
	f.code = "GENERATED"
	return f.code, nil
}
func (f *fakeAdmin) VerifyDoctorCode(_ context.Context, code string) (bool, error) {
	return code == f.code, nil
}
func (f *fakeAdmin) HospitalConfig(_ context.Context) (*admin.HospitalConfig, error) {
	return f.hospital, nil
}
func (f *fakeAdmin) SetHospitalConfig(_ context.Context, cfg admin.HospitalConfig, _ uuid.UUID) error {
	if cfg.Name == "" || cfg.Address == "" || cfg.Phone == "" || cfg.Email == "" {
		return admin.ErrFieldRequired
	}
	f.hospital = &cfg
	return nil
}

type fakeQueues struct{}

func (fakeQueues) SubscribeQueue(_ context.Context, _ uuid.UUID, _ string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{})
	close(ch)
	return ch, func() {}, nil
}

// ---- harness --------------------------------------------------------------

type testEnv struct {
	router   http.Handler
	verifier *auth.Verifier
	users    *fakeUsers
	appts    *fakeAppointments
	admin    *fakeAdmin
}

func newTestEnv() *testEnv {
	users := newFakeUsers()
	appts := &fakeAppointments{}
	admin := &fakeAdmin{code: "MEDIHUB2024"}
	verifier := auth.NewVerifier("test-secret")

	router := NewRouter(RouterConfig{
		Appointments: appts,
		Tokens:       &fakeTokens{current: 7},
		Users:        users,
		Patients:     fakePatients{},
		Admin:        admin,
		Queues:       fakeQueues{},
		Verifier:     verifier,
		Env:          "test",
		Version:      "test",
		Log:          zerolog.Nop(),
	})

	return &testEnv{router: router, verifier: verifier, users: users, appts: appts, admin: admin}
}

func (e *testEnv) bearer(t *testing.T, uid uuid.UUID) string {
	t.Helper()
	tok, err := e.verifier.Sign(auth.Identity{UID: uid, Email: "x@example.com"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func sampleAppointment(doctorID uuid.UUID) *appointment.Appointment {
	return &appointment.Appointment{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		UserName:    "Pat",
		DoctorID:    doctorID,
		TokenNumber: 4,
		BookingDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TimeSlot:    "09:00",
		Status:      appointment.StatusWaiting,
		CreatedAt:   time.Now(),
	}
}

// ---- tests ----------------------------------------------------------------

func TestBookEndpoint(t *testing.T) {
	env := newTestEnv()
	doctorID := uuid.New()
	patientID := uuid.New()
	env.users.add(patientID, "Pat", user.RolePatient)
	env.appts.appt = sampleAppointment(doctorID)

	rec := env.do(t, http.MethodPost, "/api/appointments/book", env.bearer(t, patientID), BookAppointmentRequest{
		DoctorID: doctorID.String(),
		Time:     "09:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TokenNumber != 4 {
		t.Errorf("tokenNumber = %d, want 4", resp.TokenNumber)
	}
	if resp.UserName != "Pat" {
		t.Errorf("userName = %q, want profile name Pat", resp.UserName)
	}
}

func TestBookEndpointRequiresPatientRole(t *testing.T) {
	env := newTestEnv()
	doctorUID := uuid.New()
	env.users.add(doctorUID, "Dr", user.RoleDoctor)
	env.appts.appt = sampleAppointment(uuid.New())

	rec := env.do(t, http.MethodPost, "/api/appointments/book", env.bearer(t, doctorUID), BookAppointmentRequest{
		DoctorID: uuid.NewString(),
		Time:     "09:00",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestBookEndpointValidation(t *testing.T) {
	env := newTestEnv()
	patientID := uuid.New()
	env.users.add(patientID, "Pat", user.RolePatient)
	env.appts.err = appointment.ErrMissingField

	rec := env.do(t, http.MethodPost, "/api/appointments/book", env.bearer(t, patientID), BookAppointmentRequest{
		DoctorID: uuid.NewString(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
}

func TestBookEndpointContention(t *testing.T) {
	env := newTestEnv()
	patientID := uuid.New()
	env.users.add(patientID, "Pat", user.RolePatient)
	env.appts.err = token.ErrContention

	rec := env.do(t, http.MethodPost, "/api/appointments/book", env.bearer(t, patientID), BookAppointmentRequest{
		DoctorID: uuid.NewString(),
		Time:     "09:00",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set on contention")
	}
}

func TestCurrentTokenEndpointIsPublic(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/appointments/current-token/"+uuid.NewString(), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp CurrentTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.CurrentToken != 7 {
		t.Errorf("currentToken = %d, want 7", resp.CurrentToken)
	}
}

func TestQueueEndpointRoles(t *testing.T) {
	env := newTestEnv()
	doctorUID := uuid.New()
	patientUID := uuid.New()
	env.users.add(doctorUID, "Dr", user.RoleDoctor)
	env.users.add(patientUID, "Pat", user.RolePatient)

	path := "/api/appointments/queue/" + uuid.NewString()

	if rec := env.do(t, http.MethodGet, path, "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, path, env.bearer(t, patientUID), nil); rec.Code != http.StatusForbidden {
		t.Errorf("patient: status = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, path, env.bearer(t, doctorUID), nil); rec.Code != http.StatusOK {
		t.Errorf("doctor: status = %d, want 200: %s", rec.Code, rec.Body)
	}
}

func TestUpdateStatusEndpointInvalidTransition(t *testing.T) {
	env := newTestEnv()
	doctorUID := uuid.New()
	env.users.add(doctorUID, "Dr", user.RoleDoctor)
	env.appts.err = appointment.ErrInvalidTransition

	rec := env.do(t, http.MethodPatch, "/api/appointments/"+uuid.NewString()+"/status",
		env.bearer(t, doctorUID), UpdateStatusRequest{Status: "completed"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body)
	}
}

func TestGetAppointmentAccessControl(t *testing.T) {
	env := newTestEnv()
	doctorID := uuid.New()
	appt := sampleAppointment(doctorID)
	env.appts.appt = appt

	owner := appt.UserID
	stranger := uuid.New()
	env.users.add(owner, "Pat", user.RolePatient)
	env.users.add(stranger, "Other", user.RolePatient)
	env.users.add(doctorID, "Dr", user.RoleDoctor)

	path := "/api/appointments/" + appt.ID.String()

	if rec := env.do(t, http.MethodGet, path, env.bearer(t, owner), nil); rec.Code != http.StatusOK {
		t.Errorf("owner: status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if rec := env.do(t, http.MethodGet, path, env.bearer(t, doctorID), nil); rec.Code != http.StatusOK {
		t.Errorf("treating doctor: status = %d, want 200", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, path, env.bearer(t, stranger), nil); rec.Code != http.StatusForbidden {
		t.Errorf("stranger: status = %d, want 403", rec.Code)
	}
}

func TestRegisterDoctorNeedsCode(t *testing.T) {
	env := newTestEnv()
	uid := uuid.New()

	rec := env.do(t, http.MethodPost, "/api/auth/register", env.bearer(t, uid), RegisterRequest{
		Name: "Dr. Who", Role: "doctor", DoctorCode: "wrong",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong code: status = %d, want 403: %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/register", env.bearer(t, uid), RegisterRequest{
		Name: "Dr. Who", Role: "doctor", DoctorCode: "MEDIHUB2024",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("valid code: status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Role != "doctor" {
		t.Errorf("role = %q, want doctor", resp.Role)
	}
}

func TestVerifyDoctorCodeIsPublic(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/api/admin/doctor-code/verify", "", DoctorCodeRequest{Code: "MEDIHUB2024"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp["valid"] {
		t.Error("valid = false, want true")
	}
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	env := newTestEnv()
	doctorUID := uuid.New()
	adminUID := uuid.New()
	env.users.add(doctorUID, "Dr", user.RoleDoctor)
	env.users.add(adminUID, "Root", user.RoleAdmin)

	if rec := env.do(t, http.MethodGet, "/api/admin/doctor-code", env.bearer(t, doctorUID), nil); rec.Code != http.StatusForbidden {
		t.Errorf("doctor: status = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/admin/doctor-code", env.bearer(t, adminUID), nil); rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

func TestListUsersEndpoint(t *testing.T) {
	env := newTestEnv()
	adminUID := uuid.New()
	env.users.add(adminUID, "Root", user.RoleAdmin)
	env.users.add(uuid.New(), "Dr", user.RoleDoctor)
	env.users.add(uuid.New(), "Pat", user.RolePatient)

	rec := env.do(t, http.MethodGet, "/api/admin/users?role=doctor", env.bearer(t, adminUID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Users []UserResponse `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Users) != 1 || resp.Users[0].Role != "doctor" {
		t.Errorf("users = %+v, want exactly the doctor", resp.Users)
	}
}

func TestDoctorStatusEndpoint(t *testing.T) {
	env := newTestEnv()
	adminUID := uuid.New()
	doctorUID := uuid.New()
	env.users.add(adminUID, "Root", user.RoleAdmin)
	env.users.add(doctorUID, "Dr", user.RoleDoctor)

	restrict := false
	rec := env.do(t, http.MethodPut, "/api/admin/doctors/"+doctorUID.String()+"/status",
		env.bearer(t, adminUID), DoctorStatusRequest{Active: &restrict})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Active {
		t.Error("active = true after restriction, want false")
	}

	// Restricted doctors drop out of the public directory.
	rec = env.do(t, http.MethodGet, "/api/doctors", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("doctors: status = %d", rec.Code)
	}
	var dirResp struct {
		Doctors []UserResponse `json:"doctors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dirResp); err != nil {
		t.Fatal(err)
	}
	if len(dirResp.Doctors) != 0 {
		t.Errorf("directory lists %d doctors, want 0", len(dirResp.Doctors))
	}

	rec = env.do(t, http.MethodPut, "/api/admin/doctors/"+doctorUID.String()+"/status",
		env.bearer(t, adminUID), DoctorStatusRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing active: status = %d, want 400", rec.Code)
	}
}

func TestDeleteDoctorEndpoint(t *testing.T) {
	env := newTestEnv()
	adminUID := uuid.New()
	doctorUID := uuid.New()
	env.users.add(adminUID, "Root", user.RoleAdmin)
	env.users.add(doctorUID, "Dr", user.RoleDoctor)

	rec := env.do(t, http.MethodDelete, "/api/admin/doctors/"+doctorUID.String(), env.bearer(t, adminUID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodDelete, "/api/admin/doctors/"+doctorUID.String(), env.bearer(t, adminUID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/admin/doctors/"+adminUID.String(), env.bearer(t, adminUID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting a non-doctor: status = %d, want 404", rec.Code)
	}
}

func TestHospitalConfigEndpoint(t *testing.T) {
	env := newTestEnv()
	adminUID := uuid.New()
	env.users.add(adminUID, "Root", user.RoleAdmin)

	rec := env.do(t, http.MethodGet, "/api/admin/hospital-config", env.bearer(t, adminUID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var unset struct {
		Config *HospitalConfigPayload `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &unset); err != nil {
		t.Fatal(err)
	}
	if unset.Config != nil {
		t.Errorf("config = %+v before any write, want null", unset.Config)
	}

	payload := HospitalConfigPayload{Name: "City General", Address: "1 Health Way", Phone: "0400123456", Email: "desk@citygeneral.example"}
	rec = env.do(t, http.MethodPut, "/api/admin/hospital-config", env.bearer(t, adminUID), payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: status = %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodPut, "/api/admin/hospital-config", env.bearer(t, adminUID),
		HospitalConfigPayload{Name: "City General"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("partial config: status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/hospital-config", env.bearer(t, adminUID), nil)
	var set struct {
		Config *HospitalConfigPayload `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatal(err)
	}
	if set.Config == nil || *set.Config != payload {
		t.Errorf("config = %+v, want %+v", set.Config, payload)
	}
}

func TestSearchPatientsEndpoint(t *testing.T) {
	env := newTestEnv()
	doctorUID := uuid.New()
	patientUID := uuid.New()
	env.users.add(doctorUID, "Dr", user.RoleDoctor)
	env.users.add(patientUID, "Pat", user.RolePatient)

	rec := env.do(t, http.MethodGet, "/api/patients/search?q=as", env.bearer(t, doctorUID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Patients []PatientResponse `json:"patients"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Patients) != 1 {
		t.Errorf("patients = %+v, want one match", resp.Patients)
	}

	if rec := env.do(t, http.MethodGet, "/api/patients/search", env.bearer(t, doctorUID), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/patients/search?q=as", env.bearer(t, patientUID), nil); rec.Code != http.StatusForbidden {
		t.Errorf("patient role: status = %d, want 403", rec.Code)
	}
}

func TestDoctorManagementRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	doctorUID := uuid.New()
	env.users.add(doctorUID, "Dr", user.RoleDoctor)

	active := true
	if rec := env.do(t, http.MethodGet, "/api/admin/users", env.bearer(t, doctorUID), nil); rec.Code != http.StatusForbidden {
		t.Errorf("users: status = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, "/api/admin/doctors/"+doctorUID.String()+"/status",
		env.bearer(t, doctorUID), DoctorStatusRequest{Active: &active}); rec.Code != http.StatusForbidden {
		t.Errorf("status: status = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/admin/doctors/"+doctorUID.String(), env.bearer(t, doctorUID), nil); rec.Code != http.StatusForbidden {
		t.Errorf("delete: status = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/admin/hospital-config", env.bearer(t, doctorUID), nil); rec.Code != http.StatusForbidden {
		t.Errorf("config: status = %d, want 403", rec.Code)
	}
}

func TestQueueSortedInResponse(t *testing.T) {
	env := newTestEnv()
	doctorUID := uuid.New()
	env.users.add(doctorUID, "Dr", user.RoleDoctor)

	doctorID := uuid.New()
	for i := 1; i <= 3; i++ {
		a := sampleAppointment(doctorID)
		a.TokenNumber = i
		env.appts.queue = append(env.appts.queue, *a)
	}

	rec := env.do(t, http.MethodGet, "/api/appointments/queue/"+doctorID.String(), env.bearer(t, doctorUID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Queue []AppointmentResponse `json:"queue"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Queue) != 3 {
		t.Fatalf("queue length = %d, want 3", len(resp.Queue))
	}
	for i, a := range resp.Queue {
		if a.TokenNumber != i+1 {
			t.Errorf("queue[%d].tokenNumber = %d, want %d", i, a.TokenNumber, i+1)
		}
	}
}
