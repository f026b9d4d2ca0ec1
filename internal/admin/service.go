package admin

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// doctorCodeKey is the clinic_config key holding the code doctors must
// present when registering an account.
const doctorCodeKey = "doctor_registration_code"

const minCodeLength = 6

var (
	ErrConfigNotFound = errors.New("config entry not found")
	ErrCodeTooShort   = fmt.Errorf("registration code must be at least %d characters", minCodeLength)
	ErrFieldRequired  = errors.New("required config field missing")
)

// clinic_config keys for the hospital profile shown on public pages.
const (
	hospitalNameKey    = "hospital_name"
	hospitalAddressKey = "hospital_address"
	hospitalPhoneKey   = "hospital_phone"
	hospitalEmailKey   = "hospital_email"
)

// HospitalConfig is the clinic's public profile, managed by admins.
type HospitalConfig struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, updatedBy uuid.UUID) error
}

type Service struct {
	repo        Repository
	defaultCode string
	log         zerolog.Logger
}

func NewService(repo Repository, defaultCode string, log zerolog.Logger) *Service {
	return &Service{repo: repo, defaultCode: defaultCode, log: log}
}

// DoctorCode returns the current registration code, initializing the config
// entry with the default on first use.
func (s *Service) DoctorCode(ctx context.Context, callerID uuid.UUID) (string, error) {
	code, err := s.repo.Get(ctx, doctorCodeKey)
	if errors.Is(err, ErrConfigNotFound) {
		if err := s.repo.Set(ctx, doctorCodeKey, s.defaultCode, callerID); err != nil {
			return "", fmt.Errorf("initialize doctor code: %w", err)
		}
		return s.defaultCode, nil
	}
	if err != nil {
		return "", fmt.Errorf("read doctor code: %w", err)
	}
	return code, nil
}

func (s *Service) SetDoctorCode(ctx context.Context, code string, callerID uuid.UUID) error {
	if len(code) < minCodeLength {
		return ErrCodeTooShort
	}
	if err := s.repo.Set(ctx, doctorCodeKey, code, callerID); err != nil {
		return fmt.Errorf("set doctor code: %w", err)
	}
	s.log.Info().Stringer("updated_by", callerID).Msg("doctor registration code updated")
	return nil
}

// GenerateDoctorCode replaces the code with a random one and returns it.
func (s *Service) GenerateDoctorCode(ctx context.Context, callerID uuid.UUID) (string, error) {
	code, err := randomCode(8)
	if err != nil {
		return "", fmt.Errorf("generate doctor code: %w", err)
	}
	if err := s.SetDoctorCode(ctx, code, callerID); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyDoctorCode is consulted during doctor registration; an unconfigured
// clinic falls back to the default code.
func (s *Service) VerifyDoctorCode(ctx context.Context, code string) (bool, error) {
	current, err := s.repo.Get(ctx, doctorCodeKey)
	if errors.Is(err, ErrConfigNotFound) {
		current = s.defaultCode
	} else if err != nil {
		return false, fmt.Errorf("read doctor code: %w", err)
	}
	return code != "" && code == current, nil
}

// HospitalConfig returns the stored profile, or nil when none has been set
// yet.
func (s *Service) HospitalConfig(ctx context.Context) (*HospitalConfig, error) {
	name, err := s.repo.Get(ctx, hospitalNameKey)
	if errors.Is(err, ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hospital config: %w", err)
	}

	cfg := HospitalConfig{Name: name}
	for key, dst := range map[string]*string{
		hospitalAddressKey: &cfg.Address,
		hospitalPhoneKey:   &cfg.Phone,
		hospitalEmailKey:   &cfg.Email,
	} {
		v, err := s.repo.Get(ctx, key)
		if err != nil && !errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("read hospital config: %w", err)
		}
		*dst = v
	}
	return &cfg, nil
}

// SetHospitalConfig replaces the whole profile; every field is required.
func (s *Service) SetHospitalConfig(ctx context.Context, cfg HospitalConfig, callerID uuid.UUID) error {
	for field, value := range map[string]string{
		"name":    cfg.Name,
		"address": cfg.Address,
		"phone":   cfg.Phone,
		"email":   cfg.Email,
	} {
		if value == "" {
			return fmt.Errorf("%w: %s", ErrFieldRequired, field)
		}
	}

	for key, value := range map[string]string{
		hospitalNameKey:    cfg.Name,
		hospitalAddressKey: cfg.Address,
		hospitalPhoneKey:   cfg.Phone,
		hospitalEmailKey:   cfg.Email,
	} {
		if err := s.repo.Set(ctx, key, value, callerID); err != nil {
			return fmt.Errorf("write hospital config: %w", err)
		}
	}

	s.log.Info().Stringer("updated_by", callerID).Msg("hospital config updated")
	return nil
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
