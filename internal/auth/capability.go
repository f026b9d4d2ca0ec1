package auth

import "github.com/google/uuid"

// CanViewAppointment is the single capability check for exposing an
// appointment record: its owner, the treating doctor, or an admin.
func CanViewAppointment(caller Identity, role string, ownerID, doctorID uuid.UUID) bool {
	if role == "admin" {
		return true
	}
	if role == "doctor" && caller.UID == doctorID {
		return true
	}
	return caller.UID == ownerID
}
