package token

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// Every path inside the counter transaction (read, write, commit) must report
// a store-level abort as a conflict so the issuer retries the whole unit. A
// serialization failure surfacing on the SELECT is the easy one to miss.
func TestRetryableConflictCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"duplicate counter insert", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped serialization failure", fmt.Errorf("read counter: %w", &pgconn.PgError{Code: "40001"}), true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
