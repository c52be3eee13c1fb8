//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"locker-booking/internal/pkg/config"
	"locker-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TokenFor mints a bearer token for the given user, signed with the
// same secret the application under test validates against.
func TokenFor(t *testing.T, cfg config.Config, userID uuid.UUID) string {
	t.Helper()

	duration, err := time.ParseDuration(cfg.JWT.Duration)
	require.NoError(t, err, "invalid JWT duration in test config")

	token, err := jwt.NewService(cfg.JWT.Secret, duration).Generate(userID)
	require.NoError(t, err, "failed to generate test token")
	return token
}
