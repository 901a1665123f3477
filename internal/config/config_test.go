package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("ATTENDANCE_LOCK_BACKEND", "")
	t.Setenv("ATTENDANCE_TIMEZONE", "")
	t.Setenv("AUTH_ADMIN_USERNAMES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, LockBackendLocal, cfg.Attendance.LockBackend)
	assert.True(t, cfg.Auth.EphemeralSecret)
	assert.Len(t, cfg.Auth.JWTSecret, 32)
	assert.False(t, cfg.Auth.StrictTokens)
	assert.False(t, cfg.Attendance.EnforceSignOutOrder)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoad_ExplicitSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "super-secret")
	t.Setenv("AUTH_ADMIN_USERNAMES", "alice, bob ,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Auth.EphemeralSecret)
	assert.Equal(t, []byte("super-secret"), cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Auth.AdminUsernames)
}

func TestLoad_InvalidLockBackend(t *testing.T) {
	t.Setenv("ATTENDANCE_LOCK_BACKEND", "etcd")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("ATTENDANCE_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestAttendanceConfig_LockTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, AttendanceConfig{}.LockTTL())
	assert.Equal(t, 3*time.Second, AttendanceConfig{LockTTLSeconds: 3}.LockTTL())
}
