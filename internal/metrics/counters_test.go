package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters_PerUser(t *testing.T) {
	c := New(true)

	c.RegistrationObserved()
	c.RegistrationObserved()
	c.LoginObserved("alice")
	c.LoginObserved("alice")
	c.LoginObserved("bob")
	c.PasswordChangeObserved("alice")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.registrations))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues("alice")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues("bob")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passwordChanges.WithLabelValues("alice")))

	expected := `
# HELP account_logins_total Total number of successful logins.
# TYPE account_logins_total counter
account_logins_total{username="alice"} 2
account_logins_total{username="bob"} 1
`
	require.NoError(t, testutil.GatherAndCompare(c.registry, strings.NewReader(expected), "account_logins_total"))
}

func TestCounters_Global(t *testing.T) {
	c := New(false)

	c.LoginObserved("alice")
	c.LoginObserved("bob")
	c.PasswordChangeObserved("bob")

	expected := `
# HELP account_logins_total Total number of successful logins.
# TYPE account_logins_total counter
account_logins_total 2
# HELP account_password_changes_total Total number of completed password resets.
# TYPE account_password_changes_total counter
account_password_changes_total 1
`
	require.NoError(t, testutil.GatherAndCompare(c.registry, strings.NewReader(expected),
		"account_logins_total", "account_password_changes_total"))
}

func TestCounters_GlobalStartAtZero(t *testing.T) {
	c := New(false)

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "account_registrations_total 0")
	assert.Contains(t, out, "account_logins_total 0")
	assert.Contains(t, out, "account_password_changes_total 0")
}

func TestCounters_WriteText(t *testing.T) {
	c := New(true)
	c.RegistrationObserved()
	c.LoginObserved("alice")

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE account_registrations_total counter")
	assert.Contains(t, out, "account_registrations_total 1")
	assert.Contains(t, out, `account_logins_total{username="alice"} 1`)
}

func TestCounters_Handler(t *testing.T) {
	c := New(false)
	c.RegistrationObserved()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "account_registrations_total 1")
}
