package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api/apitest"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/app"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/config"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedInApp(t *testing.T) (*app.App, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	cfg := &config.Config{APIURL: srv.URL, RequestTimeout: 5 * time.Second, StorageDriver: config.StorageSQLite}
	a, err := app.New(context.Background(), cfg, t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	_, err = a.Mutations.Login(context.Background(), models.Credentials{Email: apitest.Email, Password: apitest.Password})
	require.NoError(t, err)
	return a, srv
}

func TestTUICloseJobAndShortlist(t *testing.T) {
	a, srv := signedInApp(t)
	ctx := context.Background()

	// job 1, close it, open candidates, pick Sari, move to shortlisted, back out and quit
	in := strings.NewReader("1\nx\nc\n1\n2\nb\nb\nq\n")
	var out bytes.Buffer
	require.NoError(t, runTUI(ctx, a, in, &out))

	job, ok := srv.Job(1)
	require.True(t, ok)
	assert.Equal(t, models.JobClosed, job.Status)
	assert.Contains(t, out.String(), "Backend Engineer is now")
	assert.Contains(t, out.String(), "Sari Wulandari is now")

	got, err := a.Resources.Candidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShortlisted, got.Status)
}

func TestTUIRejectsBadSelection(t *testing.T) {
	a, _ := signedInApp(t)

	var out bytes.Buffer
	require.NoError(t, runTUI(context.Background(), a, strings.NewReader("9\nabc\n"), &out))
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid selection"))
}

func TestTUIStopsAtEndOfInput(t *testing.T) {
	a, _ := signedInApp(t)

	var out bytes.Buffer
	require.NoError(t, runTUI(context.Background(), a, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "Job Browser")
}

func TestPick(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  int
		ok    bool
	}{
		{"1", 3, 0, true},
		{"3", 3, 2, true},
		{"0", 3, 0, false},
		{"4", 3, 0, false},
		{"x", 3, 0, false},
	}
	for _, tt := range tests {
		got, ok := pick(tt.input, tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("pick(%q, %d) = %d, %v; want %d, %v", tt.input, tt.n, got, ok, tt.want, tt.ok)
		}
	}
}
