package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesDropsAbsent(t *testing.T) {
	p := Params{"status": "active", "search": "", "page": 2, "city": nil}

	v := p.Values()

	assert.Equal(t, "active", v.Get("status"))
	assert.Equal(t, "2", v.Get("page"))
	assert.False(t, v.Has("search"))
	assert.False(t, v.Has("city"))
}

func TestKeyIsOrderAndAbsenceIndependent(t *testing.T) {
	tests := []struct {
		name string
		a, b Params
	}{
		{
			name: "reordered",
			a:    Params{"status": "active", "page": 1},
			b:    Params{"page": 1, "status": "active"},
		},
		{
			name: "empty values omitted",
			a:    Params{"status": "active"},
			b:    Params{"status": "active", "search": "", "job_id": nil},
		},
		{
			name: "int and whole float",
			a:    Params{"page": 5},
			b:    Params{"page": 5.0},
		},
		{
			name: "nil and empty params",
			a:    nil,
			b:    Params{"search": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.a.Key(), tt.b.Key())
		})
	}
}

func TestKeyDistinguishesValues(t *testing.T) {
	assert.NotEqual(t, Params{"status": "active"}.Key(), Params{"status": "closed"}.Key())
}

func TestContains(t *testing.T) {
	p := Params{"id": 5, "page": 1}

	require.True(t, p.Contains(Params{"id": 5}))
	require.True(t, p.Contains(Params{"id": "5"}))
	require.True(t, p.Contains(nil))
	require.False(t, p.Contains(Params{"id": 6}))
	require.False(t, p.Contains(Params{"status": "active"}))
}

func TestWithCopies(t *testing.T) {
	p := Params{"page": 1}
	q := p.With("status", "active")

	assert.Equal(t, "{page=1}", p.String())
	assert.Equal(t, "{page=1,status=active}", q.String())
}
