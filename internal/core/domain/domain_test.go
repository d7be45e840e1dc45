package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want Tags
	}{
		{"", Tags{}},
		{"solar, wiring,,  ", Tags{"solar", "wiring"}},
		{"a,b,c,d,e,f", Tags{"a", "b", "c", "d", "e", "f"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.raw), tt.raw)
	}
}

func TestTags_ValueAndScan(t *testing.T) {
	v, err := Tags{"solar", "wiring"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["solar","wiring"]`, v)

	var tags Tags
	require.NoError(t, tags.Scan([]byte(`["a"]`)))
	assert.Equal(t, Tags{"a"}, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Equal(t, Tags{}, tags)

	assert.Error(t, tags.Scan(42))
	assert.Error(t, tags.Scan("not json"))
}

func TestUser_OTP(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	code := "123456"
	u := &User{OTP: &code, OTPIssuedAt: &issued}

	assert.True(t, u.OTPValid("123456", issued.Add(4*time.Minute), 5*time.Minute))
	assert.False(t, u.OTPValid("654321", issued.Add(time.Minute), 5*time.Minute))
	assert.False(t, u.OTPValid("123456", issued.Add(6*time.Minute), 5*time.Minute))
	assert.True(t, (&User{}).OTPExpired(issued, 5*time.Minute))
}

func TestUser_Profile(t *testing.T) {
	lat, lon := "6.5", "3.3"
	u := &User{ID: 7, FirstName: "Ada", LastName: "Obi", Latitude: &lat, Longitude: &lon}

	p := u.Profile()
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, &lat, p.Location.Latitude)
	assert.Nil(t, p.Location.Location)
	assert.Equal(t, "Ada Obi", u.FullName())
}

func TestProfileUpdate_Empty(t *testing.T) {
	blank := ""
	name := "Ada"
	assert.True(t, ProfileUpdate{}.Empty())
	assert.True(t, ProfileUpdate{FirstName: &blank}.Empty())
	assert.False(t, ProfileUpdate{FirstName: &name}.Empty())
}

func TestValidEducationLevel(t *testing.T) {
	assert.True(t, ValidEducationLevel("All Levels"))
	assert.False(t, ValidEducationLevel("All"))
}
