package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errProvider = errors.New("provider down")
	errDeclined = errors.New("declined")
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New[string](Config{Name: "test", ConsecutiveFailures: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := b.Execute(func() (string, error) { return "", errProvider })
		require.ErrorIs(t, err, errProvider)
	}

	calls := 0
	_, err := b.Execute(func() (string, error) {
		calls++
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_BusinessErrorsDoNotTrip(t *testing.T) {
	b := New[int](Config{
		Name:                "test",
		ConsecutiveFailures: 1,
		IsSuccessful:        func(err error) bool { return errors.Is(err, errDeclined) },
	})

	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errDeclined })
		require.ErrorIs(t, err, errDeclined)
	}

	v, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "closed", b.State())
}
