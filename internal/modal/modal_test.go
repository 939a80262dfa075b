package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryCancel(retry, cancel *int) Dialog {
	return Dialog{
		Icon:    IconError,
		Message: "Error loading level 1\nnetwork down",
		Buttons: []Button{
			{Label: "Retry", OnActivate: func() { *retry++ }},
			{Label: "Cancel", OnActivate: func() { *cancel++ }},
		},
	}
}

func TestLogSurface_AutoActivate(t *testing.T) {
	tests := []struct {
		name       string
		policy     string
		wantRetry  int
		wantCancel int
	}{
		{name: "none", policy: ""},
		{name: "retry", policy: "retry", wantRetry: 1},
		{name: "cancel", policy: "Cancel", wantCancel: 1},
		{name: "unknown label", policy: "ignore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var retry, cancel int
			s := NewLogSurface(tt.policy)

			s.Show(retryCancel(&retry, &cancel))

			assert.Equal(t, tt.wantRetry, retry)
			assert.Equal(t, tt.wantCancel, cancel)
		})
	}
}

func TestLogSurface_Current(t *testing.T) {
	s := NewLogSurface("")
	_, ok := s.Current()
	assert.False(t, ok)

	s.Show(Dialog{Icon: IconLoading, Message: "Loading level 1...\n0%"})
	d, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Loading level 1...\n0%", d.Message)

	s.Hide()
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestTee(t *testing.T) {
	a, b := NewLogSurface(""), NewLogSurface("")
	s := Tee(a, b)

	s.Show(Dialog{Message: "x"})
	_, okA := a.Current()
	_, okB := b.Current()
	assert.True(t, okA)
	assert.True(t, okB)

	s.Hide()
	_, okA = a.Current()
	_, okB = b.Current()
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestDialog_Labels(t *testing.T) {
	var r, c int
	assert.Equal(t, []string{"Retry", "Cancel"}, retryCancel(&r, &c).Labels())
	assert.Empty(t, Dialog{}.Labels())
}
