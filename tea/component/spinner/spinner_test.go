package teaspinner_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	teaspinner "github.com/mule-tools/mmc-deploy/tea/component/spinner"
)

func TestSpinnerShowsLatestStep(t *testing.T) {
	t.Parallel()
	s := teaspinner.New("[1/3] Upload archive", nil)

	model, cmd := s.Update(teaspinner.LogMsg("[2/3] Create deployment"))
	s, ok := model.(teaspinner.Spinner)
	require.True(t, ok)

	assert.Nil(t, cmd)
	assert.Equal(t, "[2/3] Create deployment", s.Text())
	assert.Contains(t, s.View(), "[2/3] Create deployment")
	assert.False(t, s.Done())
}

func TestSpinnerStopKeepsLastStep(t *testing.T) {
	t.Parallel()
	s := teaspinner.New("[3/3] Trigger deployment", nil)

	model, cmd := s.Update(teaspinner.StopMsg{})
	s, ok := model.(teaspinner.Spinner)
	require.True(t, ok)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, s.Done())
	assert.Equal(t, "[3/3] Trigger deployment\n", s.View())
}

func TestSpinnerCtrlCCancels(t *testing.T) {
	t.Parallel()
	cancelled := false
	s := teaspinner.New("[1/3] Upload archive", func() { cancelled = true })

	model, cmd := s.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	s, ok := model.(teaspinner.Spinner)
	require.True(t, ok)

	require.NotNil(t, cmd)
	assert.True(t, cancelled)
	assert.True(t, s.Done())
}

func TestSpinnerIgnoresOtherKeys(t *testing.T) {
	t.Parallel()
	s := teaspinner.New("[1/3] Upload archive", func() { t.Fatal("cancel called") })

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Nil(t, cmd)
}
