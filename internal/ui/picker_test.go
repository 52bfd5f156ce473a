package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var collidingSignatures = []string{
	"transfer(address,uint256)",
	"many_msg_babbage(bytes1)",
	"transfer(bytes4[9],bytes5[6],int48[11])",
}

func press(t *testing.T, m signaturePicker, keys ...tea.KeyMsg) signaturePicker {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(signaturePicker)
		require.True(t, ok)
	}
	return m
}

func TestSignaturePickerNavigateAndSelect(t *testing.T) {
	m := newSignaturePicker("0xa9059cbb", collidingSignatures)

	m = press(t, m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")},
		tea.KeyMsg{Type: tea.KeyDown}, // clamped at the last row
		tea.KeyMsg{Type: tea.KeyUp},
	)
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.chosen)
	assert.False(t, m.quitting)
}

func TestSignaturePickerCancel(t *testing.T) {
	m := press(t, newSignaturePicker("0xa9059cbb", collidingSignatures), tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.quitting)
	assert.Equal(t, -1, m.chosen)
	assert.Empty(t, m.View())
}

func TestSignaturePickerView(t *testing.T) {
	view := newSignaturePicker("0xa9059cbb", collidingSignatures).View()
	assert.Contains(t, view, "3 signatures match 0xa9059cbb")
	for _, sig := range collidingSignatures {
		assert.Contains(t, view, sig)
	}
	assert.Contains(t, view, "registry default")
}

func TestPickSignatureWithoutTUI(t *testing.T) {
	_, err := PickSignature("0x12345678", nil)
	require.ErrorIs(t, err, ErrNoCandidates)

	sig, err := PickSignature("0xa9059cbb", collidingSignatures[:1])
	require.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)", sig)
}
