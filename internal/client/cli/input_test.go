package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetDefault(t *testing.T) {
	var out bytes.Buffer
	got, err := GetDefault(rdr("\n"), "Setor", "TI", &out)
	require.NoError(t, err)
	assert.Equal(t, "TI", got)
	assert.Contains(t, out.String(), "Setor [TI]")

	got, err = GetDefault(rdr("RH\n"), "Setor", "TI", &out)
	require.NoError(t, err)
	assert.Equal(t, "RH", got)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	got, err = GetMultiline(rdr("no newline"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for in, want := range map[string]bool{"s\n": true, "SIM\n": true, "yes\n": true, "\n": false, "n\n": false} {
		got, err := Confirm(rdr(in), "Excluir?", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestGetStatus(t *testing.T) {
	var out bytes.Buffer

	got, err := GetStatus(rdr("4\n"), models.StatusPlanned, &out)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got)

	got, err = GetStatus(rdr("\n"), models.StatusPlanned, &out)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, got)

	got, err = GetStatus(rdr("whatever\n"), models.StatusPlanned, &out)
	require.NoError(t, err)
	assert.False(t, got.Valid(), "validation happens in the services")
}

func TestTerminalWidth(t *testing.T) {
	old := termSize
	t.Cleanup(func() { termSize = old })

	termSize = func(int) (int, int, error) { return 0, 0, errors.New("not a tty") }
	assert.Equal(t, defaultWidth, terminalWidth())

	termSize = func(int) (int, int, error) { return 132, 40, nil }
	assert.Equal(t, 132, terminalWidth())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c ,"))
	assert.Nil(t, splitList(""))
}
