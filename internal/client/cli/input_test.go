package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	if err == nil {
		t.Fatal("expected EOF error on empty input")
	}
}

// stubTerminal makes GetPassword see a terminal (or not) on stdin.
func stubTerminal(t *testing.T, terminal bool) {
	t.Helper()
	old := isTerminal
	isTerminal = func(int) bool { return terminal }
	t.Cleanup(func() { isTerminal = old })
}

func TestGetPassword(t *testing.T) {
	stubTerminal(t, true)
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(rdr(""), &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "Senha: \n", out.String())
}

func TestGetPassword_Error(t *testing.T) {
	stubTerminal(t, true)
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(rdr(""), &out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetPassword_PipedInputUsesReader(t *testing.T) {
	stubTerminal(t, false)
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		t.Fatal("terminal read on piped input")
		return nil, nil
	}

	in := rdr("alice\ns3cret\r\nwhoami\n")
	var out bytes.Buffer

	user, err := GetSimpleText(in, "Usuário", &out)
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	pw, err := GetPassword(in, &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)

	next, err := in.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "whoami\n", next, "the line after the password is still buffered")

	_, err = GetPassword(rdr(""), &out)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "number", input: "12\n", want: 12},
		{name: "padded", input: "  7 \n", want: 7},
		{name: "empty is zero", input: "\n", want: 0},
		{name: "text", input: "abc\n", wantErr: errNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetID(rdr(tt.input), "Id", &out)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
