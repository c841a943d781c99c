package tts

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without path",
			err:  NewError(KindSynthesis, "synthesize", errors.New("quota exceeded")),
			want: "SYNTHESIS: synthesize: quota exceeded",
		},
		{
			name: "with path",
			err:  NewError(KindIngest, "read", fs.ErrPermission).WithPath("/inbox/a.txt"),
			want: "INGEST: read /inbox/a.txt: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := NewError(KindCacheIO, "write", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestIsKind(t *testing.T) {
	wrapped := fmt.Errorf("fill: %w", NewError(KindDecode, "decode", errors.New("bad header")))

	if !IsKind(wrapped, KindDecode) {
		t.Error("expected wrapped error to be KindDecode")
	}
	if IsKind(wrapped, KindSetup) {
		t.Error("did not expect KindSetup")
	}
	if IsKind(errors.New("plain"), KindDecode) {
		t.Error("plain errors carry no kind")
	}
}

func TestIsItemError(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindSetup, false},
		{KindIngest, false},
		{KindSynthesis, true},
		{KindCacheIO, false},
		{KindDecode, true},
	}

	for _, tt := range tests {
		t.Run(strings.ToLower(string(tt.kind)), func(t *testing.T) {
			err := NewError(tt.kind, "op", errors.New("boom"))
			if got := IsItemError(err); got != tt.want {
				t.Errorf("IsItemError(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}

	if IsItemError(errors.New("plain")) {
		t.Error("plain errors are not item errors")
	}
}
