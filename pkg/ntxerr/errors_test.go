package ntxerr

import (
	"testing"

	"github.com/rotisserie/eris"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", eris.New("boom"), KindUnknown},
		{"symbol", eris.Wrapf(ErrSymbolNotFound, "kconfig option '%s'", "FOO"), KindNotFound},
		{"format", eris.Wrap(ErrBadFormat, "abc"), KindInvalid},
		{"assignable", eris.Wrapf(ErrNotAssignable, "FOO"), KindInvalid},
		{"range", eris.Wrapf(ErrOutOfRange, "MAX_TASKS=11"), KindInvalid},
		{"corrupt", eris.Wrap(ErrRecordCorrupt, "missing os_dir"), KindCorrupt},
		{"init", eris.Wrap(ErrNotInitialized, "/ws/nuttx/.config"), KindNotInitialized},
		{"external", External("make", 2), KindExternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Errorf("nil: got %d", got)
	}
	if got := ExitCode(External("make", 42)); got != 42 {
		t.Errorf("external: got %d, want 42", got)
	}
	if got := ExitCode(External("make", -1)); got != 1 {
		t.Errorf("negative external: got %d, want 1", got)
	}
	if got := ExitCode(eris.Wrap(ErrWrongType, "FOO")); got != 2 {
		t.Errorf("invalid: got %d, want 2", got)
	}
	if got := ExitCode(eris.Wrap(ErrRecordNotFound, "/ws")); got != 1 {
		t.Errorf("not found: got %d, want 1", got)
	}
}

func TestExternalZeroIsNil(t *testing.T) {
	if err := External("make", 0); err != nil {
		t.Errorf("External(0) = %v, want nil", err)
	}
}
