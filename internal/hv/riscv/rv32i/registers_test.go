package rv32i

import (
	"bytes"
	"testing"
)

func TestRegisterFileX0AlwaysZero(t *testing.T) {
	var r RegisterFile
	r.Reset()
	r.Set(0, 42)
	if got := r.Get(0); got != 0 {
		t.Errorf("x0 = %d, want 0", got)
	}
}

func TestRegisterFileResetSentinel(t *testing.T) {
	var r RegisterFile
	r.Reset()
	for i := uint32(1); i < 32; i++ {
		if got := r.Get(i); got != uninitializedRegister {
			t.Errorf("x%d = %d, want %d", i, got, uninitializedRegister)
		}
	}
}

func TestRegisterFileSetGet(t *testing.T) {
	var r RegisterFile
	r.Reset()
	r.Set(5, -1)
	if got := r.Get(5); got != -1 {
		t.Errorf("x5 = %d, want -1", got)
	}
}

func TestRegisterFileOutOfRangeIgnored(t *testing.T) {
	var r RegisterFile
	r.Reset()
	r.Set(32, 99)
	if got := r.Get(32); got != 0 {
		t.Errorf("Get(32) = %d, want 0", got)
	}
}

func TestRegisterFileDumpRows(t *testing.T) {
	var r RegisterFile
	r.Reset()
	r.Set(1, 1)

	var out bytes.Buffer
	r.Dump(&out, "")

	var sentinelReg int32 = uninitializedRegister
	sentinel := uint32(sentinelReg)
	want := "x0  00000000 00000001 " + hex32(sentinel) + " " +
		hex32(sentinel) + " " + hex32(sentinel) + " " +
		hex32(sentinel) + " " + hex32(sentinel) + " " +
		hex32(sentinel) + "\n"
	got := out.String()
	if len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("Dump first row =\n%q\nwant\n%q", got[:min(len(got), len(want))], want)
	}
}
