package log

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestErrorMsg(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false)

	l.ErrorMsg("test error: %s", "something")

	output := buf.String()
	if !strings.Contains(output, "test error: something") {
		t.Errorf("ErrorMsg() output does not contain expected text: %q", output)
	}
	if !strings.Contains(output, "[!] Error:") {
		t.Errorf("ErrorMsg() output lacks prefix: %q", output)
	}
}

func TestInfoMsg(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false)

	l.InfoMsg("test info: %s", "something")

	output := buf.String()
	if !strings.Contains(output, "[+] test info: something") {
		t.Errorf("InfoMsg() output does not contain expected text: %q", output)
	}
}

func TestVerboseMsg(t *testing.T) {
	tests := []struct {
		verbose bool
		want    bool
	}{
		{verbose: true, want: true},
		{verbose: false, want: false},
	}

	for _, tc := range tests {
		var buf bytes.Buffer
		l := NewLoggerTo(&buf, tc.verbose)

		l.VerboseMsg("details %d", 42)

		if got := strings.Contains(buf.String(), "details 42"); got != tc.want {
			t.Errorf("VerboseMsg() with verbose=%t printed=%t, want %t", tc.verbose, got, tc.want)
		}
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false)

	l.Print("styled\n", StyleRed, StyleBold, StyleUnderline)
	l.Print("plain\n")

	if !strings.Contains(buf.String(), "styled") || !strings.Contains(buf.String(), "plain") {
		t.Errorf("Print() output = %q", buf.String())
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger

	l.InfoMsg("ignored")
	l.ErrorMsg("ignored")
	l.VerboseMsg("ignored")
	l.Print("ignored")

	if l.Verbose() {
		t.Error("nil logger reports verbose")
	}
}

// Errors are returned to the caller, so no Logger method may end the process.
func TestLogger_NoExitingMethods(t *testing.T) {
	want := []string{"ErrorMsg", "InfoMsg", "Print", "Verbose", "VerboseMsg"}

	typ := reflect.TypeOf(&Logger{})
	var got []string
	for i := 0; i < typ.NumMethod(); i++ {
		got = append(got, typ.Method(i).Name)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Logger methods = %v, want %v", got, want)
	}
}
