package main

import (
	"flag"
	"io"
	"testing"
)

func TestFlagPassed(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want bool
	}{
		{"not given", []string{"--namespace", "akd"}, false},
		{"explicit zero", []string{"--namespace", "akd", "--epoch", "0"}, true},
		{"nonzero", []string{"--epoch", "42"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := flag.NewFlagSet("audit", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			fs.String("namespace", "", "")
			fs.Uint64("epoch", 0, "")
			if err := fs.Parse(tc.args); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := flagPassed(fs, "epoch"); got != tc.want {
				t.Fatalf("flagPassed = %v, want %v", got, tc.want)
			}
		})
	}
}
