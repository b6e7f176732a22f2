package menu

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func library(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.MkdirAll(filepath.Join(dir, n), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFoldersOrder(t *testing.T) {
	dir := library(t, "beta", "Alpha", "gamma", ".thumbnails")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Folders(dir)
	if err != nil {
		t.Fatalf("Folders: %v", err)
	}
	if strings.Join(got, ",") != "Alpha,beta,gamma" {
		t.Fatalf("got %v", got)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
		prompts int
	}{
		{name: "valid choice", input: "2\n", want: "beta", prompts: 1},
		{name: "reprompts on garbage", input: "abc\n9\n-1\n1\n", want: "Alpha", prompts: 4},
		{name: "zero cancels", input: "0\n", wantErr: ErrCancelled, prompts: 1},
		{name: "eof cancels", input: "", wantErr: ErrCancelled, prompts: 1},
	}
	dir := library(t, "beta", "Alpha")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Select(dir, strings.NewReader(tc.input), &out)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Select: %v", err)
				}
				if got != filepath.Join(dir, tc.want) {
					t.Fatalf("got %s", got)
				}
			}
			if n := strings.Count(out.String(), "Pick the folder number"); n != tc.prompts {
				t.Errorf("prompted %d times, want %d\n%s", n, tc.prompts, out.String())
			}
		})
	}
}

func TestSelectLibraryErrors(t *testing.T) {
	var out bytes.Buffer
	if _, err := Select(filepath.Join(t.TempDir(), "missing"), strings.NewReader("1\n"), &out); !errors.Is(err, ErrNoLibrary) {
		t.Errorf("missing dir: err = %v", err)
	}
	if _, err := Select(t.TempDir(), strings.NewReader("1\n"), &out); !errors.Is(err, ErrEmptyLibrary) {
		t.Errorf("empty dir: err = %v", err)
	}
}
