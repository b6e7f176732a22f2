// Package menu implements the interactive comic folder picker for a Kotatsu
// download library.
package menu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Folders lists the comic folders of dir in case-insensitive alphabetical
// order. Hidden folders are ignored.
func Folders(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoLibrary, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyLibrary, dir)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out, nil
}

// Select prints the folders of dir as a numbered list on out and reads
// choices from in until a valid one is entered. It returns the chosen
// folder's full path, or ErrCancelled for 0 or end of input.
func Select(dir string, in io.Reader, out io.Writer) (string, error) {
	folders, err := Folders(dir)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(out, "\nLooking for comics in: %s\n\n", dir)
	for i, name := range folders {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, name)
	}
	fmt.Fprintln(out, "\n[0] Cancel / Exit")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nPick the folder number to process: ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("read choice: %w", err)
			}
			fmt.Fprintln(out)
			return "", ErrCancelled
		}
		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		switch {
		case err != nil:
			fmt.Fprintln(out, "Enter a valid number.")
		case n == 0:
			fmt.Fprintln(out, "Cancelled.")
			return "", ErrCancelled
		case n < 0 || n > len(folders):
			fmt.Fprintln(out, "Invalid number, try again.")
		default:
			chosen := folders[n-1]
			fmt.Fprintf(out, "\nSelected: %s\n", chosen)
			return filepath.Join(dir, chosen), nil
		}
	}
}
