// Package report writes the CSV files consumed by the simulator front end.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mibel_prices/internal/model"
)

// BOM starts every file so spreadsheet tools detect UTF-8.
const BOM = "\ufeff"

// Fixed formats v with the given number of decimals, rounding the exact
// binary value half to even like printf. Missing values are written as an
// empty cell.
func Fixed(v float64, places int32) string {
	if model.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', int(places), 64)
}

// WriteFile creates path and its directory, writes the BOM and hands the
// file to write.
func WriteFile(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(BOM); err != nil {
		return err
	}
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// table writes one CSV table, each line prefixed with offset empty cells.
func table(w io.Writer, offset int, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	pad := make([]string, offset)

	if err := cw.Write(append(pad[:offset:offset], header...)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(append(pad[:offset:offset], r...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// marker writes a blank line followed by a table name at the given offset.
func marker(w io.Writer, offset int, name string) error {
	_, err := io.WriteString(w, "\n"+strings.Repeat(",", offset)+name+"\n")
	return err
}
