package geomag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/westphae/geomag/pkg/wmm"
)

// CheckCOF verifies that r holds a coefficient set the wmm package can
// evaluate: a header "epoch name MM/DD/YYYY" followed by "n m g h dg dh"
// lines in ascending degree, covering every 1 <= n <= 12 and 0 <= m <= n.
// Lines with fewer than six fields, such as the closing row of nines, are
// ignored as they are by the loader.
func CheckCOF(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	header := false
	seen := make(map[[2]int]bool)
	curN := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if !header {
			if err := checkHeader(fields); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			header = true
			continue
		}
		if len(fields) < 6 {
			continue
		}

		n, errN := strconv.Atoi(fields[0])
		m, errM := strconv.Atoi(fields[1])
		if errN != nil || errM != nil || n < 1 || n > wmm.MaxLegendreOrder || m < 0 || m > n {
			return fmt.Errorf("line %d: bad degree/order %q %q", lineNo, fields[0], fields[1])
		}
		if n < curN {
			return fmt.Errorf("line %d: degree %d after %d", lineNo, n, curN)
		}
		curN = n
		for _, f := range fields[2:6] {
			if _, err := strconv.ParseFloat(f, 64); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		seen[[2]int{n, m}] = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read coefficients: %w", err)
	}
	if !header {
		return fmt.Errorf("no header")
	}

	for n := 1; n <= wmm.MaxLegendreOrder; n++ {
		for m := 0; m <= n; m++ {
			if !seen[[2]int{n, m}] {
				return fmt.Errorf("missing term n=%d m=%d", n, m)
			}
		}
	}
	return nil
}

// CheckCOFFile runs CheckCOF on a file.
func CheckCOFFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := CheckCOF(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func checkHeader(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("bad header: want epoch, name and release date")
	}
	if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
		return fmt.Errorf("bad epoch %q", fields[0])
	}
	if _, err := time.Parse("01/02/2006", fields[2]); err != nil {
		return fmt.Errorf("bad release date %q", fields[2])
	}
	return nil
}
