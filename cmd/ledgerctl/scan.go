// Copyright (C) 2019  David N. Cohen

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"io"
	"strings"
	"time"
)

const HeaderNotFound int = -1

// TxLines holds the raw lines of one blank-line-delimited block of a
// ledger file. Line may hold a comment block rather than a
// transaction; the header index is set only once a header line (a
// line starting with a date) is found among them.
type TxLines struct {
	Line   []string
	header *int      // index
	Date   time.Time // based on date in header line
}

// Header inspects this block's lines and returns the transaction
// header line: description preceded by a date, the line immediately
// before the posted splits.
func (this *TxLines) Header() (string, int) {
	if this.header == nil {
		this.findHeader()
	}
	if *this.header < 0 {
		return "", HeaderNotFound
	}
	return this.Line[*this.header], *this.header
}

func newInt(x int) *int { return &x }

var dateFormat = [...]string{
	"2006/1/_2",
	"2006-1-_2",
}

// parseDate wraps time.Parse across the handful of date formats a
// ledger file's header line commonly uses.
func parseDate(str string) (t time.Time, e error) {
	for _, f := range dateFormat {
		t, e = time.Parse(f, str)
		if e == nil {
			break
		}
	}
	return
}

// findHeader returns the offset of this block's header line, or -1 if
// the block is not a transaction (e.g. a standalone comment).
func (this *TxLines) findHeader() int {
	isTx := false
	for i := len(this.Line) - 1; i >= 0; i-- {
		splitComment := strings.Split(this.Line[i], ";")
		trimmed := strings.TrimLeft(splitComment[0], "\t ")
		if trimmed != splitComment[0] {
			// leading space indicates a posted split of the transaction
			if trimmed != "" {
				isTx = true
			}
			continue
		}

		if !isTx {
			this.header = newInt(-1)
			break
		}

		var err error
		// the line immediately preceeding the splits is the header
		splitSpace := strings.Split(splitComment[0], " ")
		this.Date, err = parseDate(splitSpace[0])
		if err == nil {
			this.header = newInt(i)
			break
		}
		this.header = newInt(-1)
		break
	}
	return *this.header
}

func (this *TxLines) Len() int { return len(this.Line) }

// TxScanner scans an io.Reader for blank-line-delimited blocks of
// ledger data, one transaction (or comment run) per Scan.
type TxScanner struct {
	scanner *bufio.Scanner
	lines   TxLines
}

func NewTxScanner(in io.Reader) *TxScanner {
	return &TxScanner{scanner: bufio.NewScanner(in)}
}

func (this *TxScanner) Scan() bool {
	nonEmpty := false
	this.lines = TxLines{Line: make([]string, 0)}
	for this.scanner.Scan() {
		line := this.scanner.Text()

		if strings.TrimSpace(line) == "" {
			if nonEmpty {
				break
			}
		}

		this.lines.Line = append(this.lines.Line, line)

		split := strings.Split(line, ";")
		if strings.TrimSpace(split[0]) != "" {
			nonEmpty = true
		}
	}
	return this.lines.Len() > 0
}

func (this *TxScanner) Lines() TxLines { return this.lines }

func (this *TxScanner) Err() error { return this.scanner.Err() }
