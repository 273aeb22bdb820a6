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
	"fmt"
	"strings"

	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/commodity"
	"src.d10.dev/ledgercore/numeric"
)

// Amount is a parsed "<number> <mnemonic>" field, i.e. "100.00 USD" or
// "-1 ABC". Unlike ledger-cli, we require this simple two-token form
// rather than its fuller expression grammar.
type Amount struct {
	Mnemonic string
	Value    numeric.Numeric
}

func parseAmount(str string) (Amount, error) {
	fields := strings.Fields(str)
	if len(fields) < 2 {
		return Amount{}, fmt.Errorf("failed to parse amount (%q), expected amount and commodity mnemonic", str)
	}
	n, err := numeric.ParseDecimal(fields[0])
	if err != nil {
		return Amount{}, fmt.Errorf("failed to parse amount (%q): %w", str, err)
	}
	return Amount{Mnemonic: fields[1], Value: n}, nil
}

// commodities is the process-wide commodity catalogue this tool
// builds up as it observes mnemonics in the ledger file.
var commodities = commodity.NewTable()

// knownAccounts remembers every account created for a mnemonic so its
// commodity's fraction can be widened in place (via Account.SetCommodity)
// if a later line observes a finer precision than the first one seen.
var knownAccounts = make(map[string][]*book.Account)

// resolveCommodity registers (or widens) the "CURRENCY" commodity
// named by mnemonic so its fraction covers at least denom, the
// smallest-unit denominator implied by a decimal literal's digit
// count, mirroring ledger-cli's practice of inferring precision from
// observed data rather than a fixed schema.
func resolveCommodity(mnemonic string, denom int64) commodity.Commodity {
	if denom <= 0 {
		denom = 1
	}
	c, ok := commodities.Lookup("CURRENCY", mnemonic)
	if !ok || denom > c.Fraction() {
		c = commodities.Currency(mnemonic, maxInt64(denom, c.Fraction()))
		for _, a := range knownAccounts[mnemonic] {
			a.SetCommodity(c)
		}
	}
	return c
}

func rememberAccount(mnemonic string, a *book.Account) {
	knownAccounts[mnemonic] = append(knownAccounts[mnemonic], a)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
