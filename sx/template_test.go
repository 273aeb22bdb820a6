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

package sx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.d10.dev/ledgercore/engine"
	"src.d10.dev/ledgercore/guid"
)

func TestSetTemplateTransStoresFormulaSlots(t *testing.T) {
	b := engine.NewBook()
	s := New(b)
	ctx := context.Background()

	rent := guid.New().String()
	checking := guid.New().String()
	infos := []TemplateTransInfo{
		{CreditFormula: "", DebitFormula: "1200", AccountGUID: rent},
		{CreditFormula: "1200", DebitFormula: "", AccountGUID: checking},
	}
	s.SetTemplateTrans(ctx, infos)

	got := s.TemplateSplits()
	require.Len(t, got, 2)
	assert.Equal(t, infos[0], got[0])
	assert.Equal(t, infos[1], got[1])
}

func TestSetTemplateTransReplacesPriorTemplate(t *testing.T) {
	b := engine.NewBook()
	s := New(b)
	ctx := context.Background()

	first := []TemplateTransInfo{{DebitFormula: "100", AccountGUID: guid.New().String()}}
	s.SetTemplateTrans(ctx, first)
	require.Len(t, s.TemplateSplits(), 1)

	second := []TemplateTransInfo{
		{DebitFormula: "50", AccountGUID: guid.New().String()},
		{CreditFormula: "50", AccountGUID: guid.New().String()},
	}
	s.SetTemplateTrans(ctx, second)

	got := s.TemplateSplits()
	require.Len(t, got, 2)
	assert.Equal(t, second[0], got[0])
	assert.Equal(t, second[1], got[1])
}

func TestDestroyDeletesTemplateTransAndAccount(t *testing.T) {
	b := engine.NewBook()
	s := New(b)
	ctx := context.Background()

	s.SetTemplateTrans(ctx, []TemplateTransInfo{
		{DebitFormula: "100", AccountGUID: guid.New().String()},
	})
	require.Len(t, s.TemplateSplits(), 1)

	acct := s.TemplateAccount()
	s.Destroy(ctx)

	assert.Empty(t, acct.Splits())
	assert.Empty(t, s.templateTransactions())
}
