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

	"src.d10.dev/ledgercore/engine"
)

const (
	kvpSXCreditFormula = "GNC_SX/credit-formula"
	kvpSXDebitFormula  = "GNC_SX/debit-formula"
	kvpSXAccount       = "GNC_SX/account"
)

// TemplateSplitInfo is one split of a scheduled transaction's template
// transaction: the credit/debit formula strings evaluated at
// instance-creation time and the GUID of the real account the
// instantiated split should post to, matching the per-split GNC_SX/*
// KVP slots xaccSchedXactionSetTemplateTrans writes.
type TemplateSplitInfo struct {
	CreditFormula string
	DebitFormula  string
	AccountGUID   string
}

// TemplateTransInfo is the per-split payload SetTemplateTrans takes,
// one entry per split of the resulting template transaction.
type TemplateTransInfo = TemplateSplitInfo

// SetTemplateTrans replaces this schedule's template transaction with a
// single transaction on its template account, one split per entry in
// infos, each split's formulas and target account recorded in its
// GNC_SX KVP slots rather than real amounts, following
// xaccSchedXactionSetTemplateTrans's delete-then-recreate step. Formula
// evaluation itself is out of scope; this stores and retrieves the
// three slots only.
func (this *ScheduledTransaction) SetTemplateTrans(ctx context.Context, infos []TemplateTransInfo) {
	this.deleteTemplateTrans(ctx)

	trans := engine.NewTransaction(this.book)
	trans.BeginEdit(ctx)
	trans.SetDescription(this.name)
	for _, info := range infos {
		split := engine.NewSplit(this.book)
		split.SetAccount(this.templateAccount)
		trans.AppendSplit(split)
		split.KVP().SetString(kvpSXCreditFormula, info.CreditFormula)
		split.KVP().SetString(kvpSXDebitFormula, info.DebitFormula)
		split.KVP().SetGUID(kvpSXAccount, info.AccountGUID)
	}
	trans.CommitEdit(ctx)
	this.dirty = true
}

// TemplateSplits reads back this schedule's template transaction as
// the TemplateSplitInfo slice SetTemplateTrans wrote, in split order.
func (this *ScheduledTransaction) TemplateSplits() []TemplateSplitInfo {
	var out []TemplateSplitInfo
	for _, trans := range this.templateTransactions() {
		for _, s := range trans.Splits() {
			info := TemplateSplitInfo{}
			info.CreditFormula, _ = s.KVP().GetString(kvpSXCreditFormula)
			info.DebitFormula, _ = s.KVP().GetString(kvpSXDebitFormula)
			info.AccountGUID, _ = s.KVP().GetGUID(kvpSXAccount)
			out = append(out, info)
		}
	}
	return out
}

// templateTransactions collects the distinct transactions currently
// posted to this schedule's template account.
func (this *ScheduledTransaction) templateTransactions() []*engine.Transaction {
	seen := make(map[*engine.Transaction]struct{})
	var out []*engine.Transaction
	for _, ref := range this.templateAccount.Splits() {
		s, ok := ref.(*engine.Split)
		if !ok {
			continue
		}
		trans := s.Parent()
		if trans == nil {
			continue
		}
		if _, ok := seen[trans]; ok {
			continue
		}
		seen[trans] = struct{}{}
		out = append(out, trans)
	}
	return out
}

// deleteTemplateTrans destroys every transaction currently posted to
// this schedule's template account, the delete half of
// xaccSchedXactionSetTemplateTrans's delete-then-recreate step, and
// what xaccSchedXactionFree calls before freeing the template account
// itself.
func (this *ScheduledTransaction) deleteTemplateTrans(ctx context.Context) {
	for _, trans := range this.templateTransactions() {
		trans.BeginEdit(ctx)
		trans.Destroy()
		trans.CommitEdit(ctx)
	}
}
