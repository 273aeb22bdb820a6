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

package engine

import "src.d10.dev/ledgercore/guid"

// determineGainStatus resolves an Unknown gains status by following
// the "gains-source" KVP slot, a GUID reference to the split this one
// realizes capital gains for, following DetermineGainStatus. A split
// with no such slot defaults to a plain (value-dirty) leg.
func (this *Split) determineGainStatus() {
	if this.gainsStatus != GainsUnknown {
		return
	}
	this.gainsStatus = GainsValueDirty

	src, ok := this.kvp.GetGUID(kvpGainsSource)
	if !ok {
		return
	}
	id, err := guid.Parse(src)
	if err != nil {
		return
	}
	v, ok := this.book.Accounts.Entities.Lookup(id, guid.TypeSplit)
	if !ok {
		return
	}
	source, ok := v.(*Split)
	if !ok || source == this {
		return
	}
	this.gainsStatus = GainsIsGainsSplit
	this.gainsPeer = source
	source.gainsPeer = this
}

// GainsStatus reports this split's gains-linkage state, resolving it
// on first use.
func (this *Split) GainsStatus() GainsStatus {
	if this.gainsStatus == GainsUnknown {
		this.determineGainStatus()
	}
	return this.gainsStatus
}

// GainsPeer returns the linked split on the other side of a
// source/gains pair, if any.
func (this *Split) GainsPeer() *Split { return this.gainsPeer }

// SetGainsSourceSplit marks this split as the capital-gains leg
// realizing source's disposal, recording the link in the
// "gains-source" KVP slot, matching the lot-matching engine's setup of
// a gains split before xaccTransCommitEdit runs.
func (this *Split) SetGainsSourceSplit(source *Split) {
	this.checkOpen("SetGainsSourceSplit")
	this.kvp.SetGUID(kvpGainsSource, source.id.String())
	this.gainsStatus = GainsIsGainsSplit
	this.gainsPeer = source
	source.gainsPeer = this
}

// markGainsDateDirty propagates SET_GAINS_VDIRTY's date-dirty flavor
// to a linked peer until the peer is already marked, giving the
// two-split fixpoint DetermineGainStatus relies on when a posted date
// changes.
func (this *Split) markGainsDateDirty() {
	if this.gainsStatus == GainsUnknown {
		this.determineGainStatus()
	}
	if this.gainsStatus == GainsDateDirty {
		return
	}
	this.gainsStatus = GainsDateDirty
	if this.gainsPeer != nil {
		this.gainsPeer.markGainsDateDirty()
	}
}

// propagateGainsDateDirty marks every split of this transaction (and
// their gains peers) date-dirty, called when datePosted changes since
// a gains split's valuation can depend on the source split's date.
func (this *Transaction) propagateGainsDateDirty() {
	for _, s := range this.splits {
		s.markGainsDateDirty()
	}
}
