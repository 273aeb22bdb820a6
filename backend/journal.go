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

package backend

import (
	"io"

	"github.com/rs/zerolog"
)

// Tag labels one journal line, matching the B/C/D/R one-letter postfix
// tags a GnuCash XML/log backend writes per begin, commit, destroy,
// and rollback.
type Tag string

const (
	TagBegin    Tag = "B"
	TagCommit   Tag = "C"
	TagDestroy  Tag = "D"
	TagRollback Tag = "R"
)

// Journal records every edit-protocol transition for audit/replay,
// independent of whatever Interface is doing the actual persistence.
type Journal interface {
	WriteLog(entityType, id string, tag Tag)
}

// ZerologJournal writes one structured line per transition.
type ZerologJournal struct {
	logger zerolog.Logger
}

// OpenLog builds a journal writing to w, matching the pack's
// zerolog.New(writer).With().Timestamp().Logger() construction idiom.
func OpenLog(w io.Writer) *ZerologJournal {
	return &ZerologJournal{logger: zerolog.New(w).With().Timestamp().Logger()}
}

func (this *ZerologJournal) WriteLog(entityType, id string, tag Tag) {
	this.logger.Info().
		Str("entity", entityType).
		Str("id", id).
		Str("tag", string(tag)).
		Msg("edit-protocol transition")
}

// NullJournal discards every entry; used when no journal is
// configured.
type NullJournal struct{}

func (NullJournal) WriteLog(entityType, id string, tag Tag) {}
