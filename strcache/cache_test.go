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

package strcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternDedupes(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Len())

	a := c.Intern("deposit")
	b := c.Intern("deposit")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, c.Len())

	c.Intern("withdrawal")
	assert.Equal(t, 2, c.Len())
}

func TestInternEmptyStringNotCached(t *testing.T) {
	c := New()
	assert.Equal(t, "", c.Intern(""))
	assert.Equal(t, 0, c.Len())
}
