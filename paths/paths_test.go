// This file is part of Idleloop.
//
// Idleloop is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Idleloop is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Idleloop.  If not, see <https://www.gnu.org/licenses/>.

package paths_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/idleloop/paths"
	"github.com/jetsetilly/idleloop/test"
)

func TestResourcePath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, os.Chdir(dir))
	defer os.Chdir(wd)

	// local resource directory takes priority
	test.DemandSuccess(t, os.Mkdir(".idleloop", 0o700))

	pth, err := paths.ResourcePath("foo", "bar")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".idleloop", "foo", "bar"))

	_, err = os.Stat(filepath.Join(".idleloop", "foo"))
	test.ExpectSuccess(t, err)

	pth, err = paths.ResourcePath("", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".idleloop", "baz"))
}

func TestUniqueFilename(t *testing.T) {
	fn := paths.UniqueFilename("memviz", "poll", ".dot")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "memviz_poll_"))
	test.ExpectSuccess(t, strings.HasSuffix(fn, ".dot"))

	fn = paths.UniqueFilename("memviz", " ", ".dot")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "memviz_2"))
}
