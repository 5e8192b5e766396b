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

package wavwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/jetsetilly/idleloop/environment"
	"github.com/jetsetilly/idleloop/test"
	"github.com/jetsetilly/idleloop/wavwriter"
)

func TestWavWriter(t *testing.T) {
	_, err := wavwriter.New("", 0)
	test.ExpectFailure(t, err)

	_, err = wavwriter.New("x.wav", -1)
	test.ExpectFailure(t, err)

	fn := filepath.Join(t.TempDir(), "out.wav")
	aw, err := wavwriter.New(fn, 0)
	test.DemandSuccess(t, err)

	aw.Write([]uint32{0, 100, 0xffff, 0x18000})
	test.ExpectEquality(t, aw.Samples(), 4)

	env := environment.NewEnvironment("test", nil)
	test.DemandSuccess(t, aw.End(env))

	f, err := os.Open(fn)
	test.DemandSuccess(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, dec.SampleRate, uint32(wavwriter.DefaultSampleRate))
	test.ExpectEquality(t, dec.BitDepth, uint16(16))
	test.DemandEquality(t, len(buf.Data), 4)
	test.ExpectEquality(t, buf.Data[0], 0)
	test.ExpectEquality(t, buf.Data[1], 100)
	test.ExpectEquality(t, buf.Data[2], -1)
	test.ExpectEquality(t, buf.Data[3], -32768)
}
