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

// Package wavwriter allows writing of the values sent to a core's output port
// to disk as a WAV file. Each value is a single 16 bit sample. Note that
// samples are buffered in memory in their entirity, and written to disk when
// End() is called.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/environment"
)

// DefaultSampleRate is used if the sample rate given to New() is zero.
const DefaultSampleRate = 8000

// WavWriter collects samples for a WAV file.
type WavWriter struct {
	filename string
	rate     int
	buffer   []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, rate int) (*WavWriter, error) {
	if filename == "" {
		return nil, curated.Errorf("wavwriter: %v", "no filename")
	}
	if rate == 0 {
		rate = DefaultSampleRate
	}
	if rate < 0 {
		return nil, curated.Errorf("wavwriter: %v", "sample rate cannot be negative")
	}

	return &WavWriter{
		filename: filename,
		rate:     rate,
	}, nil
}

// Write values from an output port. The low 16 bits of each value is a
// signed sample.
func (aw *WavWriter) Write(values []uint32) {
	for _, v := range values {
		aw.buffer = append(aw.buffer, int(int16(v)))
	}
}

// Samples returns the number of samples collected.
func (aw *WavWriter) Samples() int {
	return len(aw.buffer)
}

// End writes the collected samples to disk.
func (aw *WavWriter) End(env *environment.Environment) (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, aw.rate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  aw.rate,
		},
		Data:           aw.buffer,
		SourceBitDepth: 16,
	}

	err = enc.Write(buf)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	err = enc.Close()
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	env.Log.Logf(env, "wavwriter", "%d samples written to %s", len(aw.buffer), aw.filename)

	return nil
}
