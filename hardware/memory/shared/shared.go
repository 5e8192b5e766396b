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

package shared

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jetsetilly/idleloop/curated"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
	"github.com/jetsetilly/idleloop/hardware/idle/poll"
)

// Sentinal error patterns.
const (
	AddressError     = "shared: address %#x out of range for %s access"
	RegionError      = "shared: region %s: %v"
	UnalignedAddress = "shared: unaligned %s access at %#x"
)

// Region is an area of memory with a specific event category.
type Region struct {
	Label  string
	Origin uint32
	Memtop uint32
	Event  events.SysEvent
}

func (r Region) String() string {
	return fmt.Sprintf("%#06x -> %#06x\t%s (%s)", r.Origin, r.Memtop, r.Label, r.Event)
}

func (r Region) contains(addr uint32) bool {
	return addr >= r.Origin && addr <= r.Memtop
}

// Memory is byte addressed memory with event notification of writes.
type Memory struct {
	reg     *poll.Registry
	data    []uint8
	regions []Region
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory(reg *poll.Registry, size int) *Memory {
	return &Memory{
		reg:  reg,
		data: make([]uint8, size),
	}
}

// Size returns the number of bytes in memory.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// String returns the memory map.
func (mem *Memory) String() string {
	s := strings.Builder{}
	for _, r := range mem.regions {
		s.WriteString(r.String())
		s.WriteString("\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

// AddRegion adds an area of memory with an event category. Regions must not
// overlap.
func (mem *Memory) AddRegion(label string, origin uint32, memtop uint32, ev events.SysEvent) error {
	if memtop < origin {
		return curated.Errorf(RegionError, label, "memtop is before origin")
	}
	if int(memtop) >= len(mem.data) {
		return curated.Errorf(RegionError, label, "memtop is beyond end of memory")
	}
	for _, r := range mem.regions {
		if origin <= r.Memtop && r.Origin <= memtop {
			return curated.Errorf(RegionError, label, fmt.Sprintf("overlaps %s", r.Label))
		}
	}
	mem.regions = append(mem.regions, Region{
		Label:  label,
		Origin: origin,
		Memtop: memtop,
		Event:  ev,
	})
	return nil
}

// Category returns the event category of the address.
func (mem *Memory) Category(addr uint32) events.SysEvent {
	for _, r := range mem.regions {
		if r.contains(addr) {
			return r.Event
		}
	}
	return events.SharedMemory
}

func (mem *Memory) check(addr uint32, size poll.Size) error {
	if uint64(addr)+uint64(size) > uint64(len(mem.data)) {
		return curated.Errorf(AddressError, addr, size)
	}
	if addr%uint32(size) != 0 {
		return curated.Errorf(UnalignedAddress, size, addr)
	}
	return nil
}

func (mem *Memory) load(addr uint32, size poll.Size) uint32 {
	var v uint32
	for i := uint32(0); i < uint32(size); i++ {
		v = v<<8 | uint32(mem.data[addr+i])
	}
	return v
}

func (mem *Memory) store(addr uint32, size poll.Size, value uint32) {
	for i := int(size) - 1; i >= 0; i-- {
		mem.data[addr+uint32(i)] = uint8(value)
		value >>= 8
	}
}

// Read a value from memory.
func (mem *Memory) Read(addr uint32, size poll.Size) (uint32, error) {
	if err := mem.check(addr, size); err != nil {
		return 0, err
	}
	return mem.load(addr, size), nil
}

// Write a value to memory. Any core polling an address touched by the write
// is sent the event category of the region.
func (mem *Memory) Write(addr uint32, size poll.Size, value uint32) error {
	if err := mem.check(addr, size); err != nil {
		return err
	}
	mem.store(addr, size, value&size.Mask())
	mem.reg.NotifyWrite(addr, size, mem.Category(addr))
	return nil
}

// Peek implements the poll.Memory interface. The value is read directly from
// memory.
func (mem *Memory) Peek(addr uint32, size poll.Size) (uint32, bool) {
	if mem.check(addr, size) != nil {
		return 0, false
	}
	return mem.load(addr, size), true
}

// Poke writes a value without notifying the registry. Only suitable for
// initialising memory before the emulation starts.
func (mem *Memory) Poke(addr uint32, size poll.Size, value uint32) error {
	if err := mem.check(addr, size); err != nil {
		return err
	}
	mem.store(addr, size, value&size.Mask())
	return nil
}

// Load copies data into memory without notifying the registry.
func (mem *Memory) Load(origin uint32, data []uint8) error {
	if uint64(origin)+uint64(len(data)) > uint64(len(mem.data)) {
		return curated.Errorf(AddressError, origin, fmt.Sprintf("%d byte load", len(data)))
	}
	copy(mem.data[origin:], data)
	return nil
}

// DMA copies n bytes from src to dst. Cores polling an address in the
// destination range are sent the DMA event.
func (mem *Memory) DMA(dst uint32, src uint32, n int) error {
	if n <= 0 {
		return nil
	}
	if uint64(src)+uint64(n) > uint64(len(mem.data)) {
		return curated.Errorf(AddressError, src, "dma source")
	}
	if uint64(dst)+uint64(n) > uint64(len(mem.data)) {
		return curated.Errorf(AddressError, dst, "dma destination")
	}
	copy(mem.data[dst:dst+uint32(n)], mem.data[src:src+uint32(n)])
	mem.reg.NotifyRange(dst, uint32(n), events.DMA)
	return nil
}

// Clear sets every byte of memory to zero. The registry is not notified.
func (mem *Memory) Clear() {
	clear(mem.data)
}

// Bytes returns a copy of the memory contents.
func (mem *Memory) Bytes() []uint8 {
	return slices.Clone(mem.data)
}
