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

package programs

import (
	"fmt"

	"github.com/jetsetilly/idleloop/hardware"
	"github.com/jetsetilly/idleloop/hardware/cpu/spin"
	"github.com/jetsetilly/idleloop/hardware/idle/events"
)

// Addresses used by the mailbox programs.
const (
	Mailbox   = 0x0080
	Count     = 0x0084
	Consumer  = 0x0400
	Producer  = 0x0500
	Handler   = 0x0580
	TimerName = "producer timer"
)

// the consumer waits for a non-zero value in the mailbox, counts it and then
// clears the mailbox.
const consumer = `
	.equ mailbox, %d
	.equ count, %d
wait:	ldw r0, mailbox
	cmpi r0, 0
	beq wait
	ldw r1, count
	addi r1, 1
	stw r1, count
	movi r0, 0
	stw r0, mailbox
	bra wait
`

// the producer idles until an interrupt and posts a value to the mailbox in
// the interrupt handler.
const producer = `
	.equ mailbox, %d
idle:	bra idle
	.org %d
handler:	addi r2, 1
	stw r2, mailbox
	rti
`

// MailboxConfig specifies the cores and the timer period for the mailbox
// programs.
type MailboxConfig struct {
	Consumer events.CoreID
	Producer events.CoreID

	// number of cycles between producer interrupts
	Period int
}

// LoadMailbox installs the consumer and producer programs into the machine
// and schedules the producer's timer interrupt.
func LoadMailbox(m *hardware.Machine, cfg MailboxConfig) error {
	if cfg.Period == 0 {
		cfg.Period = 500
	}

	c, err := spin.Assemble(Consumer, fmt.Sprintf(consumer, Mailbox, Count))
	if err != nil {
		return err
	}
	p, err := spin.Assemble(Producer, fmt.Sprintf(producer, Mailbox, Handler))
	if err != nil {
		return err
	}

	if err := m.Load(cfg.Consumer, c); err != nil {
		return err
	}
	if err := m.Load(cfg.Producer, p); err != nil {
		return err
	}
	if err := m.SetVector(cfg.Producer, Handler); err != nil {
		return err
	}

	return m.ScheduleInterrupt(TimerName, cfg.Period, cfg.Producer)
}
