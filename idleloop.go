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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jetsetilly/idleloop/modalflag"
	"github.com/jetsetilly/idleloop/version"
)

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"
)

type stateRequest struct {
	req  stateReq
	args interface{}
}

// communication between the main() function and the launch() function.
type mainSync struct {
	state chan stateRequest

	// cancelled on the first interrupt signal. the emulation should stop at
	// the next opportunity
	ctx context.Context
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sync := &mainSync{
		state: make(chan stateRequest),
		ctx:   ctx,
	}

	// the value to use with os.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	go launch(sync)

	// the first interrupt asks the launched mode to finish. a second
	// interrupt quits immediately
	done := false
	for !done {
		select {
		case <-intChan:
			fmt.Print("\r")
			if ctx.Err() != nil {
				done = true
				exitVal = 30
			}
			cancel()

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}
			}
		}
	}

	os.Exit(exitVal)
}

// launch is called from main() as a goroutine.
func launch(sync *mainSync) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])

	err := dispatch(sync.ctx, md)
	if err != nil {
		if md.Mode() == "" {
			fmt.Printf("* error: %v\n", err)
			sync.state <- stateRequest{req: reqQuit, args: 10}
			return
		}
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

// dispatch selects the mode from the arguments already given to the Modes
// instance and runs it.
func dispatch(ctx context.Context, md *modalflag.Modes) error {
	md.AddSubModes("RUN", "SCENARIO", "PERFORMANCE")
	md.AdditionalHelp(version.Banner())
	showVersion := md.AddBool("version", false, "print version information and exit")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return nil
	case modalflag.ParseError:
		return err
	}

	if *showVersion {
		fmt.Fprintln(md.Output, version.Banner())
		return nil
	}

	switch md.Mode() {
	case "RUN":
		err = run(ctx, md)
	case "SCENARIO":
		err = scenarios(ctx, md)
	case "PERFORMANCE":
		err = perform(md)
	}

	return err
}
