package core

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Hayser8/laboratorio3redes/protocol"
	"github.com/Hayser8/laboratorio3redes/state"
)

// Console exposes the interactive command surface on stdin. All state reads
// and mutations go through the main loop via DispatchWait.
type Console struct{}

const consoleHelp = `commands:
  send <dest> <text>   send data via the next-hop table
  table                print the next-hop table
  route <dest>         print the full shortest path
  peers                print the neighbour table
  ttl <n>              set the default outgoing ttl
  lsdb                 dump the link-state database
  lsp                  force re-origination now
  help                 show this help
  quit                 exit`

func (c *Console) Init(s *state.State) error {
	go consoleLoop(s.Env)
	return nil
}

func (c *Console) Cleanup(s *state.State) error {
	return nil
}

func consoleLoop(e *state.Env) {
	fmt.Println(consoleHelp)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if e.Context.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out, err := runCommand(e, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}

func runCommand(e *state.Env, line string) (string, error) {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	switch cmd {
	case "help":
		return consoleHelp, nil
	case "quit":
		e.Cancel(fmt.Errorf("console quit"))
		return "", nil
	case "send":
		if len(parts) < 3 {
			return "", fmt.Errorf("usage: send <dest> <text>")
		}
		return dispatchString(e, func(s *state.State) (string, error) {
			return cmdSend(s, state.Node(parts[1]), strings.Join(parts[2:], " "))
		})
	case "table":
		return dispatchString(e, cmdTable)
	case "route":
		if len(parts) != 2 {
			return "", fmt.Errorf("usage: route <dest>")
		}
		return dispatchString(e, func(s *state.State) (string, error) {
			return cmdRoute(s, state.Node(parts[1]))
		})
	case "peers":
		return dispatchString(e, cmdPeers)
	case "ttl":
		if len(parts) != 2 {
			return "", fmt.Errorf("usage: ttl <n>")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("ttl must be a positive integer")
		}
		return dispatchString(e, func(s *state.State) (string, error) {
			Get[*Router](s).DefaultTtl = n
			return fmt.Sprintf("default ttl set to %d", n), nil
		})
	case "lsdb":
		return dispatchString(e, func(s *state.State) (string, error) {
			return Get[*Router](s).Lsdb.Dump(time.Now()), nil
		})
	case "lsp":
		return dispatchString(e, func(s *state.State) (string, error) {
			return "", originateLsp(s)
		})
	}
	return "", fmt.Errorf("unknown command %q, type 'help'", cmd)
}

func dispatchString(e *state.Env, fun func(s *state.State) (string, error)) (string, error) {
	res, err := e.DispatchWait(func(s *state.State) (any, error) {
		return fun(s)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func cmdSend(s *state.State, dest state.Node, text string) (string, error) {
	r := Get[*Router](s)
	if dest == s.Id {
		return "destination is self: " + text, nil
	}
	nh, ok := r.NextHops[dest]
	if !ok {
		return fmt.Sprintf("no route to %s", dest), nil
	}
	nb := s.GetNeighbour(nh.Via)
	if nb == nil {
		return fmt.Sprintf("no route to %s", dest), nil
	}
	pkt := protocol.NewData(s.Id, dest, text, r.DefaultTtl)
	pkt.Headers.LastHop = s.Id
	sendToNeighbour(s, nb, pkt)
	return fmt.Sprintf("sent to %s via %s", dest, nh.Via), nil
}

func cmdTable(s *state.State) (string, error) {
	r := Get[*Router](s)
	if len(r.NextHops) == 0 {
		return "(empty table)", nil
	}
	return r.StringTable(s.Id), nil
}

func cmdRoute(s *state.State, dest state.Node) (string, error) {
	r := Get[*Router](s)
	path := walkPath(r.Prev, s.Id, dest)
	if path == nil {
		return fmt.Sprintf("no path to %s", dest), nil
	}
	hops := make([]string, 0, len(path))
	for _, n := range path {
		hops = append(hops, string(n))
	}
	return strings.Join(hops, " -> "), nil
}

func cmdPeers(s *state.State) (string, error) {
	lines := make([]string, 0, len(s.Neighbours))
	for _, nb := range s.Neighbours {
		rtt := "-"
		if nb.LastRttMs > 0 {
			rtt = fmt.Sprintf("%.2fms", nb.LastRttMs)
		}
		up := "down"
		if nb.BestLink() != nil {
			up = "up"
		}
		lines = append(lines, fmt.Sprintf(" - %s %s cost=%g rtt=%s links=%d", nb.Id, up, nb.Cost, rtt, len(nb.Links)))
	}
	slices.Sort(lines)
	return strings.Join(lines, "\n"), nil
}
