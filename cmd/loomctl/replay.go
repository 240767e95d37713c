package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/loomkit/loom/pkg/bridge"
)

// replayCmd replays a captured bridge frame log offline: a file containing
// consecutive wire frames (the same 4-byte-header format Session writes to
// its websocket connection), printed one summary line per frame. It reads
// no connection and mutates no session; this is a log viewer, not a
// resimulation.
func replayCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Print a captured bridge frame log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("loomctl: %w", err)
			}
			defer f.Close()
			return replayFrames(f, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every op in each batch")
	return cmd
}

func replayFrames(r io.Reader, verbose bool) error {
	n := 0
	for {
		frame, err := bridge.ReadFrame(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("loomctl: frame %d: %w", n, err)
		}
		n++
		if err := printFrame(n, frame, verbose); err != nil {
			errorMsg("frame %d: %v", n, err)
		}
	}
	success("replayed %d frames", n)
	return nil
}

func printFrame(n int, frame *bridge.Frame, verbose bool) error {
	switch frame.Type {
	case bridge.FrameBatch:
		batch, err := bridge.DecodeBatch(frame.Payload)
		if err != nil {
			return err
		}
		info("%4d  Batch  seq=%d  ops=%d", n, batch.Seq, len(batch.Ops))
		if verbose {
			for _, op := range batch.Ops {
				info("         %s view=%d type=%q", op.Kind, op.ViewID, op.Type)
			}
		}
	case bridge.FrameEvent:
		ev, err := bridge.DecodeEvent(frame.Payload)
		if err != nil {
			return err
		}
		info("%4d  Event  seq=%d  view=%d  name=%q", n, ev.Seq, ev.ViewID, ev.Name)
	case bridge.FrameAck:
		ack, err := bridge.DecodeAck(frame.Payload)
		if err != nil {
			return err
		}
		info("%4d  Ack    last_seq=%d  window=%d", n, ack.LastSeq, ack.Window)
	case bridge.FrameError:
		em, err := bridge.DecodeErrorMessage(frame.Payload)
		if err != nil {
			return err
		}
		info("%4d  Error  code=%s  message=%q", n, em.Code, em.Message)
	case bridge.FrameControl:
		ct, payload, err := bridge.DecodeControl(frame.Payload)
		if err != nil {
			return err
		}
		info("%4d  Control  type=%v  payload=%v", n, ct, payload)
	default:
		info("%4d  %s  (%d bytes)", n, frame.Type, len(frame.Payload))
	}
	return nil
}
