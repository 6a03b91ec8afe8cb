// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/netsim/cmd/netsim/cli"
	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/verbs"
)

type callParams struct {
	worldParams
	targetParams
	Options []string `flag:"opt,o" desc:"verb option as key=value; repeatable"`
	Wait    bool     `flag:"wait" desc:"after exec.start, wait for the job and print it"`
}

func callCommand(streams IO) *cli.Command {
	var params callParams
	return &cli.Command{
		Name:    "call",
		Summary: "Run one verb",
		Description: `Run one verb against a freshly loaded world and print its result.
Mutating verbs commit unless --dry-run is given. Run 'netsim verbs'
for the verb list.`,
		Usage: "netsim call <verb> [args...] [flags]",
		Examples: []cli.Example{
			{
				Description: "Read a file as ana on the gateway",
				Command:     "netsim call fs.read /etc/motd -s lab.yaml -n gateway -u ana",
			},
			{
				Description: "Preview a write without committing it",
				Command:     "netsim call fs.write notes.txt hello -s lab.yaml -n gateway -u ana --dry-run -o overwrite=true",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("call", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("verb required\n\nRun 'netsim verbs' for the list.")
			}
			return withRuntime(params.worldParams, streams, func(ctx context.Context, rt *runtime) error {
				request, err := rt.request(params.targetParams, args[1:], params.Options, args[0])
				if err != nil {
					return emitError(streams, params.JSON, err)
				}
				return emit(streams, params.JSON, rt.call(ctx, args[0], request, params.Wait))
			})
		},
	}
}

// withRuntime opens the world for one command and closes it after fn,
// also on interrupt.
func withRuntime(params worldParams, streams IO, fn func(context.Context, *runtime) error) error {
	rt, err := openRuntime(params, streams)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runErr := fn(ctx, rt)
	closeErr := rt.Close()
	var exitErr *cli.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return errors.Join(runErr, closeErr)
	}
	if closeErr != nil {
		return closeErr
	}
	return runErr
}

// request builds a verb request from target flags and raw options.
func (rt *runtime) request(target targetParams, args, rawOptions []string, verb string) (verbs.Request, error) {
	ambient, err := target.ambient(rt.world)
	if err != nil {
		return verbs.Request{}, err
	}
	handle, err := target.handle()
	if err != nil {
		return verbs.Request{}, err
	}
	pairs, err := splitOptions(rawOptions)
	if err != nil {
		return verbs.Request{}, err
	}
	options, err := rt.registry.ParseOptions(verb, pairs)
	if err != nil {
		return verbs.Request{}, err
	}
	return verbs.Request{
		Context: ambient,
		Handle:  handle,
		Mode:    target.mode(),
		Args:    args,
		Options: options,
	}, nil
}

// call runs verb. With wait, a started job is awaited and its final
// record returned in place of the start receipt.
func (rt *runtime) call(ctx context.Context, verb string, request verbs.Request, wait bool) result.Envelope {
	envelope := rt.registry.Call(ctx, verb, request)
	if !wait || !envelope.OK {
		return envelope
	}
	started, ok := envelope.Data.(execengine.StartOutput)
	if !ok {
		return envelope
	}
	if _, err := rt.world.WaitJob(ctx, started.JobID); err != nil {
		return result.Failure(result.Wrap(result.InternalError, err, "waiting for %s", started.JobID))
	}
	return rt.registry.Call(ctx, "job.get", verbs.Request{Args: []string{string(started.JobID)}})
}

// emitError reports a coded error as a failed envelope; any other
// error is returned for main to print.
func emitError(streams IO, asJSON bool, err error) error {
	var coded *result.Error
	if errors.As(err, &coded) {
		return emit(streams, asJSON, result.Failure(err))
	}
	return err
}

// emit prints envelope. A failed envelope becomes exit status 1.
func emit(streams IO, asJSON bool, envelope result.Envelope) error {
	if !asJSON {
		return streams.printer().Envelope(envelope)
	}
	if err := cli.WriteJSON(streams.Out, envelope); err != nil {
		return err
	}
	if !envelope.OK {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
