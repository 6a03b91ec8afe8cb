// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package verbs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/bureau-foundation/netsim/lib/endpoint"
	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/fsops"
	"github.com/bureau-foundation/netsim/lib/identity"
	"github.com/bureau-foundation/netsim/lib/jobstore"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

// Sessions opens login sessions.
type Sessions interface {
	Login(nodeID, userID, password string) (identity.Session, error)
}

// Jobs looks up background jobs.
type Jobs interface {
	Job(ctx context.Context, id execengine.JobID) (jobstore.Job, error)
}

// Limits are the default size caps applied when a call does not pass
// its own. Zero is unlimited.
type Limits struct {
	MaxReadBytes   int64
	MaxWriteBytes  int64
	MaxOutputBytes int64
}

// Deps are the components verbs dispatch to. Every field but Logger is
// required.
type Deps struct {
	FS       *fsops.Ops
	Engine   *execengine.Engine
	Sessions Sessions
	Jobs     Jobs
	Limits   Limits
	Logger   *slog.Logger
}

// Request is one verb invocation.
type Request struct {
	// Context is the ambient execution context used when Handle is
	// absent.
	Context endpoint.Context

	// Handle is the raw session-or-route value: nil, a handle map, an
	// identity.Session, an identity.Route or an endpoint.Handle.
	Handle any

	// Mode must be set for verbs that can mutate state.
	Mode vfs.CommitMode

	// Args are the verb's positional arguments.
	Args []string

	// Options are the verb's named options.
	Options map[string]any
}

// optionKind is the type an option value must have.
type optionKind uint8

const (
	optionBool optionKind = iota
	optionInt
	optionString
)

func (k optionKind) String() string {
	switch k {
	case optionBool:
		return "boolean"
	case optionInt:
		return "integer"
	default:
		return "string"
	}
}

// verb is one registered operation.
type verb struct {
	name        string
	description string

	// args names the positional arguments; the first minArgs are
	// required.
	args    []string
	minArgs int

	options map[string]optionKind

	// mutates verbs require a valid Request.Mode.
	mutates bool

	run func(ctx context.Context, call *call) (any, error)
}

// Registry dispatches verbs. Safe for concurrent use once built.
type Registry struct {
	deps   Deps
	logger *slog.Logger
	verbs  map[string]*verb
	names  []string
}

// New builds the registry over deps.
func New(deps Deps) (*Registry, error) {
	if deps.FS == nil || deps.Engine == nil || deps.Sessions == nil || deps.Jobs == nil {
		return nil, fmt.Errorf("verbs: FS, Engine, Sessions and Jobs are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := &Registry{deps: deps, logger: logger, verbs: map[string]*verb{}}
	for _, v := range registry.builtinVerbs() {
		registry.verbs[v.name] = v
		registry.names = append(registry.names, v.name)
	}
	slices.Sort(registry.names)
	return registry, nil
}

// Names returns the registered verb names in lexical order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Describe returns a one-line usage string for a verb.
func (r *Registry) Describe(name string) (string, bool) {
	v, ok := r.verbs[name]
	if !ok {
		return "", false
	}
	var usage strings.Builder
	usage.WriteString(v.name)
	for index, arg := range v.args {
		if index < v.minArgs {
			fmt.Fprintf(&usage, " <%s>", arg)
		} else {
			fmt.Fprintf(&usage, " [%s]", arg)
		}
	}
	keys := make([]string, 0, len(v.options))
	for key := range v.options {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(&usage, " [%s=%s]", key, v.options[key])
	}
	return usage.String() + ": " + v.description, true
}

// Call runs the named verb. Failures, including an unknown verb, are
// returned in the envelope.
func (r *Registry) Call(ctx context.Context, name string, request Request) result.Envelope {
	v, ok := r.verbs[name]
	if !ok {
		return result.Failure(result.Invalid("unknown verb %q", name))
	}
	c, err := r.bind(v, request)
	if err != nil {
		return result.Failure(err)
	}
	data, err := v.run(ctx, c)
	if err != nil {
		r.logger.Debug("verb failed", "verb", name, "code", result.CodeOf(err), "error", err)
	}
	return result.From(data, err)
}

// call is a validated request.
type call struct {
	registry *Registry
	ambient  endpoint.Context
	handle   endpoint.Handle
	mode     vfs.CommitMode
	args     []string
	options  map[string]any
}

// bind validates request against v's declaration.
func (r *Registry) bind(v *verb, request Request) (*call, error) {
	if len(request.Args) < v.minArgs || len(request.Args) > len(v.args) {
		if v.minArgs == len(v.args) {
			return nil, result.Invalid("%s takes %d argument(s), got %d", v.name, len(v.args), len(request.Args))
		}
		return nil, result.Invalid("%s takes %d to %d arguments, got %d", v.name, v.minArgs, len(v.args), len(request.Args))
	}

	options := make(map[string]any, len(request.Options))
	for key, value := range request.Options {
		kind, ok := v.options[key]
		if !ok {
			return nil, result.Invalid("%s does not accept option %q", v.name, key)
		}
		normalized, err := normalizeOption(kind, value)
		if err != nil {
			return nil, result.Invalid("%s option %q: %v", v.name, key, err)
		}
		options[key] = normalized
	}

	if v.mutates && !request.Mode.Valid() {
		return nil, result.Invalid("%s requires a commit mode", v.name)
	}

	handle, err := endpoint.ParseHandle(request.Handle)
	if err != nil {
		return nil, err
	}

	return &call{
		registry: r,
		ambient:  request.Context,
		handle:   handle,
		mode:     request.Mode,
		args:     request.Args,
		options:  options,
	}, nil
}

// ParseOptions converts textual key=value options, as typed on a
// command line, to the types the named verb declares. Booleans accept
// the strconv.ParseBool spellings.
func (r *Registry) ParseOptions(name string, raw map[string]string) (map[string]any, error) {
	v, ok := r.verbs[name]
	if !ok {
		return nil, result.Invalid("unknown verb %q", name)
	}
	options := make(map[string]any, len(raw))
	for key, text := range raw {
		kind, ok := v.options[key]
		if !ok {
			return nil, result.Invalid("%s does not accept option %q", v.name, key)
		}
		switch kind {
		case optionBool:
			b, err := strconv.ParseBool(text)
			if err != nil {
				return nil, result.Invalid("%s option %q: want boolean, got %q", v.name, key, text)
			}
			options[key] = b
		case optionInt:
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return nil, result.Invalid("%s option %q: want integer, got %q", v.name, key, text)
			}
			options[key] = n
		default:
			options[key] = text
		}
	}
	return options, nil
}

// normalizeOption checks value against kind. Integers arrive as any Go
// integer type or as an integral float64 (the shape decoded JSON
// takes).
func normalizeOption(kind optionKind, value any) (any, error) {
	switch kind {
	case optionBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case optionString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case optionInt:
		switch n := value.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case uint32:
			return int64(n), nil
		case float64:
			if n == math.Trunc(n) && math.Abs(n) <= 1<<53 {
				return int64(n), nil
			}
		}
	}
	return nil, fmt.Errorf("want %s, got %T", kind, value)
}

func (c *call) arg(index int) string {
	if index < len(c.args) {
		return c.args[index]
	}
	return ""
}

func (c *call) boolOption(key string) bool {
	b, _ := c.options[key].(bool)
	return b
}

// intOption returns the option, or fallback when it was not passed.
func (c *call) intOption(key string, fallback int64) int64 {
	if n, ok := c.options[key].(int64); ok {
		return n
	}
	return fallback
}

func (c *call) stringOption(key string) string {
	s, _ := c.options[key].(string)
	return s
}
