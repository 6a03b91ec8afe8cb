// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/netsim/lib/execengine"
	"github.com/bureau-foundation/netsim/lib/fsops"
	"github.com/bureau-foundation/netsim/lib/result"
	"github.com/bureau-foundation/netsim/lib/verbs"
	"github.com/bureau-foundation/netsim/lib/vfs"
)

// WriteJSON writes value as indented JSON. A nil slice is written as
// [] rather than null.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(normalizeNilSlice(value))
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}

// Printer renders envelopes for people. Color is used only when the
// writers are terminals that support it.
type Printer struct {
	stdout io.Writer
	stderr io.Writer

	ok        lipgloss.Style
	failure   lipgloss.Style
	code      lipgloss.Style
	directory lipgloss.Style
	faint     lipgloss.Style
}

// NewPrinter returns a Printer writing payloads to stdout and failures
// to stderr.
func NewPrinter(stdout, stderr io.Writer) *Printer {
	out := lipgloss.NewRenderer(stdout)
	errs := lipgloss.NewRenderer(stderr)
	return &Printer{
		stdout:    stdout,
		stderr:    stderr,
		ok:        out.NewStyle().Foreground(lipgloss.Color("2")),
		failure:   errs.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		code:      errs.NewStyle().Foreground(lipgloss.Color("1")),
		directory: out.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		faint:     out.NewStyle().Faint(true),
	}
}

// Envelope prints envelope and returns an *ExitError with code 1 when
// it carries a failure.
func (p *Printer) Envelope(envelope result.Envelope) error {
	if !envelope.OK {
		reason := ""
		if envelope.Err != nil {
			reason = *envelope.Err
		}
		fmt.Fprintf(p.stderr, "%s %s %s\n", p.failure.Render("error"), p.code.Render("["+string(envelope.Code)+"]"), reason)
		return &ExitError{Code: 1}
	}
	return p.Data(envelope.Data)
}

// Data prints a successful payload. Known payload types get a compact
// rendering; anything else is printed as JSON.
func (p *Printer) Data(data any) error {
	w := p.stdout
	switch value := data.(type) {
	case nil:
		fmt.Fprintln(w, p.ok.Render("ok"))
	case execengine.RunOutput:
		for _, line := range value.Lines {
			fmt.Fprintln(w, line)
		}
		p.mode(value.Mode)
	case execengine.StartOutput:
		fmt.Fprintf(w, "%s %s\n", p.ok.Render("started"), value.JobID)
		p.mode(value.Mode)
	case fsops.ReadResult:
		fmt.Fprint(w, value.Text)
		if value.Text != "" && !strings.HasSuffix(value.Text, "\n") {
			fmt.Fprintln(w)
		}
	case []fsops.DirEntry:
		for _, entry := range value {
			if entry.EntryKind == "dir" {
				fmt.Fprintln(w, p.directory.Render(entry.Name+"/"))
				continue
			}
			fmt.Fprintln(w, entry.Name)
		}
	case fsops.StatInfo:
		p.stat(value)
	case fsops.WriteResult:
		verb := "replaced"
		if value.Created {
			verb = "created"
		}
		for _, directory := range value.CreatedDirectories {
			fmt.Fprintf(w, "%s %s/\n", p.ok.Render("created"), directory)
		}
		fmt.Fprintf(w, "%s %s\n", p.ok.Render(verb), value.Stat.Path)
		p.mode(value.Mode)
	case fsops.DeleteResult:
		fmt.Fprintf(w, "%s %s\n", p.ok.Render("deleted"), value.Path)
		p.mode(value.Mode)
	case verbs.JobInfo:
		p.job(value)
	default:
		return WriteJSON(w, data)
	}
	return nil
}

func (p *Printer) stat(info fsops.StatInfo) {
	w := p.stdout
	fmt.Fprintf(w, "path:  %s\n", info.Path)
	fmt.Fprintf(w, "kind:  %s\n", info.EntryKind)
	if info.FileKind != nil {
		fmt.Fprintf(w, "file:  %s\n", *info.FileKind)
	}
	if info.Size != nil {
		fmt.Fprintf(w, "size:  %d\n", *info.Size)
	}
	if info.ContentID != nil {
		fmt.Fprintf(w, "id:    %s\n", *info.ContentID)
	}
}

func (p *Printer) job(info verbs.JobInfo) {
	w := p.stdout
	fmt.Fprintf(w, "job:   %s\n", info.JobID)
	fmt.Fprintf(w, "state: %s\n", info.State)
	if info.ExitCode != nil {
		fmt.Fprintf(w, "exit:  %d\n", *info.ExitCode)
	}
	if info.ErrorCode != "" {
		fmt.Fprintf(w, "code:  %s\n", info.ErrorCode)
	}
	for _, line := range info.Output {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// mode notes a dry run so it is not mistaken for a real change.
func (p *Printer) mode(mode string) {
	if mode == vfs.DryRun.String() {
		fmt.Fprintln(p.stdout, p.faint.Render("(dry run: nothing was committed)"))
	}
}
