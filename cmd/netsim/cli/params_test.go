// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

type embeddedParams struct {
	Node string `flag:"node,n" desc:"node"`
}

func TestBindFlags(t *testing.T) {
	t.Parallel()
	type params struct {
		embeddedParams
		DryRun   bool          `flag:"dry-run" desc:"dry run"`
		Limit    int           `flag:"limit" desc:"limit" default:"100"`
		MaxBytes int64         `flag:"max-bytes" desc:"cap" default:"-1"`
		Timeout  time.Duration `flag:"timeout" desc:"timeout" default:"5s"`
		Options  []string      `flag:"opt,o" desc:"options"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if p.Limit != 100 || p.MaxBytes != -1 || p.Timeout != 5*time.Second {
		t.Errorf("defaults = %d %d %v", p.Limit, p.MaxBytes, p.Timeout)
	}

	err := flagSet.Parse([]string{"-n", "gateway", "--dry-run", "--limit", "3", "-o", "a=1,2", "-o", "b=3", "rest"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Node != "gateway" || !p.DryRun || p.Limit != 3 {
		t.Errorf("parsed node=%q dryRun=%v limit=%d", p.Node, p.DryRun, p.Limit)
	}
	if strings.Join(p.Options, "|") != "a=1,2|b=3" {
		t.Errorf("Options = %q, want repeated values kept whole", p.Options)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
	if args := flagSet.Args(); len(args) != 1 || args[0] != "rest" {
		t.Errorf("Args = %v, want [rest]", args)
	}
}

func TestBindFlagsRejects(t *testing.T) {
	t.Parallel()
	var notPointer struct{}
	if err := BindFlags(notPointer, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted a non-pointer")
	}

	type badType struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&badType{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unsupported field type")
	}

	type badDefault struct {
		Limit int `flag:"limit" default:"many"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unparsable default")
	}
}
