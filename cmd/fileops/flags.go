package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/fileops/internal/filter"
	"github.com/bamsammich/fileops/internal/stats"
)

// sizeFlag is a pflag.Value accepting human-readable sizes like 64K or 1.5G.
type sizeFlag struct {
	raw string
	n   int64
}

func (s *sizeFlag) String() string {
	if s.raw == "" {
		return ""
	}
	return stats.FormatBytes(s.n)
}

func (*sizeFlag) Type() string { return "size" }

func (s *sizeFlag) Set(val string) error {
	n, err := filter.ParseSize(val)
	if err != nil {
		return err
	}
	s.raw, s.n = val, n
	return nil
}

var (
	_ pflag.Value = (*sizeFlag)(nil)
	_ pflag.Value = (*filterFlag)(nil)
)

// filterFlag is a pflag.Value that preserves CLI ordering of --exclude and
// --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// treeFlags are the selection flags shared by commands that walk trees.
type treeFlags struct {
	chain      *filter.Chain
	filterFile string
	minSize    sizeFlag
	maxSize    sizeFlag
	recursive  bool
}

func (t *treeFlags) register(cmd *cobra.Command) {
	t.chain = filter.NewChain()
	f := cmd.Flags()
	f.BoolVarP(&t.recursive, "recursive", "r", false, "descend into subdirectories")
	f.Var(&filterFlag{chain: t.chain}, "exclude", "exclude paths matching PATTERN (repeatable)")
	f.Var(&filterFlag{chain: t.chain, include: true}, "include", "include paths matching PATTERN (repeatable)")
	f.StringVar(&t.filterFile, "filter", "", "read filter rules from FILE")
	f.Var(&t.minSize, "min-size", "skip files smaller than SIZE")
	f.Var(&t.maxSize, "max-size", "skip files larger than SIZE")
}

// build returns the command-line rules followed by the config file's. A
// chain with no rules is returned as nil.
func (t *treeFlags) build(a *app) (*filter.Chain, error) {
	if t.filterFile != "" {
		if err := t.chain.LoadFile(a.fs, t.filterFile); err != nil {
			return nil, err
		}
	}
	t.chain.SetMinSize(t.minSize.n)
	t.chain.SetMaxSize(t.maxSize.n)

	fromConfig, err := a.cfg.FilterChain(a.fs)
	if err != nil {
		return nil, err
	}
	t.chain.Append(fromConfig)

	if t.chain.Empty() {
		return nil, nil
	}
	return t.chain, nil
}
