// Package command parses launch invocations such as "ros2 launch demo robot.launch.xml x:=1".
package command

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/launchtree/pkg/ports"
	"mvdan.cc/sh/v3/shell"
)

// ErrMalformedInvocation is returned for invocations that do not follow the launch grammar.
var ErrMalformedInvocation = errors.New("malformed launch invocation")

// Argument is one "name:=value" launch argument.
type Argument struct {
	Name  string
	Value string
}

// Invocation is a parsed launch command. Either Path or Package and Fragment are set.
type Invocation struct {
	Path      string
	Package   string
	Fragment  string
	Arguments []Argument
}

// Option configures Parse.
type Option func(*parser)

type parser struct {
	getenv func(string) string
	isFile func(string) bool
}

// WithGetenv sets the lookup used to expand $VARIABLES in the command line.
func WithGetenv(fn func(string) string) Option {
	return func(p *parser) {
		p.getenv = fn
	}
}

// WithFileCheck sets the predicate deciding whether the first word is a file path.
func WithFileCheck(fn func(string) bool) Option {
	return func(p *parser) {
		p.isFile = fn
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Parse splits line with shell quoting rules and parses the words.
func Parse(line string, opts ...Option) (*Invocation, error) {
	p := &parser{getenv: os.Getenv, isFile: isRegularFile}
	for _, opt := range opts {
		opt(p)
	}
	words, err := shell.Fields(line, p.getenv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInvocation, err)
	}
	return p.parse(words)
}

// ParseWords parses an already split invocation, as received from a command line.
func ParseWords(words []string, opts ...Option) (*Invocation, error) {
	p := &parser{getenv: os.Getenv, isFile: isRegularFile}
	for _, opt := range opts {
		opt(p)
	}
	return p.parse(words)
}

func (p *parser) parse(words []string) (*Invocation, error) {
	if len(words) > 0 && words[0] == "ros2" {
		words = words[1:]
	}
	if len(words) > 0 && words[0] == "launch" {
		words = words[1:]
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: missing package or launch file", ErrMalformedInvocation)
	}

	inv := &Invocation{}
	var rest []string
	switch {
	case p.isFile(words[0]):
		inv.Path = words[0]
		rest = words[1:]
	case strings.Contains(words[0], ":="):
		return nil, fmt.Errorf("%w: expected package or launch file, got argument %q", ErrMalformedInvocation, words[0])
	case len(words) < 2 || strings.Contains(words[1], ":="):
		return nil, fmt.Errorf("%w: %q is not a file and no launch file name follows", ErrMalformedInvocation, words[0])
	default:
		inv.Package = words[0]
		inv.Fragment = words[1]
		rest = words[2:]
	}

	args, err := ParseArguments(rest)
	if err != nil {
		return nil, err
	}
	inv.Arguments = args
	return inv, nil
}

// ParseArguments parses "name:=value" words. Later duplicates replace earlier ones in place.
func ParseArguments(words []string) ([]Argument, error) {
	var out []Argument
	index := make(map[string]int)
	for _, w := range words {
		name, value, ok := strings.Cut(w, ":=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: argument %q must be name:=value", ErrMalformedInvocation, w)
		}
		if i, dup := index[name]; dup {
			out[i].Value = value
			continue
		}
		index[name] = len(out)
		out = append(out, Argument{Name: name, Value: value})
	}
	return out, nil
}

// Resolve returns the launch file the invocation names.
func (inv *Invocation) Resolve(packages ports.PackageResolver) (string, error) {
	if inv.Path != "" {
		return inv.Path, nil
	}
	if packages == nil {
		return "", fmt.Errorf("%w: no package resolver for %s", ErrMalformedInvocation, inv.Package)
	}
	return packages.ResolveFragment(inv.Package, inv.Fragment)
}

// ArgumentMap returns the arguments as a map.
func (inv *Invocation) ArgumentMap() map[string]string {
	out := make(map[string]string, len(inv.Arguments))
	for _, a := range inv.Arguments {
		out[a.Name] = a.Value
	}
	return out
}

// String renders the invocation in launch grammar.
func (inv *Invocation) String() string {
	words := []string{"launch"}
	if inv.Path != "" {
		words = append(words, inv.Path)
	} else {
		words = append(words, inv.Package, inv.Fragment)
	}
	for _, a := range inv.Arguments {
		words = append(words, a.Name+":="+a.Value)
	}
	return strings.Join(words, " ")
}
