// compo/cmd/compgraph/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sghaida/compo/config"
	"github.com/sghaida/compo/di"
	"github.com/sghaida/compo/logging"
	"github.com/sghaida/compo/manifest"
)

// ErrProblems is returned when the manifest graph cannot be constructed.
var ErrProblems = errors.New("compgraph: graph has problems")

// Report is the json output.
type Report struct {
	Manifest   string          `json:"manifest"`
	Valid      bool            `json:"valid"`
	Order      []string        `json:"order"`
	Problems   []string        `json:"problems"`
	Components []ComponentLine `json:"components"`
}

// ComponentLine summarizes one component.
type ComponentLine struct {
	Name         string   `json:"name"`
	Provides     []string `json:"provides"`
	Instance     bool     `json:"instance"`
	Constructors int      `json:"constructors"`
	Selected     int      `json:"selected"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, ErrProblems) {
			_, _ = fmt.Fprintln(os.Stderr, "compgraph:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("compgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)

	manifestPath := fs.String("manifest", "", "path to a component manifest (yaml or json)")
	format := fs.String("format", "text", "output format: text or json")
	envFile := fs.String("env", "", "optional .env file with COMPO_* settings")
	noColor := fs.Bool("no-color", false, "disable colored text output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*manifestPath) == "" {
		return errors.New("missing -manifest")
	}
	if *format != "text" && *format != "json" {
		return errors.New("-format must be text or json")
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	log, err := logging.NewWithSink(cfg, zapcore.AddSync(stderr))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		return err
	}
	g, err := m.Graph()
	if err != nil {
		return err
	}
	log.Debug("manifest loaded", zap.String("path", *manifestPath), zap.Int("components", len(m.Components)))

	rep := analyze(*manifestPath, g)
	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printText(stdout, rep, !*noColor)
	}

	if !rep.Valid {
		log.Warn("graph has problems", zap.Int("problems", len(rep.Problems)))
		return ErrProblems
	}
	return nil
}

func analyze(path string, g *di.Graph) Report {
	rep := Report{Manifest: path, Order: []string{}, Problems: []string{}}
	for _, err := range multierr.Errors(g.Validate()) {
		rep.Problems = append(rep.Problems, err.Error())
	}
	if order, err := g.ConstructionOrder(); err == nil {
		rep.Order = order
	}
	for _, n := range g.Nodes() {
		line := ComponentLine{
			Name:         n.Name,
			Provides:     n.Provides,
			Instance:     n.Instance,
			Constructors: len(n.Constructors),
			Selected:     -1,
		}
		if idx, err := g.Constructor(n.Name); err == nil {
			line.Selected = idx
		}
		rep.Components = append(rep.Components, line)
	}
	rep.Valid = len(rep.Problems) == 0
	return rep
}

func printText(w io.Writer, rep Report, colored bool) {
	bad := color.New(color.FgRed, color.Bold)
	good := color.New(color.FgGreen)
	dim := color.New(color.Faint)
	if !colored {
		bad.DisableColor()
		good.DisableColor()
		dim.DisableColor()
	}

	_, _ = fmt.Fprintf(w, "%s: %d components\n", rep.Manifest, len(rep.Components))
	if len(rep.Problems) > 0 {
		_, _ = bad.Fprintf(w, "%d problems\n", len(rep.Problems))
		for _, p := range rep.Problems {
			_, _ = bad.Fprintf(w, "  x %s\n", p)
		}
	}
	if len(rep.Order) == 0 {
		return
	}

	byName := make(map[string]ComponentLine, len(rep.Components))
	for _, c := range rep.Components {
		byName[c.Name] = c
	}
	_, _ = fmt.Fprintln(w, "construction order:")
	for i, name := range rep.Order {
		c := byName[name]
		detail := "instance"
		if !c.Instance {
			detail = "constructor " + strconv.Itoa(c.Selected) + " of " + strconv.Itoa(c.Constructors)
		}
		_, _ = good.Fprintf(w, "  %2d. %s", i+1, name)
		_, _ = dim.Fprintf(w, " (%s)\n", detail)
	}
}
