// Package engine runs the mock generation pipeline: parse C++ headers,
// filter classes and methods, derive mock and file names, render mock
// text and deliver idempotent output artifacts.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jordfras/mocksmith/internal/errs"
	"github.com/jordfras/mocksmith/internal/headerpath"
	"github.com/jordfras/mocksmith/internal/logging"
	"github.com/jordfras/mocksmith/internal/model"
	"github.com/jordfras/mocksmith/internal/naming"
	"github.com/jordfras/mocksmith/internal/output"
	"github.com/jordfras/mocksmith/internal/parser"
	"github.com/jordfras/mocksmith/internal/render"
)

// Config carries one run's options, assembled by the CLI.
type Config struct {
	// Headers are the input header paths. Empty means read stdin.
	Headers     []string
	IncludeDirs []string

	// OutputFile collects every mock into one file; OutputDir writes
	// one file per input header. With neither set the combined header
	// is printed to stdout. The CLI guarantees at most one is set.
	OutputFile      string
	OutputDir       string
	AlwaysWrite     bool
	CreateOutputDir bool

	// MockNameRules and FileNameRules are sed style replacements,
	// applied in order to class names and source file names.
	MockNameRules []string
	FileNameRules []string

	// ClassFilter is an inclusion regex over qualified class names.
	ClassFilter string

	Methods model.MethodPolicy

	// Std is the C++ standard; it selects the namespace style of the
	// generated code. ParserArgs is accepted for compatibility with
	// compiler-based workflows; the bundled grammar takes no flags.
	Std        string
	ParserArgs []string

	MSVCAllowDeprecated bool
	IgnoreErrors        bool
	Indent              string

	Jobs       int
	Verbose    bool
	Silent     bool
	ReportFile string

	// Stdin and Stdout default to the process streams; tests replace
	// them. LogWriter, when set, captures all log output.
	Stdin     io.Reader
	Stdout    io.Writer
	LogWriter io.Writer
}

// Mode derives the output mode from the configured destinations.
func (c Config) Mode() output.Mode {
	switch {
	case c.OutputFile != "":
		return output.ModeCombined
	case c.OutputDir != "":
		return output.ModePerHeader
	default:
		return output.ModeStdout
	}
}

// cppStandards lists the accepted values for the C++ standard option.
var cppStandards = []string{
	"c++98", "c++03", "c++11", "c++14", "c++17", "c++20", "c++23", "c++2c",
	"gnu++98", "gnu++03", "gnu++11", "gnu++14", "gnu++17", "gnu++20", "gnu++23", "gnu++2c",
}

// simplifiedNamespaceStandards are the standards where the compact
// "namespace a::b {" form is valid.
var simplifiedNamespaceStandards = map[string]bool{
	"c++17": true, "c++20": true, "c++23": true, "c++2c": true,
	"gnu++17": true, "gnu++20": true, "gnu++23": true, "gnu++2c": true,
}

func validateStandard(std string) error {
	if std == "" {
		return nil
	}
	for _, s := range cppStandards {
		if s == std {
			return nil
		}
	}
	return errs.ConfigError("invalid value '%s' for '--std' (expected one of %s)",
		std, strings.Join(cppStandards, ", "))
}

func simplifiedNamespaces(std string) bool {
	return std == "" || simplifiedNamespaceStandards[std]
}

// Run executes one generation run. A fatal error on one input does not
// stop the others: every input is processed, failures are logged, and
// the first error is returned so the process exits non-zero.
func Run(config Config) error {
	p, err := newPipeline(config)
	if err != nil {
		return err
	}
	defer p.log.Sync()

	if len(config.Headers) == 0 {
		return p.runStdin()
	}
	return p.run()
}

type pipeline struct {
	config      Config
	log         *zap.SugaredLogger
	backend     *parser.Backend
	classFilter *regexp.Regexp // nil matches every class
	mockRules   naming.Rules
	fileRules   naming.Rules
	renderOpts  render.Options
	writer      *output.Writer
	written     int
}

func newPipeline(config Config) (*pipeline, error) {
	if err := validateStandard(config.Std); err != nil {
		return nil, err
	}
	mockRules, err := naming.ParseRules(config.MockNameRules)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrConfig)
	}
	fileRules, err := naming.ParseRules(config.FileNameRules)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrConfig)
	}
	var classFilter *regexp.Regexp
	if config.ClassFilter != "" {
		classFilter, err = regexp.Compile(config.ClassFilter)
		if err != nil {
			return nil, errs.ConfigError("invalid class filter regex: %v", err)
		}
	}

	logOpts := logging.Options{
		Verbose:  config.Verbose,
		Silent:   config.Silent,
		ToStdout: config.Mode() != output.ModeStdout,
	}
	log := logging.New(logOpts)
	if config.LogWriter != nil {
		log = logging.NewWithWriter(logOpts, config.LogWriter)
	}
	if len(config.ParserArgs) > 0 {
		log.Debugf("ignoring parser arguments %v: the bundled grammar takes no compiler flags",
			config.ParserArgs)
	}

	return &pipeline{
		config:      config,
		log:         log,
		backend:     parser.NewBackend(parser.Options{IgnoreErrors: config.IgnoreErrors}),
		classFilter: classFilter,
		mockRules:   mockRules,
		fileRules:   fileRules,
		renderOpts: render.Options{
			Indent:               config.Indent,
			SimplifiedNamespaces: simplifiedNamespaces(config.Std),
			MSVCAllowDeprecated:  config.MSVCAllowDeprecated,
		},
		writer: &output.Writer{
			AlwaysWrite: config.AlwaysWrite,
			CreateDirs:  config.CreateOutputDir,
			Stdout:      config.Stdout,
		},
	}, nil
}

// headerResult carries everything produced from one input.
type headerResult struct {
	path     string // empty for stdin
	source   *model.SourceHeader
	mocks    []model.RenderedMock
	warnings []string
	err      error
}

func (p *pipeline) run() error {
	start := time.Now()
	jobs := p.config.Jobs
	if jobs < 1 {
		jobs = 1
	}

	bar := progressbar.DefaultSilent(int64(len(p.config.Headers)))
	if p.showProgress() {
		bar = progressbar.NewOptions(len(p.config.Headers),
			progressbar.OptionSetDescription("Generating mocks"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	sem := semaphore.NewWeighted(int64(jobs))
	var wg sync.WaitGroup
	results := make([]*headerResult, len(p.config.Headers))

	for i, header := range p.config.Headers {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			if err := sem.Acquire(context.Background(), 1); err != nil {
				results[idx] = &headerResult{path: path, err: err}
				return
			}
			defer sem.Release(1)

			results[idx] = p.processHeader(path)
			bar.Add(1)
		}(i, header)
	}
	wg.Wait()
	bar.Finish()
	p.log.Debugf("parsed %d headers in %s", len(p.config.Headers), formatDuration(time.Since(start)))

	return p.deliver(results)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%.2f ms", float64(d.Microseconds())/1000.0)
	case d < time.Minute:
		return fmt.Sprintf("%.2f sec", d.Seconds())
	default:
		minutes := int(d.Minutes())
		return fmt.Sprintf("%d min %.0f sec", minutes, d.Seconds()-float64(minutes)*60)
	}
}

func (p *pipeline) runStdin() error {
	in := p.config.Stdin
	if in == nil {
		in = os.Stdin
	}
	src, err := io.ReadAll(in)
	if err != nil {
		return errs.FileSystem(err, "Failed to read from stdin")
	}

	source, err := p.backend.ParseSource(context.Background(), src)
	if err != nil {
		return p.deliver([]*headerResult{{err: err}})
	}
	r := &headerResult{source: source}
	r.mocks, r.warnings = p.buildMocks(source)
	if len(r.mocks) == 0 {
		r.warnings = append(r.warnings, "no classes to mock in input")
	}
	return p.deliver([]*headerResult{r})
}

func (p *pipeline) showProgress() bool {
	return !p.config.Silent && p.config.Mode() != output.ModeStdout && len(p.config.Headers) > 1
}

func (p *pipeline) processHeader(path string) *headerResult {
	source, err := p.backend.ParseFile(context.Background(), path)
	if err != nil {
		return &headerResult{path: path, err: err}
	}
	r := &headerResult{path: path, source: source}
	r.mocks, r.warnings = p.buildMocks(source)
	if len(r.mocks) == 0 {
		r.warnings = append(r.warnings, "no classes to mock in "+path)
	}
	return r
}

// buildMocks turns the classes of one parsed header into rendered
// mocks. Classes excluded by the class filter are dropped entirely;
// classes whose methods are all filtered out still produce an (empty)
// mock plus a warning, since mocking nothing is usually accidental.
func (p *pipeline) buildMocks(source *model.SourceHeader) ([]model.RenderedMock, []string) {
	var mocks []model.RenderedMock
	var warnings []string
	for i := range source.Classes {
		class := &source.Classes[i]
		if p.classFilter != nil && !p.classFilter.MatchString(class.QualifiedName()) {
			continue
		}
		spec := model.MockSpec{
			Class:    class,
			MockName: naming.MockName(p.mockRules, class.Name),
			Methods:  model.SelectMethods(*class, p.config.Methods),
		}
		if spec.Empty() {
			warnings = append(warnings,
				fmt.Sprintf("class %s has no methods to mock", class.QualifiedName()))
		}
		mocks = append(mocks, render.Mock(spec, p.renderOpts))
	}
	return mocks, warnings
}

// deliver logs diagnostics and warnings in input order, writes the
// artifacts assembled from the successful inputs, and returns the
// first error encountered.
func (p *pipeline) deliver(results []*headerResult) error {
	var firstErr error
	good := make([]*headerResult, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			if len(results) > 1 {
				p.log.Errorf("%v", r.err)
			}
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		for _, d := range r.source.Diagnostics {
			p.log.Debugf("%s", describeDiagnostic(d))
		}
		for _, w := range r.warnings {
			p.log.Warnf("%s", w)
		}
		good = append(good, r)
	}

	if err := p.writeArtifacts(good); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	}

	if p.config.ReportFile != "" {
		if err := p.writeReport(results); err != nil {
			p.log.Errorf("%v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *pipeline) writeArtifacts(good []*headerResult) error {
	if len(good) == 0 {
		return nil
	}
	switch p.config.Mode() {
	case output.ModeCombined:
		return p.writeCombined(good)
	case output.ModePerHeader:
		return p.writePerHeader(good)
	default:
		return p.writeStdout(good)
	}
}

func (p *pipeline) writeCombined(good []*headerResult) error {
	outDir := filepath.Dir(p.config.OutputFile)
	includes, mocks := p.collect(good, outDir)
	content := render.Header(includes, mocks, p.renderOpts)

	wrote, err := p.writer.Write(output.Artifact{Path: p.config.OutputFile, Content: content})
	if err != nil {
		return err
	}
	p.logWrite(p.config.OutputFile, wrote)
	return nil
}

func (p *pipeline) writePerHeader(good []*headerResult) error {
	var firstErr error
	for _, r := range good {
		include := headerpath.IncludePath(r.path, p.config.IncludeDirs, p.config.OutputDir)
		content := render.Header([]string{include}, r.mocks, p.renderOpts)
		name := naming.OutputFileName(p.fileRules, filepath.Base(r.path))
		target := filepath.Join(p.config.OutputDir, name)

		wrote, err := p.writer.Write(output.Artifact{Path: target, Content: content})
		if err != nil {
			p.log.Errorf("%v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.logWrite(target, wrote)
	}
	return firstErr
}

func (p *pipeline) writeStdout(good []*headerResult) error {
	includes, mocks := p.collect(good, "")
	content := render.Header(includes, mocks, p.renderOpts)
	_, err := p.writer.Write(output.Artifact{Content: content})
	return err
}

// collect flattens results into include spellings and mock bodies,
// preserving input order. Stdin input contributes no include line.
func (p *pipeline) collect(good []*headerResult, outDir string) ([]string, []model.RenderedMock) {
	var includes []string
	var mocks []model.RenderedMock
	for _, r := range good {
		if r.path != "" {
			includes = append(includes, headerpath.IncludePath(r.path, p.config.IncludeDirs, outDir))
		}
		mocks = append(mocks, r.mocks...)
	}
	return includes, mocks
}

func (p *pipeline) logWrite(path string, wrote bool) {
	if wrote {
		p.written++
		p.log.Debugf("wrote %s", path)
	} else {
		p.log.Debugf("unchanged %s", path)
	}
}

func describeDiagnostic(d model.Diagnostic) string {
	if d.File == "" {
		return fmt.Sprintf("%s at line %d, column %d: %s", d.Severity, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s in %s at line %d, column %d: %s", d.Severity, d.File, d.Line, d.Column, d.Message)
}
