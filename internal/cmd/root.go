// Package cmd defines the mocksmith command line interface.
package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jordfras/mocksmith/internal/engine"
	"github.com/jordfras/mocksmith/internal/errs"
	"github.com/jordfras/mocksmith/internal/model"
)

var (
	includeDirs   []string
	mockNameRules []string
	fileNameRules []string

	outputFile      string
	outputDir       string
	createOutputDir bool
	alwaysWrite     bool

	std         string
	methods     string
	classFilter string
	parserArgs  []string

	msvcAllowDeprecated bool
	ignoreErrors        bool
	indent              string

	jobs    int
	report  string
	verbose bool
	silent  bool
)

var rootCmd = &cobra.Command{
	Use:   "mocksmith [flags] [HEADER ...]",
	Short: "Generate Google Mock classes from C++ headers",
	Long: `mocksmith parses C++ header files and generates Google Mock (gMock) mock
classes for the classes and structs they declare. Each HEADER argument is
processed independently; without HEADER arguments a single header is read
from stdin and the generated code is printed to stdout.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runGenerate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line interface.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringArrayVarP(&includeDirs, "include-dir", "I", []string{}, "Include directory, used to spell the generated #include lines (repeatable)")
	rootCmd.Flags().StringArrayVarP(&mockNameRules, "name-mock", "n", []string{}, "Rule s/<regex>/<replacement>/ deriving mock names from class names (repeatable)")
	rootCmd.Flags().StringArrayVarP(&fileNameRules, "name-output-file", "f", []string{}, "Rule s/<regex>/<replacement>/ deriving output file names from header names (repeatable)")
	rootCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "Write the mocks for all headers to a single file")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Write one mock header per input header to this directory")
	rootCmd.Flags().BoolVar(&createOutputDir, "create-output-dir", true, "Create missing output directories")
	rootCmd.Flags().BoolVarP(&alwaysWrite, "always-write", "w", false, "Write output files even when their content is unchanged")
	rootCmd.Flags().StringVar(&std, "std", "", "C++ standard for the generated code (c++98 through c++2c, gnu++ variants)")
	rootCmd.Flags().StringVarP(&methods, "methods", "m", "virtual", "Methods to mock: all, virtual or pure")
	rootCmd.Flags().StringVarP(&classFilter, "class-filter", "c", "", "Only mock classes whose qualified name matches this regex")
	rootCmd.Flags().StringArrayVar(&parserArgs, "parser-arg", []string{}, "Extra parser argument, accepted for compatibility and ignored by the bundled grammar (repeatable)")
	rootCmd.Flags().BoolVar(&msvcAllowDeprecated, "msvc-allow-deprecated", false, "Wrap the mocks in pragmas disabling MSVC's deprecation warning")
	rootCmd.Flags().BoolVar(&ignoreErrors, "ignore-errors", false, "Generate mocks even for headers with parse errors")
	rootCmd.Flags().StringVar(&indent, "indent", "  ", "Indentation of the generated mock bodies")
	rootCmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of headers to process in parallel")
	rootCmd.Flags().StringVar(&report, "report", "", "Write a run report; .yaml, .json or plain text chosen by extension")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&silent, "silent", "s", false, "Log nothing but errors")

	rootCmd.MarkFlagsMutuallyExclusive("output-file", "output-dir")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "silent")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := validateArgs(args); err != nil {
		return err
	}
	policy, err := model.ParseMethodPolicy(methods)
	if err != nil {
		return err
	}

	return engine.Run(engine.Config{
		Headers:             args,
		IncludeDirs:         includeDirs,
		OutputFile:          outputFile,
		OutputDir:           outputDir,
		AlwaysWrite:         alwaysWrite,
		CreateOutputDir:     createOutputDir,
		MockNameRules:       mockNameRules,
		FileNameRules:       fileNameRules,
		ClassFilter:         classFilter,
		Methods:             policy,
		Std:                 std,
		ParserArgs:          parserArgs,
		MSVCAllowDeprecated: msvcAllowDeprecated,
		IgnoreErrors:        ignoreErrors,
		Indent:              indent,
		Jobs:                jobs,
		Verbose:             verbose,
		Silent:              silent,
		ReportFile:          report,
	})
}

// validateArgs checks the flag combinations cobra cannot express.
func validateArgs(headers []string) error {
	if len(headers) == 0 && (outputFile != "" || outputDir != "") {
		return errs.ConfigError(
			"required arguments were not provided: HEADER files are needed with --output-file and --output-dir")
	}
	if len(fileNameRules) > 0 && outputDir == "" {
		return errs.ConfigError("The argument --output-dir is required when --name-output-file is used")
	}
	if msvcAllowDeprecated && outputFile == "" && outputDir == "" {
		return errs.ConfigError(
			"The argument --output-file or --output-dir is required when --msvc-allow-deprecated is used")
	}
	return nil
}
