package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/propdeps/internal/compiler"
)

// ValidationResult holds validation results. Cycle warnings never make a
// result invalid.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Check declarations and report dependency cycles",
		Long: `Check CUE type declarations without producing IR.

Reports unknown dependency names, duplicate properties, broken inheritance
and other declaration errors. Dependency cycles are legal and reported as
warnings; self dependencies are ignored by the engine and reported as info.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, rootOpts.specsDir(args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, err := ValidateSpecsDir(specsDir)
	if err != nil {
		code, message := errorCodeOf(err, ErrCodeGeneric)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}

	for _, w := range result.Warnings {
		opts.logger().Debug("cycle analysis", "type", w.Type, "level", w.Level, "path", w.Path)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateSpecsDir validates all declarations in a directory.
// Returns an error only when the directory cannot be loaded.
func ValidateSpecsDir(specsDir string) (*ValidationResult, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	var errs []compiler.ValidationError
	for _, err := range loadErrors {
		code, message := errorCodeOf(err, ErrCodeGeneric)
		verr := compiler.ValidationError{Field: "load", Message: message, Code: code}
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			verr.Line = loadErr.Pos.Line()
		}
		errs = append(errs, verr)
	}
	errs = append(errs, compiler.Validate(loadResult.Types)...)

	result := &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
	if result.Valid {
		result.Warnings = compiler.AnalyzeCycles(loadResult.Types)
	}
	return result, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result *ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ All declarations valid")
	if len(result.Warnings) > 0 {
		fmt.Fprintln(formatter.Writer)
		for _, w := range result.Warnings {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", w.Level, w.Message)
		}
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
