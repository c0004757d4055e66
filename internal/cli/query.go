package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/propdeps/internal/typeinfo"
)

// Query directions.
const (
	DirectionDependents   = "dependents"
	DirectionDependencies = "dependencies"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Type      string
	Property  string
	Direction string
	Direct    bool
}

// QueryProperty is one property of a query result.
type QueryProperty struct {
	Name          string `json:"name"`
	DeclaringType string `json:"declaring_type"`
}

// QueryResult is the closure of one property.
type QueryResult struct {
	Type       string          `json:"type"`
	Property   string          `json:"property"`
	Direction  string          `json:"direction"`
	Direct     bool            `json:"direct"`
	Properties []QueryProperty `json:"properties"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [specs-dir]",
		Short: "Show what a property notifies or depends on",
		Long: `Resolve the declared dependency closure of one property.

With --direction dependents (the default) the result is every property
notified when the property changes, in notification order. With
--direction dependencies it is every property the property depends on.
--direct limits the result to declarations naming the property itself.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "declared type (required)")
	cmd.Flags().StringVarP(&opts.Property, "property", "p", "", "property name (required)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", DirectionDependents, "dependents|dependencies")
	cmd.Flags().BoolVar(&opts.Direct, "direct", false, "direct declarations only")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("property")

	return cmd
}

func runQuery(opts *QueryOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	query, err := closureQuery(opts.Direction, opts.Direct)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
	}

	_, reg, err := loadRegistry(specsDir)
	if err != nil {
		code, message := errorCodeOf(err, ErrCodeGeneric)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}
	typ, err := lookupType(reg, opts.Type)
	if err != nil {
		code, message := errorCodeOf(err, ErrCodeGeneric)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}

	props, err := query(typ, opts.Property)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeEngine, err.Error(), nil)
	}

	result := QueryResult{
		Type:       typ.Name(),
		Property:   opts.Property,
		Direction:  opts.Direction,
		Direct:     opts.Direct,
		Properties: make([]QueryProperty, len(props)),
	}
	for i, p := range props {
		result.Properties[i] = QueryProperty{Name: p.Name, DeclaringType: p.DeclaringType.Name()}
	}

	opts.logger().Debug("resolved closure",
		"type", result.Type,
		"property", result.Property,
		"direction", result.Direction,
		"count", len(props))

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	scope := "all"
	if opts.Direct {
		scope = "direct"
	}
	fmt.Fprintf(formatter.Writer, "%s.%s: %d %s %s\n", result.Type, result.Property, len(props), scope, result.Direction)
	for _, p := range result.Properties {
		if p.DeclaringType != result.Type {
			fmt.Fprintf(formatter.Writer, "  %s (%s)\n", p.Name, p.DeclaringType)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s\n", p.Name)
	}
	return nil
}

// closureQuery picks the type-level resolver for a direction.
func closureQuery(direction string, direct bool) (func(*typeinfo.Type, string) ([]*typeinfo.Property, error), error) {
	switch {
	case direction == DirectionDependents && direct:
		return typeinfo.DirectDependents, nil
	case direction == DirectionDependents:
		return typeinfo.AllDependents, nil
	case direction == DirectionDependencies && direct:
		return typeinfo.DirectDependencies, nil
	case direction == DirectionDependencies:
		return typeinfo.AllDependencies, nil
	default:
		return nil, fmt.Errorf("invalid direction %q: must be %s or %s", direction, DirectionDependents, DirectionDependencies)
	}
}
