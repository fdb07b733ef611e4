package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fdcavalcanti/ntxbuild/pkg/config"
	"github.com/fdcavalcanti/ntxbuild/pkg/kconfig"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/shell"
	"github.com/fdcavalcanti/ntxbuild/pkg/tui"
)

// --- kconfig ---

var (
	kconfigRead     string
	kconfigSetValue string
	kconfigSetStr   string
	kconfigEnable   string
	kconfigDisable  string
	kconfigMerge    string
	kconfigApply    bool
)

var kconfigCmd = &cobra.Command{
	Use:   "kconfig [value]",
	Short: "Read or change Kconfig options of the configured tree",
	Long: `Reads or changes one Kconfig option. Changes only reach .config when
--apply is given, either in the same invocation or alone.

  ntxbuild kconfig --read CONFIG_DEBUG_FEATURES
  ntxbuild kconfig --set-value CONFIG_RAM_SIZE 65536 --apply
  ntxbuild kconfig --set-str CONFIG_HOST_NAME "my board" --apply
  ntxbuild kconfig --enable DEBUG_FEATURES --apply
  ntxbuild kconfig --merge ./fragment.config --apply`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKconfig,
}

type kconfigOp struct {
	name  string
	value string
}

// kconfigAction picks the single requested operation.
func kconfigAction(cmd *cobra.Command) (kconfigOp, error) {
	var ops []kconfigOp
	for _, flag := range []string{"read", "set-value", "set-str", "enable", "disable", "merge"} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			ops = append(ops, kconfigOp{name: flag, value: f.Value.String()})
		}
	}
	apply, _ := cmd.Flags().GetBool("apply")
	switch {
	case len(ops) > 1:
		names := make([]string, len(ops))
		for i, op := range ops {
			names[i] = "--" + op.name
		}
		return kconfigOp{}, eris.Wrapf(ntxerr.ErrInvalidArg, "only one of %s may be given", strings.Join(names, ", "))
	case len(ops) == 0 && !apply:
		return kconfigOp{}, eris.Wrap(ntxerr.ErrInvalidArg, "no action specified")
	case len(ops) == 0:
		return kconfigOp{name: "apply"}, nil
	}
	return ops[0], nil
}

func runKconfig(cmd *cobra.Command, args []string) error {
	op, err := kconfigAction(cmd)
	if err != nil {
		return err
	}
	needsValue := op.name == "set-value" || op.name == "set-str"
	if needsValue && len(args) != 1 {
		return eris.Wrapf(ntxerr.ErrInvalidArg, "--%s %s needs a value", op.name, op.value)
	}
	if !needsValue && len(args) != 0 {
		return eris.Wrapf(ntxerr.ErrInvalidArg, "unexpected argument %q", args[0])
	}

	rec, err := currentRecord()
	if err != nil {
		return err
	}
	m := newManager(cmd.Context(), rec)

	var changed bool
	switch op.name {
	case "read":
		v, err := m.Read(op.value)
		if err != nil {
			return err
		}
		fmt.Printf("%s%s=%s\n", kconfig.Prefix, strings.TrimPrefix(op.value, kconfig.Prefix), v)
		return nil
	case "set-value":
		changed, err = m.SetNumeric(op.value, args[0])
	case "set-str":
		changed, err = m.SetString(op.value, args[0])
	case "enable":
		changed, err = m.Enable(op.value)
	case "disable":
		changed, err = m.Disable(op.value)
	case "merge":
		err = m.MergeConfigFile(op.value)
		changed = err == nil
	}
	if err != nil {
		return err
	}
	if op.name != "apply" {
		fmt.Println(tui.Status(changed, describeChange(m, op)))
		if !changed {
			return eris.Wrapf(ntxerr.ErrNotAssignable, "%s", op.value)
		}
	}

	if !kconfigApply {
		if op.name != "apply" {
			fmt.Println("Run again with --apply to write .config")
		}
		return nil
	}
	if err := m.ApplyChanges(); err != nil {
		return err
	}
	fmt.Println(tui.Status(true, "Changes written to "+m.ConfigPath()))
	return nil
}

func describeChange(m *config.Manager, op kconfigOp) string {
	if op.name == "merge" {
		abs, _ := filepath.Abs(op.value)
		return "Merged " + abs
	}
	name := strings.TrimPrefix(op.value, kconfig.Prefix)
	v, err := m.Read(name)
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s%s=%s", kconfig.Prefix, name, v)
}

// --- shell ---

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive Kconfig shell with completion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := currentRecord()
		if err != nil {
			return err
		}
		m := newManager(cmd.Context(), rec)
		if err := m.Load(); err != nil {
			return err
		}
		return shell.New(m, filepath.Base(rec.WorkspacePath)).Run(cmd.Context())
	},
}

func init() {
	kconfigCmd.Flags().StringVarP(&kconfigRead, "read", "r", "", "Print the value of an option")
	kconfigCmd.Flags().StringVar(&kconfigSetValue, "set-value", "", "Set an int or hex option (value as argument)")
	kconfigCmd.Flags().StringVar(&kconfigSetStr, "set-str", "", "Set a string option (value as argument)")
	kconfigCmd.Flags().StringVar(&kconfigEnable, "enable", "", "Enable a bool or tristate option")
	kconfigCmd.Flags().StringVar(&kconfigDisable, "disable", "", "Disable a bool or tristate option")
	kconfigCmd.Flags().StringVar(&kconfigMerge, "merge", "", "Merge a config fragment over the current values")
	kconfigCmd.Flags().BoolVarP(&kconfigApply, "apply", "a", false, "Write the resulting values to .config")
}
