package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/mentor-gateway/internal/persona"
)

func newPersonaCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "persona [profile]",
		Short: "Print the system instruction built for a mentor profile",
		Example: `  mentorctl persona "Investment Banker"
  mentorctl persona CFO --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := ""
			if len(args) == 1 {
				label = args[0]
			}
			inst := persona.Build(label)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Label    string             `json:"label"`
					Kind     string             `json:"kind"`
					System   string             `json:"system"`
					Examples []persona.Exchange `json:"examples"`
				}{inst.Label, inst.Kind.String(), inst.System, inst.Examples})
			}

			fmt.Fprintf(out, "profile: %s\nkind: %s\n\n%s\n", orDash(inst.Label), inst.Kind, inst.System)
			for i, ex := range inst.Examples {
				fmt.Fprintf(out, "\n--- example %d ---\nuser: %s\nassistant:\n%s\n", i+1, ex.User, ex.Assistant)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
