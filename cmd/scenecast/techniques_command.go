package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scenecast/internal/animation"
	"scenecast/internal/theme"
)

func newTechniquesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "techniques",
		Short:       "List available animation techniques, easing curves, and themes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Techniques", strings.Join(animation.TechniqueNames(), ", ")},
				{"Easing curves", strings.Join(animation.EasingNames(), ", ")},
				{"Themes", strings.Join(theme.Names(), ", ")},
			}
			fmt.Fprintln(out, renderTable([]string{"Kind", "Names"}, rows))
			return nil
		},
	}
}
