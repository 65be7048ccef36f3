package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/hearth/internal/client"
	"github.com/lazypower/hearth/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live watch screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New()
		if !c.Healthy() {
			return fmt.Errorf("hearth daemon is not running (try: hearth serve)")
		}
		return tui.Run(c)
	},
}
