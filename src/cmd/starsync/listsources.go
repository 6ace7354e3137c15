package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/mipimipi/starsync/src/internal/app"
)

// listSourcesCmd represents the list-sources command
var listSourcesCmd = &cobra.Command{
	Use:   "list-sources",
	Short: "List currently available sources",
	Long:  "List the music libraries that starsync can currently sync from",
	Run: func(cmd *cobra.Command, args []string) {
		sources := app.ListSources()
		fmt.Println("Currently available sources:")
		for _, src := range sources {
			fmt.Printf("  * %s\n", src.Name())
		}
		fmt.Printf("(%d sources)\n", len(sources))
	},
}

func init() {
	rootCmd.AddCommand(listSourcesCmd)
}
