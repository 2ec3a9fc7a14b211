package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "album-render",
	Short: "Render photo albums to print-ready PDF",
	Long: `Album Render turns an album stored by the album editor into an A4 PDF:
a cover page with optional styled text, followed by one page per album page
with photos placed by their manual layout or a default grid.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}
