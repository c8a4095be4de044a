package main

import (
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const configFlag = "config"

var rootFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to a config file (.env or yaml); environment variables override it",
	},
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "price-portal",
		Short:         "LINE price list portal API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobraflags.RegisterMap(root, rootFlags)

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

// @title LINE Price Portal API
// @version 1.0
// @description Price list distribution for LINE members.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
